package domain

import "sort"

// Center is a JMA regional center.
type Center struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Office is a JMA forecast office. Parent is the code of its center.
type Office struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

// AreaDirectory maps center and office codes to their metadata.
// It is read-only once loaded.
type AreaDirectory struct {
	Centers map[string]Center
	Offices map[string]Office
}

// SortedCenters returns all centers ordered by code.
func (d AreaDirectory) SortedCenters() []Center {
	out := make([]Center, 0, len(d.Centers))
	for _, c := range d.Centers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// OfficesOf returns the offices whose parent is the given center, ordered by code.
func (d AreaDirectory) OfficesOf(centerCode string) []Office {
	var out []Office
	for _, o := range d.Offices {
		if o.Parent == centerCode {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (d AreaDirectory) Center(code string) (Center, bool) {
	c, ok := d.Centers[code]
	return c, ok
}

func (d AreaDirectory) Office(code string) (Office, bool) {
	o, ok := d.Offices[code]
	return o, ok
}

// FirstCenter returns the lowest-coded center, if any.
func (d AreaDirectory) FirstCenter() (Center, bool) {
	centers := d.SortedCenters()
	if len(centers) == 0 {
		return Center{}, false
	}
	return centers[0], true
}
