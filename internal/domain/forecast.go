package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrUnknownArea is returned for a code missing from the area directory.
	ErrUnknownArea = errors.New("unknown area code")
	// ErrNoRecords is returned when the store holds nothing for an area.
	ErrNoRecords = errors.New("no stored forecasts")
	// ErrStoreDisabled is returned by cache reads when no store is configured.
	ErrStoreDisabled = errors.New("forecast store disabled")
	// ErrMalformedForecast marks a forecast document without the expected time series.
	ErrMalformedForecast = errors.New("malformed forecast document")
)

// ForecastEntry is one (date, weather text) pair for an area.
type ForecastEntry struct {
	AreaCode   string `json:"area_code"`
	ReportDate string `json:"report_date"`
	Weather    string `json:"weather"`
}

// ForecastRecord is a stored forecast entry.
type ForecastRecord struct {
	ID         int64     `json:"id"`
	AreaCode   string    `json:"area_code"`
	ReportDate string    `json:"report_date"`
	Weather    string    `json:"weather"`
	CreatedAt  time.Time `json:"created_at"`
}

// ForecastRefreshed is emitted after a successful refresh of an area.
type ForecastRefreshed struct {
	AreaCode    string          `json:"area_code"`
	Entries     []ForecastEntry `json:"entries"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// ReportDate trims an ISO-8601 timeDefine to its date part.
func ReportDate(timeDefine string) string {
	date, _, _ := strings.Cut(timeDefine, "T")
	return date
}

// PairEntries zips parallel timeDefines and weathers into entries for area.
// Extra elements of the longer slice are ignored.
func PairEntries(area string, timeDefines, weathers []string) []ForecastEntry {
	n := min(len(timeDefines), len(weathers))
	out := make([]ForecastEntry, 0, n)
	for i := range n {
		out = append(out, ForecastEntry{
			AreaCode:   area,
			ReportDate: ReportDate(timeDefines[i]),
			Weather:    weathers[i],
		})
	}
	return out
}

// RecordsFromEntries converts fetched entries to unsaved records stamped with createdAt.
func RecordsFromEntries(entries []ForecastEntry, createdAt time.Time) []ForecastRecord {
	out := make([]ForecastRecord, len(entries))
	for i, e := range entries {
		out[i] = ForecastRecord{
			AreaCode:   e.AreaCode,
			ReportDate: e.ReportDate,
			Weather:    e.Weather,
			CreatedAt:  createdAt,
		}
	}
	return out
}

// AreaSource loads the JMA area directory.
type AreaSource interface {
	FetchAreas(ctx context.Context) (AreaDirectory, error)
}

// ForecastSource fetches the remote forecast for one area.
type ForecastSource interface {
	FetchForecast(ctx context.Context, areaCode string) ([]ForecastEntry, error)
}

// ForecastStore persists forecast entries keyed by (area code, report date).
type ForecastStore interface {
	// UpsertForecasts inserts each entry or replaces the existing one with the
	// same key. Either all entries are applied or none are.
	UpsertForecasts(ctx context.Context, areaCode string, entries []ForecastEntry, createdAt time.Time) error

	// ListForecasts returns the stored records for an area ordered by report date.
	ListForecasts(ctx context.Context, areaCode string) ([]ForecastRecord, error)
}

// EventPublisher announces refreshed forecasts to downstream consumers.
type EventPublisher interface {
	PublishRefreshed(ctx context.Context, event ForecastRefreshed) error
}
