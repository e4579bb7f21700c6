package http

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/jma-forecast/internal/calculator"
	"github.com/couchcryptid/jma-forecast/internal/domain"
	"github.com/couchcryptid/jma-forecast/internal/forecast"
)

var viewFuncs = template.FuncMap{
	"condition": domain.ClassifyWeather,
	"emptyMsg":  func() string { return forecast.MsgEmpty },
}

type forecastPage struct {
	Centers      []domain.Center
	Active       domain.Center
	Offices      []domain.Office
	StoreEnabled bool
	Panel        *panel
	Error        string
}

// panel is the expanded forecast list under one office card.
type panel struct {
	Office  string
	Source  string
	Records []domain.ForecastRecord
	Message string
}

type calculatorPage struct {
	State  calculator.State
	Keypad [][]string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	dir, err := s.svc.Directory(r.Context())
	if err != nil {
		s.render(w, http.StatusBadGateway, "forecast", forecastPage{Error: forecast.DirectoryErrorMessage(err)})
		return
	}
	first, ok := dir.FirstCenter()
	if !ok {
		s.render(w, http.StatusOK, "forecast", forecastPage{Error: forecast.MsgEmpty})
		return
	}
	http.Redirect(w, r, "/centers/"+url.PathEscape(first.Code), http.StatusFound)
}

func (s *Server) handleCenter(w http.ResponseWriter, r *http.Request) {
	page, ok := s.centerPage(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if office := q.Get("office"); office != "" && q.Get("source") == "db" {
		page.Panel = &panel{Office: office}
		res, err := s.svc.Cached(r.Context(), office)
		if err != nil {
			page.Panel.Message = forecast.ErrorMessage(err)
		} else {
			page.Panel.Source, page.Panel.Records = res.Source, res.Records
		}
	}
	s.render(w, http.StatusOK, "forecast", page)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	page, ok := s.centerPage(w, r)
	if !ok {
		return
	}

	office := r.PathValue("office")
	page.Panel = &panel{Office: office}
	res, err := s.svc.Refresh(r.Context(), office)
	if err != nil {
		s.logger.Warn("refresh failed", "area_code", office, "error", err)
		page.Panel.Message = forecast.ErrorMessage(err)
	} else {
		page.Panel.Source, page.Panel.Records = res.Source, res.Records
	}
	s.render(w, http.StatusOK, "forecast", page)
}

// centerPage loads the directory and the offices of the {center} path value.
// It writes an error page and returns false when either is unavailable.
func (s *Server) centerPage(w http.ResponseWriter, r *http.Request) (forecastPage, bool) {
	dir, err := s.svc.Directory(r.Context())
	if err != nil {
		s.render(w, http.StatusBadGateway, "forecast", forecastPage{Error: forecast.DirectoryErrorMessage(err)})
		return forecastPage{}, false
	}

	page := forecastPage{
		Centers:      dir.SortedCenters(),
		StoreEnabled: s.svc.StoreEnabled(),
	}
	center, ok := dir.Center(r.PathValue("center"))
	if !ok {
		page.Error = forecast.MsgUnknownArea
		s.render(w, http.StatusNotFound, "forecast", page)
		return forecastPage{}, false
	}
	page.Active = center
	page.Offices = dir.OfficesOf(center.Code)
	return page, true
}

func (s *Server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	calc := calculator.New()
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		calc = calculator.Restore(stateFromForm(r.PostForm))
		calc.Press(r.PostForm.Get("key"))
	}
	s.render(w, http.StatusOK, "calculator", calculatorPage{State: calc.State(), Keypad: calculator.Keypad})
}

// stateFromForm reads the hidden fields the calculator page posts back.
// Unparsable numbers fall back to zero values.
func stateFromForm(form url.Values) calculator.State {
	operand1, _ := strconv.ParseFloat(form.Get("operand1"), 64)
	newOperand, err := strconv.ParseBool(form.Get("new_operand"))
	if err != nil {
		newOperand = true
	}
	return calculator.State{
		Display:    form.Get("display"),
		Operator:   form.Get("operator"),
		Operand1:   operand1,
		NewOperand: newOperand,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck // client may have gone away
}
