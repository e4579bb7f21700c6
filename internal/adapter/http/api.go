package http

import (
	"errors"
	"net/http"

	"github.com/couchcryptid/jma-forecast/internal/domain"
	"github.com/couchcryptid/jma-forecast/internal/forecast"
)

func (s *Server) apiAreas(w http.ResponseWriter, r *http.Request) {
	dir, err := s.svc.Directory(r.Context())
	if err != nil {
		s.apiError(w, err, forecast.DirectoryErrorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"centers": dir.SortedCenters(),
		"offices": len(dir.Offices),
	})
}

func (s *Server) apiOffices(w http.ResponseWriter, r *http.Request) {
	dir, err := s.svc.Directory(r.Context())
	if err != nil {
		s.apiError(w, err, forecast.DirectoryErrorMessage(err))
		return
	}
	center, ok := dir.Center(r.PathValue("center"))
	if !ok {
		s.apiError(w, domain.ErrUnknownArea, forecast.MsgUnknownArea)
		return
	}
	offices := dir.OfficesOf(center.Code)
	if offices == nil {
		offices = []domain.Office{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"center":  center,
		"offices": offices,
	})
}

func (s *Server) apiCached(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Cached(r.Context(), r.PathValue("area"))
	if err != nil {
		s.apiError(w, err, forecast.ErrorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) apiRefresh(w http.ResponseWriter, r *http.Request) {
	area := r.PathValue("area")
	res, err := s.svc.Refresh(r.Context(), area)
	if err != nil {
		s.logger.Warn("refresh failed", "area_code", area, "error", err)
		s.apiError(w, err, forecast.ErrorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) apiError(w http.ResponseWriter, err error, msg string) {
	writeJSON(w, statusFor(err), map[string]string{"error": msg})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownArea),
		errors.Is(err, domain.ErrNoRecords),
		errors.Is(err, domain.ErrStoreDisabled):
		return http.StatusNotFound
	case errors.Is(err, forecast.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
