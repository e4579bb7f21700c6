package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/jma-forecast/internal/domain"
	"github.com/couchcryptid/jma-forecast/internal/observability"
)

// Data-source labels shown above a rendered forecast list.
const (
	SourceAPIStored = "JMA API -> DB保存 -> 表示"
	SourceStore     = "ローカルDB参照"
	SourceAPI       = "JMA API"
)

var (
	// ErrFetch marks failures talking to or decoding the JMA API.
	ErrFetch = errors.New("fetch forecast")
	// ErrStore marks failures reading or writing the local store.
	ErrStore = errors.New("forecast store")
)

// Result is the list handed to the display layer.
type Result struct {
	AreaCode string                  `json:"area_code"`
	Source   string                  `json:"source"`
	Records  []domain.ForecastRecord `json:"records"`
}

// Service runs the cache-and-merge flow between the JMA API and the local store.
type Service struct {
	areas     domain.AreaSource
	forecasts domain.ForecastSource
	store     domain.ForecastStore
	publisher domain.EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Service. A nil store runs the fetch-only variant; a nil
// publisher disables refresh events.
func New(areas domain.AreaSource, forecasts domain.ForecastSource, store domain.ForecastStore, publisher domain.EventPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if store != nil {
		metrics.StoreEnabled.Set(1)
	}
	return &Service{
		areas:     areas,
		forecasts: forecasts,
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// StoreEnabled reports whether fetched forecasts are persisted.
func (s *Service) StoreEnabled() bool {
	return s.store != nil
}

// Directory returns the area directory, loading it on first use.
func (s *Service) Directory(ctx context.Context) (domain.AreaDirectory, error) {
	dir, err := s.areas.FetchAreas(ctx)
	if err != nil {
		return domain.AreaDirectory{}, fmt.Errorf("%w: area directory: %w", ErrFetch, err)
	}
	s.ready.Store(true)
	return dir, nil
}

// CheckReadiness returns nil once the area directory has been loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("area directory not loaded")
	}
	return nil
}

// Refresh fetches the remote forecast for an area, upserts every entry keyed
// by (area, date), and returns all stored records for the area ordered by
// date. Any failure aborts without partial writes.
func (s *Service) Refresh(ctx context.Context, areaCode string) (Result, error) {
	if err := s.checkArea(ctx, areaCode); err != nil {
		return Result{}, err
	}

	entries, err := s.forecasts.FetchForecast(ctx, areaCode)
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("fetch_error").Inc()
		return Result{}, fmt.Errorf("%w: area %s: %w", ErrFetch, areaCode, err)
	}
	now := domain.Now()

	if s.store == nil {
		s.metrics.Refreshes.WithLabelValues("success").Inc()
		s.publish(ctx, areaCode, entries)
		return Result{AreaCode: areaCode, Source: SourceAPI, Records: domain.RecordsFromEntries(entries, now)}, nil
	}

	if err := s.store.UpsertForecasts(ctx, areaCode, entries, now); err != nil {
		s.metrics.Refreshes.WithLabelValues("store_error").Inc()
		return Result{}, fmt.Errorf("%w: save %s: %w", ErrStore, areaCode, err)
	}
	s.metrics.RecordsStored.Add(float64(len(entries)))

	records, err := s.store.ListForecasts(ctx, areaCode)
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("store_error").Inc()
		return Result{}, fmt.Errorf("%w: read %s: %w", ErrStore, areaCode, err)
	}

	s.metrics.Refreshes.WithLabelValues("success").Inc()
	s.logger.Info("forecast refreshed", "area_code", areaCode, "fetched", len(entries), "stored", len(records))
	s.publish(ctx, areaCode, entries)
	return Result{AreaCode: areaCode, Source: SourceAPIStored, Records: records}, nil
}

// Cached returns the stored records for an area without contacting JMA.
// It returns domain.ErrNoRecords when nothing is stored yet.
func (s *Service) Cached(ctx context.Context, areaCode string) (Result, error) {
	if s.store == nil {
		return Result{}, domain.ErrStoreDisabled
	}

	records, err := s.store.ListForecasts(ctx, areaCode)
	if err != nil {
		s.metrics.CachedReads.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("%w: read %s: %w", ErrStore, areaCode, err)
	}
	if len(records) == 0 {
		s.metrics.CachedReads.WithLabelValues("empty").Inc()
		return Result{}, fmt.Errorf("area %s: %w", areaCode, domain.ErrNoRecords)
	}

	s.metrics.CachedReads.WithLabelValues("hit").Inc()
	return Result{AreaCode: areaCode, Source: SourceStore, Records: records}, nil
}

// checkArea rejects codes that are not forecast offices in the directory.
func (s *Service) checkArea(ctx context.Context, areaCode string) error {
	dir, err := s.Directory(ctx)
	if err != nil {
		return err
	}
	if _, ok := dir.Office(areaCode); !ok {
		return fmt.Errorf("area %s: %w", areaCode, domain.ErrUnknownArea)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, areaCode string, entries []domain.ForecastEntry) {
	if s.publisher == nil {
		return
	}
	event := domain.ForecastRefreshed{AreaCode: areaCode, Entries: entries, RefreshedAt: domain.Now()}
	if err := s.publisher.PublishRefreshed(ctx, event); err != nil {
		s.metrics.EventsPublished.WithLabelValues("error").Inc()
		s.logger.Warn("publish forecast event failed", "area_code", areaCode, "error", err)
		return
	}
	s.metrics.EventsPublished.WithLabelValues("success").Inc()
}
