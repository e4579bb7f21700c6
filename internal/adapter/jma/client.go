package jma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/jma-forecast/internal/config"
	"github.com/couchcryptid/jma-forecast/internal/domain"
	"github.com/couchcryptid/jma-forecast/internal/observability"
)

const (
	endpointAreas    = "areas"
	endpointForecast = "forecast"
)

// Client implements domain.AreaSource and domain.ForecastSource against the
// public JMA bosai JSON endpoints.
type Client struct {
	areaURL     string
	forecastURL func(areaCode string) string
	httpClient  *http.Client
	limiter     *rate.Limiter
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a JMA client. Outbound requests are limited to
// cfg.JMARateLimit per second.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		areaURL:     cfg.JMAAreaURL,
		forecastURL: cfg.ForecastURL,
		httpClient: &http.Client{
			Timeout: cfg.JMATimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.JMARateLimit), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchAreas downloads the area directory.
func (c *Client) FetchAreas(ctx context.Context) (domain.AreaDirectory, error) {
	var resp areaResponse
	if err := c.getJSON(ctx, c.areaURL, endpointAreas, &resp); err != nil {
		return domain.AreaDirectory{}, err
	}
	if resp.Centers == nil || resp.Offices == nil {
		return domain.AreaDirectory{}, fmt.Errorf("decode area directory: missing centers or offices")
	}

	dir := domain.AreaDirectory{
		Centers: make(map[string]domain.Center, len(resp.Centers)),
		Offices: make(map[string]domain.Office, len(resp.Offices)),
	}
	for code, c := range resp.Centers {
		dir.Centers[code] = domain.Center{Code: code, Name: c.Name}
	}
	for code, o := range resp.Offices {
		dir.Offices[code] = domain.Office{Code: code, Name: o.Name, Parent: o.Parent}
	}

	c.logger.Info("area directory loaded", "centers", len(dir.Centers), "offices", len(dir.Offices))
	return dir, nil
}

// FetchForecast downloads the forecast for an office code and returns its
// first time series as entries.
func (c *Client) FetchForecast(ctx context.Context, areaCode string) ([]domain.ForecastEntry, error) {
	var reports []forecastReport
	if err := c.getJSON(ctx, c.forecastURL(areaCode), endpointForecast, &reports); err != nil {
		return nil, err
	}

	if len(reports) == 0 || len(reports[0].TimeSeries) == 0 {
		return nil, fmt.Errorf("area %s: %w: no time series", areaCode, domain.ErrMalformedForecast)
	}
	ts := reports[0].TimeSeries[0]
	if len(ts.Areas) == 0 {
		return nil, fmt.Errorf("area %s: %w: no areas in time series", areaCode, domain.ErrMalformedForecast)
	}

	entries := domain.PairEntries(areaCode, ts.TimeDefines, ts.Areas[0].Weathers)
	c.logger.Debug("forecast fetched", "area_code", areaCode, "entries", len(entries))
	return entries, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, endpoint string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit: %w", endpoint, err)
	}

	start := time.Now()
	err := c.doRequest(ctx, fullURL, endpoint, v)
	c.metrics.JMARequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
		c.logger.Warn("jma request failed", "endpoint", endpoint, "url", fullURL, "error", err)
	}
	c.metrics.JMARequests.WithLabelValues(endpoint, outcome).Inc()
	return err
}

func (c *Client) doRequest(ctx context.Context, fullURL, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jma API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// JMA API response types.

type areaResponse struct {
	Centers map[string]centerJSON `json:"centers"`
	Offices map[string]officeJSON `json:"offices"`
}

type centerJSON struct {
	Name     string   `json:"name"`
	EnName   string   `json:"enName"`
	Children []string `json:"children"`
}

type officeJSON struct {
	Name       string `json:"name"`
	EnName     string `json:"enName"`
	OfficeName string `json:"officeName"`
	Parent     string `json:"parent"`
}

type forecastReport struct {
	PublishingOffice string       `json:"publishingOffice"`
	ReportDatetime   string       `json:"reportDatetime"`
	TimeSeries       []timeSeries `json:"timeSeries"`
}

type timeSeries struct {
	TimeDefines []string       `json:"timeDefines"`
	Areas       []forecastArea `json:"areas"`
}

type forecastArea struct {
	Area struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"area"`
	Weathers []string `json:"weathers"`
}
