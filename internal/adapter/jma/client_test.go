package jma

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/jma-forecast/internal/config"
	"github.com/couchcryptid/jma-forecast/internal/domain"
	"github.com/couchcryptid/jma-forecast/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

const areaJSON = `{
  "centers": {
    "010300": {"name": "関東甲信地方", "enName": "Kanto Koshin", "officeName": "気象庁", "children": ["130000", "140000"]},
    "010100": {"name": "北海道地方", "enName": "Hokkaido", "officeName": "札幌管区気象台", "children": ["016000"]}
  },
  "offices": {
    "130000": {"name": "東京都", "enName": "Tokyo", "officeName": "気象庁", "parent": "010300", "children": ["130010"]},
    "140000": {"name": "神奈川県", "enName": "Kanagawa", "officeName": "横浜地方気象台", "parent": "010300", "children": ["140010"]},
    "016000": {"name": "石狩・空知・後志地方", "enName": "Ishikari", "officeName": "札幌管区気象台", "parent": "010100", "children": []}
  }
}`

const forecastJSON = `[
  {
    "publishingOffice": "気象庁",
    "reportDatetime": "2026-10-15T17:00:00+09:00",
    "timeSeries": [
      {
        "timeDefines": ["2026-10-15T17:00:00+09:00", "2026-10-16T00:00:00+09:00", "2026-10-17T00:00:00+09:00"],
        "areas": [
          {"area": {"name": "東京地方", "code": "130010"}, "weathers": ["くもり　夜　雨", "雨　後　晴れ", "晴れ"]},
          {"area": {"name": "伊豆諸島北部", "code": "130020"}, "weathers": ["雨", "雨", "くもり"]}
        ]
      },
      {"timeDefines": ["2026-10-15T18:00:00+09:00"], "areas": []}
    ]
  },
  {"publishingOffice": "気象庁", "timeSeries": []}
]`

func testClient(baseURL string) *Client {
	cfg := &config.Config{
		JMAAreaURL:     baseURL + "/common/const/area.json",
		JMAForecastURL: baseURL + "/forecast/data/forecast/" + config.AreaCodePlaceholder + ".json",
		JMATimeout:     5 * time.Second,
		JMARateLimit:   1,
	}
	c := NewClient(cfg, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchAreas_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/common/const/area.json", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(areaJSON))
	}))
	defer srv.Close()

	dir, err := testClient(srv.URL).FetchAreas(context.Background())
	require.NoError(t, err)

	require.Len(t, dir.Centers, 2)
	require.Len(t, dir.Offices, 3)
	assert.Equal(t, domain.Center{Code: "010300", Name: "関東甲信地方"}, dir.Centers["010300"])
	assert.Equal(t, domain.Office{Code: "130000", Name: "東京都", Parent: "010300"}, dir.Offices["130000"])

	offices := dir.OfficesOf("010300")
	require.Len(t, offices, 2)
	assert.Equal(t, "130000", offices[0].Code)
}

func TestClient_FetchAreas_MissingMaps(t *testing.T) {
	srv := serveJSON(t, `{"centers": {}}`)

	_, err := testClient(srv.URL).FetchAreas(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing centers or offices")
}

func TestClient_FetchForecast_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast/data/forecast/130000.json", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(forecastJSON))
	}))
	defer srv.Close()

	entries, err := testClient(srv.URL).FetchForecast(context.Background(), "130000")
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, domain.ForecastEntry{AreaCode: "130000", ReportDate: "2026-10-15", Weather: "くもり　夜　雨"}, entries[0])
	assert.Equal(t, "2026-10-16", entries[1].ReportDate)
	assert.Equal(t, "雨　後　晴れ", entries[1].Weather)
	assert.Equal(t, "2026-10-17", entries[2].ReportDate)
}

func TestClient_FetchForecast_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty array", `[]`},
		{"no time series", `[{"timeSeries": []}]`},
		{"no areas", `[{"timeSeries": [{"timeDefines": ["2026-10-15T17:00:00+09:00"], "areas": []}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveJSON(t, tt.body)

			_, err := testClient(srv.URL).FetchForecast(context.Background(), "130000")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedForecast))
		})
	}
}

func TestClient_FetchForecast_InvalidJSON(t *testing.T) {
	srv := serveJSON(t, `{"not": "an array"}`)

	_, err := testClient(srv.URL).FetchForecast(context.Background(), "130000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode forecast response")
}

func TestClient_FetchForecast_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`not found`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchForecast(context.Background(), "999999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	_, err := testClient(baseURL).FetchAreas(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "areas request")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.FetchForecast(context.Background(), "130000")
	require.Error(t, err)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := serveJSON(t, forecastJSON)

	c := testClient(srv.URL)
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := c.FetchForecast(context.Background(), "130000")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.FetchForecast(ctx, "130000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
