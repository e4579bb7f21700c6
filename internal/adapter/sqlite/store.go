package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/jma-forecast/internal/domain"

	_ "modernc.org/sqlite"
)

// createdAtLayout is the local wall-clock format of the created_at column.
const createdAtLayout = "2006-01-02 15:04:05"

const schema = `CREATE TABLE IF NOT EXISTS forecasts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	area_code TEXT NOT NULL,
	report_date TEXT NOT NULL,
	weather_text TEXT,
	created_at TEXT,
	UNIQUE(area_code, report_date)
)`

// Store implements domain.ForecastStore on a single SQLite file using the
// pure Go modernc.org/sqlite driver.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps access to the file sequential.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		logger.Warn("could not set WAL mode", "error", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// UpsertForecasts writes all entries in one transaction. An existing row with
// the same (area_code, report_date) keeps its id and takes the new text and
// created_at.
func (s *Store) UpsertForecasts(ctx context.Context, areaCode string, entries []domain.ForecastEntry, createdAt time.Time) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO forecasts (area_code, report_date, weather_text, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(area_code, report_date) DO UPDATE SET
			weather_text = excluded.weather_text,
			created_at = excluded.created_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	stamp := createdAt.Local().Format(createdAtLayout)
	for _, e := range entries {
		if _, err = stmt.ExecContext(ctx, areaCode, e.ReportDate, e.Weather, stamp); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", areaCode, e.ReportDate, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	s.logger.Debug("saved forecast records", "area_code", areaCode, "count", len(entries))
	return nil
}

// ListForecasts returns the stored records for an area ordered by report date ascending.
func (s *Store) ListForecasts(ctx context.Context, areaCode string) ([]domain.ForecastRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, area_code, report_date, weather_text, created_at
		FROM forecasts
		WHERE area_code = ?
		ORDER BY report_date ASC`, areaCode)
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	var out []domain.ForecastRecord
	for rows.Next() {
		var (
			r         domain.ForecastRecord
			weather   sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.AreaCode, &r.ReportDate, &weather, &createdAt); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		r.Weather = weather.String
		if createdAt.Valid {
			t, err := time.ParseInLocation(createdAtLayout, createdAt.String, time.Local)
			if err != nil {
				s.logger.Debug("unparsable created_at", "id", r.ID, "value", createdAt.String, "error", err)
			} else {
				r.CreatedAt = t
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecasts: %w", err)
	}
	return out, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
