package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/lordyo/podcast-analytics/models"
	"github.com/lordyo/podcast-analytics/utils"
)

// PostgresWriter persists the tidy observation table to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS tidy_observations (
			id                      TEXT         NOT NULL,
			title                   TEXT         NOT NULL,
			post_date               TIMESTAMPTZ  NOT NULL,
			days_since_release      INTEGER      NOT NULL,
			downloads               NUMERIC      NOT NULL DEFAULT 0,
			point_in_time           VARCHAR(16)  NOT NULL,
			downloads_in_time       NUMERIC      NOT NULL,
			pit_days                INTEGER      NOT NULL,
			download_per_day_at_pit NUMERIC      NOT NULL,
			PRIMARY KEY (id, point_in_time)
		);

		CREATE INDEX IF NOT EXISTS idx_tidy_post_date     ON tidy_observations(post_date);
		CREATE INDEX IF NOT EXISTS idx_tidy_point_in_time ON tidy_observations(point_in_time);
		CREATE INDEX IF NOT EXISTS idx_tidy_downloads     ON tidy_observations(downloads);
	`)
	return err
}

// Clear deletes all stored observations. Each import replaces the table
// wholesale; there is no incremental merge.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM tidy_observations")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts the full tidy table, clearing old data first.
func (pw *PostgresWriter) Write(observations []*models.TidyObservation) error {
	if len(observations) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 100
	for i := 0; i < len(observations); i += batchSize {
		end := i + batchSize
		if end > len(observations) {
			end = len(observations)
		}
		if err := pw.insertBatch(observations[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.TidyObservation) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*9)

	for idx, o := range batch {
		base := idx * 9
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			o.ID, o.Title, o.PostDate, o.DaysSinceRelease, o.Downloads,
			o.PointInTime, o.DownloadsInTime, o.PitDays, o.DownloadPerDayAtPit)
	}

	query := fmt.Sprintf(`
		INSERT INTO tidy_observations
			(id, title, post_date, days_since_release, downloads,
			 point_in_time, downloads_in_time, pit_days, download_per_day_at_pit)
		VALUES %s
		ON CONFLICT (id, point_in_time) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves the stored tidy table for the ranking views. Rows come
// back post_date ascending, then id, then pit_days descending. Same-timestamp
// episodes and offset columns may therefore read differently than the
// in-memory table, which keeps input order and exported column order; the
// views sort and group on their own, so either order feeds them equally.
func (pw *PostgresWriter) FetchAll() ([]*models.TidyObservation, error) {
	rows, err := pw.db.Query(`
		SELECT id, title, post_date, days_since_release, downloads,
		       point_in_time, downloads_in_time, pit_days, download_per_day_at_pit
		FROM tidy_observations
		ORDER BY post_date, id, pit_days DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var observations []*models.TidyObservation
	for rows.Next() {
		o := &models.TidyObservation{}
		if err := rows.Scan(
			&o.ID, &o.Title, &o.PostDate, &o.DaysSinceRelease, &o.Downloads,
			&o.PointInTime, &o.DownloadsInTime, &o.PitDays, &o.DownloadPerDayAtPit,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}
