package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/lordyo/podcast-analytics/models"
)

// CSVWriter writes the tidy observation table to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"id", "title", "post_date", "days_since_release", "downloads",
		"point_in_time", "downloads_in_time", "pit_days", "download_per_day_at_pit",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per tidy observation, in table order.
func (c *CSVWriter) Write(observations []*models.TidyObservation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range observations {
		row := []string{
			o.ID,
			o.Title,
			o.PostDate.Format(time.DateTime),
			strconv.Itoa(o.DaysSinceRelease),
			strconv.FormatFloat(o.Downloads, 'f', -1, 64),
			o.PointInTime,
			strconv.FormatFloat(o.DownloadsInTime, 'f', -1, 64),
			strconv.Itoa(o.PitDays),
			strconv.FormatFloat(o.DownloadPerDayAtPit, 'f', 4, 64),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
