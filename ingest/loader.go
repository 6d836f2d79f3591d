package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lordyo/podcast-analytics/config"
	"github.com/lordyo/podcast-analytics/models"
	"github.com/lordyo/podcast-analytics/utils"
)

var (
	// ErrSourceNotFound marks a missing input file. Fatal for the run.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrSchemaMismatch marks an input whose columns or cell types do not
	// match the expected export schema. Fatal for the run.
	ErrSchemaMismatch = errors.New("source schema mismatch")
)

// exportIdentityColumns are the fixed leading columns of the analytics
// export; everything after them is a snapshot-offset column.
var exportIdentityColumns = []string{"id", "title", "post_date", "days_since_release", "downloads"}

var referenceColumns = []string{"point_in_time", "pit_days"}

// CSVLoader reads the two tabular sources of the import: the analytics
// export and the offset-reference table. It performs no type coercion beyond
// the declared schema and leaves timestamp parsing to the cleaner.
type CSVLoader struct {
	cfg    *config.Config
	logger *utils.Logger
}

// NewCSVLoader creates a loader bound to the configured input paths.
func NewCSVLoader(cfg *config.Config, logger *utils.Logger) *CSVLoader {
	return &CSVLoader{cfg: cfg, logger: logger}
}

// LoadExport reads the analytics export and returns one raw row per episode
// plus the ordered list of snapshot-offset labels taken from the header
// (largest offset first, as exported). Empty snapshot cells load as missing,
// never as zero.
func (l *CSVLoader) LoadExport() ([]*models.EpisodeSnapshotRaw, []string, error) {
	f, err := os.Open(l.cfg.ExportPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, l.cfg.ExportPath)
		}
		return nil, nil, fmt.Errorf("ingest: open export: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: export has no header row", ErrSchemaMismatch)
	}

	offsetLabels, err := validateExportHeader(header)
	if err != nil {
		return nil, nil, err
	}

	seen := utils.NewIDSet()
	var rows []*models.EpisodeSnapshotRaw

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.Reader pins every row to the header's width
			if errors.Is(err, csv.ErrFieldCount) {
				return nil, nil, fmt.Errorf("%w: line %d has the wrong number of fields: %v",
					ErrSchemaMismatch, line, err)
			}
			return nil, nil, fmt.Errorf("ingest: read export line %d: %w", line, err)
		}

		row, err := parseExportRow(record, offsetLabels, line)
		if err != nil {
			return nil, nil, err
		}
		if !seen.Add(row.ID) {
			return nil, nil, fmt.Errorf("%w: duplicate episode id %q (line %d)",
				ErrSchemaMismatch, row.ID, line)
		}
		rows = append(rows, row)
	}

	l.logger.Info("[ingest] Loaded %d episodes with %d snapshot columns from %s",
		len(rows), len(offsetLabels), l.cfg.ExportPath)
	return rows, offsetLabels, nil
}

// LoadReference reads the offset-reference table mapping each point-in-time
// label to its calendar-day equivalent.
func (l *CSVLoader) LoadReference() ([]*models.OffsetReference, error) {
	f, err := os.Open(l.cfg.ReferencePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, l.cfg.ReferencePath)
		}
		return nil, fmt.Errorf("ingest: open reference: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(referenceColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reference has no header row", ErrSchemaMismatch)
	}
	for i, want := range referenceColumns {
		if normaliseHeader(header[i]) != want {
			return nil, fmt.Errorf("%w: reference column %d is %q, want %q",
				ErrSchemaMismatch, i+1, header[i], want)
		}
	}

	var refs []*models.OffsetReference
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: line %d has the wrong number of fields: %v",
					ErrSchemaMismatch, line, err)
			}
			return nil, fmt.Errorf("ingest: read reference line %d: %w", line, err)
		}

		days, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: pit_days %q is not an integer (line %d)",
				ErrSchemaMismatch, record[1], line)
		}

		refs = append(refs, &models.OffsetReference{
			PointInTime: strings.TrimSpace(record[0]),
			PitDays:     days,
		})
	}

	l.logger.Info("[ingest] Loaded %d offset reference entries from %s",
		len(refs), l.cfg.ReferencePath)
	return refs, nil
}

func validateExportHeader(header []string) ([]string, error) {
	if len(header) < len(exportIdentityColumns)+1 {
		return nil, fmt.Errorf("%w: export has %d columns, want at least %d",
			ErrSchemaMismatch, len(header), len(exportIdentityColumns)+1)
	}
	for i, want := range exportIdentityColumns {
		if normaliseHeader(header[i]) != want {
			return nil, fmt.Errorf("%w: export column %d is %q, want %q",
				ErrSchemaMismatch, i+1, header[i], want)
		}
	}

	labels := make([]string, 0, len(header)-len(exportIdentityColumns))
	for _, label := range header[len(exportIdentityColumns):] {
		labels = append(labels, strings.TrimSpace(label))
	}
	return labels, nil
}

func parseExportRow(record []string, offsetLabels []string, line int) (*models.EpisodeSnapshotRaw, error) {
	id := strings.TrimSpace(record[0])
	if id == "" {
		return nil, fmt.Errorf("%w: empty episode id (line %d)", ErrSchemaMismatch, line)
	}

	days, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: days_since_release %q is not an integer (line %d)",
			ErrSchemaMismatch, record[3], line)
	}

	downloads, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: downloads %q is not numeric (line %d)",
			ErrSchemaMismatch, record[4], line)
	}

	snapshots := make(map[string]*float64, len(offsetLabels))
	for i, label := range offsetLabels {
		cell := strings.TrimSpace(record[len(exportIdentityColumns)+i])
		if cell == "" || strings.EqualFold(cell, "na") {
			snapshots[label] = nil
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: snapshot %q at offset %q is not numeric (line %d)",
				ErrSchemaMismatch, cell, label, line)
		}
		val := v
		snapshots[label] = &val
	}

	return &models.EpisodeSnapshotRaw{
		ID:               id,
		Title:            record[1],
		RawPostDate:      strings.TrimSpace(record[2]),
		DaysSinceRelease: days,
		Downloads:        downloads,
		Snapshots:        snapshots,
	}, nil
}

func normaliseHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}
