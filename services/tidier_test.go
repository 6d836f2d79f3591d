package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lordyo/podcast-analytics/models"
)

var testReference = []*models.OffsetReference{
	{PointInTime: "1m", PitDays: 30},
	{PointInTime: "1w", PitDays: 7},
	{PointInTime: "1d", PitDays: 1},
}

var testLabels = []string{"1m", "1w", "1d"}

func testEpisode(id, title string, posted time.Time, cells map[string]*float64) *models.Episode {
	return &models.Episode{
		ID:               id,
		Title:            title,
		PostDate:         posted,
		DaysSinceRelease: 365,
		Downloads:        1000,
		Snapshots:        cells,
	}
}

func TestTidyReshapeRowCount(t *testing.T) {
	tidier := NewTidier(newTestLogger())
	posted := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	episodes := []*models.Episode{
		testEpisode("ep-1", "A", posted, map[string]*float64{"1m": fptr(500), "1w": fptr(250), "1d": fptr(50)}),
		testEpisode("ep-2", "B", posted.AddDate(0, 1, 0), map[string]*float64{"1m": fptr(700), "1w": fptr(300), "1d": fptr(90)}),
	}

	obs, err := tidier.Tidy(episodes, testReference, testLabels)
	if err != nil {
		t.Fatalf("Tidy returned error: %v", err)
	}
	if len(obs) != len(episodes)*len(testLabels) {
		t.Errorf("row count: got %d, want %d", len(obs), len(episodes)*len(testLabels))
	}
}

func TestTidyDropsMissingCells(t *testing.T) {
	tidier := NewTidier(newTestLogger())
	posted := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	// too young to have a 1m snapshot
	episodes := []*models.Episode{
		testEpisode("ep-1", "A", posted, map[string]*float64{"1m": nil, "1w": fptr(250), "1d": fptr(50)}),
	}

	obs, err := tidier.Tidy(episodes, testReference, testLabels)
	if err != nil {
		t.Fatalf("Tidy returned error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("row count: got %d, want 2 (missing cell dropped, not zero-filled)", len(obs))
	}
	for _, o := range obs {
		if o.PointInTime == "1m" {
			t.Errorf("missing 1m cell leaked into output: %+v", o)
		}
	}
}

func TestTidyRateCorrectness(t *testing.T) {
	tidier := NewTidier(newTestLogger())
	posted := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	episodes := []*models.Episode{
		testEpisode("ep-1", "A", posted, map[string]*float64{"1m": fptr(900), "1w": fptr(250), "1d": fptr(50)}),
	}

	obs, err := tidier.Tidy(episodes, testReference, testLabels)
	if err != nil {
		t.Fatalf("Tidy returned error: %v", err)
	}
	for _, o := range obs {
		want := o.DownloadsInTime / float64(o.PitDays)
		if math.Abs(o.DownloadPerDayAtPit-want) > 1e-9 {
			t.Errorf("rate at %s: got %f, want %f", o.PointInTime, o.DownloadPerDayAtPit, want)
		}
	}
}

func TestTidyOrdersByPostDate(t *testing.T) {
	tidier := NewTidier(newTestLogger())
	early := time.Date(2021, 1, 1, 8, 0, 0, 0, time.UTC)
	late := time.Date(2021, 6, 1, 8, 0, 0, 0, time.UTC)

	episodes := []*models.Episode{
		testEpisode("ep-late", "Late", late, map[string]*float64{"1m": fptr(1), "1w": fptr(1), "1d": fptr(1)}),
		testEpisode("ep-early", "Early", early, map[string]*float64{"1m": fptr(1), "1w": fptr(1), "1d": fptr(1)}),
	}

	obs, err := tidier.Tidy(episodes, testReference, testLabels)
	if err != nil {
		t.Fatalf("Tidy returned error: %v", err)
	}

	for i := 1; i < len(obs); i++ {
		if obs[i].PostDate.Before(obs[i-1].PostDate) {
			t.Fatalf("observations not ordered by post_date at index %d", i)
		}
	}
	if obs[0].ID != "ep-early" {
		t.Errorf("first observation: got %s, want ep-early", obs[0].ID)
	}
	// offset columns keep their exported order within an episode
	if obs[0].PointInTime != "1m" || obs[1].PointInTime != "1w" || obs[2].PointInTime != "1d" {
		t.Errorf("offset order within episode not preserved: %s %s %s",
			obs[0].PointInTime, obs[1].PointInTime, obs[2].PointInTime)
	}
}

func TestTidyAbortsOnUnmappedOffset(t *testing.T) {
	tidier := NewTidier(newTestLogger())
	posted := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	episodes := []*models.Episode{
		testEpisode("ep-1", "A", posted, map[string]*float64{"2w": fptr(400)}),
	}

	obs, err := tidier.Tidy(episodes, testReference, []string{"2w"})
	if !errors.Is(err, ErrOffsetUnmapped) {
		t.Fatalf("expected ErrOffsetUnmapped, got %v", err)
	}
	if obs != nil {
		t.Errorf("expected no partial table, got %d rows", len(obs))
	}
}

func TestTidyNormalizesMarkerLabels(t *testing.T) {
	tidier := NewTidier(newTestLogger())
	posted := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	// some exports prefix offset columns with a marker character
	episodes := []*models.Episode{
		testEpisode("ep-1", "A", posted, map[string]*float64{"X1w": fptr(700)}),
	}

	obs, err := tidier.Tidy(episodes, testReference, []string{"X1w"})
	if err != nil {
		t.Fatalf("Tidy returned error: %v", err)
	}
	if len(obs) != 1 || obs[0].PointInTime != "1w" {
		t.Fatalf("marker label not normalized: %+v", obs)
	}
	if obs[0].PitDays != 7 {
		t.Errorf("pit_days: got %d, want 7", obs[0].PitDays)
	}
}

func TestNormalizeOffsetLabelIdempotent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"X3y", "3y"},
		{"3y", "3y"},
		{"X1w", "1w"},
		{"1d", "1d"},
		{"", ""},
	}

	for _, tt := range tests {
		once := NormalizeOffsetLabel(tt.in)
		if once != tt.want {
			t.Errorf("NormalizeOffsetLabel(%q) = %q; want %q", tt.in, once, tt.want)
		}
		if twice := NormalizeOffsetLabel(once); twice != once {
			t.Errorf("NormalizeOffsetLabel not idempotent for %q: %q then %q", tt.in, once, twice)
		}
	}
}
