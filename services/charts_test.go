package services

import (
	"testing"
)

func TestAverageDownloadsCurve(t *testing.T) {
	obs := sampleObservations()
	series := AverageDownloadsCurve(obs)

	if len(series.Points) != 2 {
		t.Fatalf("expected 2 grouped points (pit 7 and 30), got %d", len(series.Points))
	}

	// ordered by pit_days ascending
	if series.Points[0].X != 7 || series.Points[1].X != 30 {
		t.Errorf("x order: got %v, %v, want 7, 30", series.Points[0].X, series.Points[1].X)
	}

	// pit 7: (1000 + 1400 + 450 + 300) / 4
	wantWeek := (1000.0 + 1400.0 + 450.0 + 300.0) / 4.0
	if series.Points[0].Y != wantWeek {
		t.Errorf("mean at pit 7: got %f, want %f", series.Points[0].Y, wantWeek)
	}

	// pit 30: (800 + 1200) / 2
	if series.Points[1].Y != 1000 {
		t.Errorf("mean at pit 30: got %f, want 1000", series.Points[1].Y)
	}
}

func TestDownloadCurvesPerEpisode(t *testing.T) {
	obs := sampleObservations()
	series := DownloadCurvesPerEpisode(obs)

	if len(series) != 4 {
		t.Fatalf("expected one series per episode (4), got %d", len(series))
	}

	alpha := series[0]
	if alpha.Name != "Alpha" {
		t.Fatalf("first series: got %q, want Alpha (tidy order)", alpha.Name)
	}
	if alpha.Label != "Alpha" {
		t.Errorf("trailing label: got %q, want episode title", alpha.Label)
	}
	if len(alpha.Points) != 2 {
		t.Fatalf("Alpha points: got %d, want 2", len(alpha.Points))
	}
	// points ascend by pit_days within the series
	if alpha.Points[0].X != 7 || alpha.Points[1].X != 30 {
		t.Errorf("Alpha point order: got %v, %v, want 7, 30", alpha.Points[0].X, alpha.Points[1].X)
	}
	if alpha.Points[0].Y != 1000 || alpha.Points[1].Y != 800 {
		t.Errorf("Alpha values: got %v, %v, want 1000, 800", alpha.Points[0].Y, alpha.Points[1].Y)
	}
}

func TestChartsOnEmptyTable(t *testing.T) {
	if got := AverageDownloadsCurve(nil); len(got.Points) != 0 {
		t.Errorf("empty table should yield empty series, got %d points", len(got.Points))
	}
	if got := DownloadCurvesPerEpisode(nil); len(got) != 0 {
		t.Errorf("empty table should yield no series, got %d", len(got))
	}
}
