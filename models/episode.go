package models

import "time"

// EpisodeSnapshotRaw holds one row of the analytics export as read from disk.
// Snapshot cells are keyed by offset label ("3y" ... "1d"); a nil value means
// the export had no recorded count for that episode at that offset.
type EpisodeSnapshotRaw struct {
	ID               string
	Title            string
	RawPostDate      string
	DaysSinceRelease int
	Downloads        float64
	Snapshots        map[string]*float64
}

// OffsetReference maps an offset label to the number of calendar days it
// represents.
type OffsetReference struct {
	PointInTime string
	PitDays     int
}

// Episode is the cleaned export row: post_date parsed, columns pruned.
type Episode struct {
	ID               string
	Title            string
	PostDate         time.Time
	DaysSinceRelease int
	Downloads        float64
	Snapshots        map[string]*float64
}

// TidyObservation is one row of the normalized longitudinal record: one
// (episode, offset) pair with a present download count. The tidy table is
// immutable once produced; every view reads it without mutation.
type TidyObservation struct {
	ID                  string
	Title               string
	PostDate            time.Time
	DaysSinceRelease    int
	Downloads           float64
	PointInTime         string
	DownloadsInTime     float64
	PitDays             int
	DownloadPerDayAtPit float64
}

// RankedEpisode is the output row shape shared by the ranking views.
// Rate carries the view's metric: total downloads for MostDownloaded,
// downloads/day at the start offset for BestStarts, lifetime downloads/day
// for Evergreens.
type RankedEpisode struct {
	ID               string
	Title            string
	DaysSinceRelease int
	Downloads        float64
	Rate             float64
}

// RankingReport bundles the three ranked views for console output.
type RankingReport struct {
	TotalEpisodes     int
	TotalObservations int
	StartOffset       string
	MinAgeDays        int
	MostDownloaded    []*RankedEpisode
	BestStarts        []*RankedEpisode
	Evergreens        []*RankedEpisode
}
