package services

import (
	"errors"
	"fmt"
	"sort"
	"unicode"

	"github.com/lordyo/podcast-analytics/models"
	"github.com/lordyo/podcast-analytics/utils"
)

// ErrOffsetUnmapped marks an offset label present in the export but absent
// from (or non-positive in) the reference table. The rate is undefined
// without a day count, and the mismatch means export and reference disagree
// on the data contract, so the whole import aborts.
var ErrOffsetUnmapped = errors.New("offset label missing from reference")

// Tidier reshapes the wide per-episode export into the normalized
// longitudinal record: one row per (episode, offset) observation, joined
// against the calendar-day reference, with a derived per-day download rate.
// The transform is all-or-nothing; no partial table is ever returned.
type Tidier struct {
	logger *utils.Logger
}

// NewTidier creates a Tidier with the given logger.
func NewTidier(logger *utils.Logger) *Tidier {
	return &Tidier{logger: logger}
}

// Tidy converts cleaned episodes into tidy observations.
//
// offsetLabels is the ordered snapshot-column set from the export header;
// passing it explicitly keeps the transform testable against synthetic
// tables. Output ordering: post_date ascending (ties keep input order), then
// offset columns in their original order within each episode. Missing
// snapshot cells are dropped, not zero-filled.
func (t *Tidier) Tidy(
	episodes []*models.Episode,
	reference []*models.OffsetReference,
	offsetLabels []string,
) ([]*models.TidyObservation, error) {
	pitDays := make(map[string]int, len(reference))
	for _, ref := range reference {
		pitDays[ref.PointInTime] = ref.PitDays
	}

	ordered := make([]*models.Episode, len(episodes))
	copy(ordered, episodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PostDate.Before(ordered[j].PostDate)
	})

	observations := make([]*models.TidyObservation, 0, len(ordered)*len(offsetLabels))
	dropped := 0

	for _, ep := range ordered {
		for _, label := range offsetLabels {
			cell, ok := ep.Snapshots[label]
			if !ok || cell == nil {
				dropped++
				continue
			}

			days, ok := lookupPitDays(pitDays, label)
			if !ok {
				return nil, fmt.Errorf("%w: %q (episode %q)", ErrOffsetUnmapped, label, ep.ID)
			}

			observations = append(observations, &models.TidyObservation{
				ID:                  ep.ID,
				Title:               ep.Title,
				PostDate:            ep.PostDate,
				DaysSinceRelease:    ep.DaysSinceRelease,
				Downloads:           ep.Downloads,
				PointInTime:         NormalizeOffsetLabel(label),
				DownloadsInTime:     *cell,
				PitDays:             days,
				DownloadPerDayAtPit: *cell / float64(days),
			})
		}
	}

	t.logger.Info("[tidier] %d episodes × %d offsets → %d observations (%d missing cells dropped)",
		len(ordered), len(offsetLabels), len(observations), dropped)
	return observations, nil
}

// lookupPitDays resolves a label against the reference, accepting either the
// exported spelling or its normalized form. Non-positive day counts are
// treated as unmapped: the rate needs pit_days > 0.
func lookupPitDays(pitDays map[string]int, label string) (int, bool) {
	days, ok := pitDays[label]
	if !ok {
		days, ok = pitDays[NormalizeOffsetLabel(label)]
	}
	if !ok || days <= 0 {
		return 0, false
	}
	return days, true
}

// NormalizeOffsetLabel strips a single leading non-numeric marker character
// some source systems prefix offset labels with ("X3y" → "3y"). Bare labels
// pass through unchanged, so the operation is idempotent.
func NormalizeOffsetLabel(label string) string {
	runes := []rune(label)
	if len(runes) > 1 && !unicode.IsDigit(runes[0]) {
		return string(runes[1:])
	}
	return label
}
