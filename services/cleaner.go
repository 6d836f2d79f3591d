package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/lordyo/podcast-analytics/models"
	"github.com/lordyo/podcast-analytics/utils"
)

// postDateLayout is the fixed timestamp format of the analytics export.
const postDateLayout = "2006-01-02 15:04"

// ErrBadPostDate marks a post_date the export's timestamp format cannot
// parse. The whole import aborts rather than skipping the row: post_date
// drives downstream ordering, so a partial table would order wrong silently.
var ErrBadPostDate = errors.New("malformed post_date")

// Cleaner turns raw export rows into cleaned episodes: post_date parsed,
// columns pruned to the identity set plus the snapshot cells.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw rows and returns cleaned episodes in input order.
// Output row count always equals input row count; any malformed timestamp
// fails the whole import.
func (c *Cleaner) Clean(raw []*models.EpisodeSnapshotRaw) ([]*models.Episode, error) {
	episodes := make([]*models.Episode, 0, len(raw))

	for i, r := range raw {
		postDate, err := time.Parse(postDateLayout, r.RawPostDate)
		if err != nil {
			return nil, fmt.Errorf("%w: episode %q row %d: %q (want %s)",
				ErrBadPostDate, r.ID, i+1, r.RawPostDate, postDateLayout)
		}

		episodes = append(episodes, &models.Episode{
			ID:               r.ID,
			Title:            r.Title,
			PostDate:         postDate,
			DaysSinceRelease: r.DaysSinceRelease,
			Downloads:        r.Downloads,
			Snapshots:        r.Snapshots,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d episodes", len(episodes))
	return episodes, nil
}
