package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lordyo/podcast-analytics/models"
	"github.com/lordyo/podcast-analytics/utils"
)

// RankingService derives the ranked views from the tidy table. All views are
// pure readers: they share the filter → deduplicate → sort → take-top-N
// shape and never mutate or error on the table itself. A signed n selects
// direction: n >= 0 returns the top n, n < 0 the bottom |n| (worst-first).
// Both directions slice one canonical ranking (metric descending, ties by id
// ascending), so results are reproducible and top-n never overlaps bottom-n.
type RankingService struct {
	logger *utils.Logger
}

// NewRankingService creates a RankingService with the given logger.
func NewRankingService(logger *utils.Logger) *RankingService {
	return &RankingService{logger: logger}
}

// MostDownloaded ranks episodes by their total downloads at export time.
// Each episode appears once regardless of how many offset rows it has.
func (s *RankingService) MostDownloaded(observations []*models.TidyObservation, n int) []*models.RankedEpisode {
	episodes := dedupeEpisodes(observations)
	for _, e := range episodes {
		e.Rate = e.Downloads
	}
	return takeTopN(episodes, n)
}

// BestStarts ranks episodes by their download rate at the given start
// offset (canonically "1w"). A label matching no rows yields an empty
// result, not an error: the label is simply absent from the reference.
func (s *RankingService) BestStarts(observations []*models.TidyObservation, startOffset string, n int) []*models.RankedEpisode {
	want := NormalizeOffsetLabel(startOffset)

	var rows []*models.RankedEpisode
	for _, o := range observations {
		if o.PointInTime != want {
			continue
		}
		rows = append(rows, &models.RankedEpisode{
			ID:               o.ID,
			Title:            o.Title,
			DaysSinceRelease: o.DaysSinceRelease,
			Downloads:        o.DownloadsInTime,
			Rate:             o.DownloadPerDayAtPit,
		})
	}
	if len(rows) == 0 {
		s.logger.Debug("[rankings] No observations at offset %q", want)
	}
	return takeTopN(rows, n)
}

// Evergreens ranks episodes older than minAgeDays by their lifetime
// downloads per day. Young episodes never appear, regardless of rate: their
// early averages are inflated by launch attention.
func (s *RankingService) Evergreens(observations []*models.TidyObservation, n, minAgeDays int) []*models.RankedEpisode {
	var rows []*models.RankedEpisode
	for _, e := range dedupeEpisodes(observations) {
		if e.DaysSinceRelease <= minAgeDays || e.DaysSinceRelease <= 0 {
			continue
		}
		e.Rate = e.Downloads / float64(e.DaysSinceRelease)
		rows = append(rows, e)
	}
	return takeTopN(rows, n)
}

// Report assembles all three views over the same tidy table.
func (s *RankingService) Report(observations []*models.TidyObservation, cfg ReportConfig) *models.RankingReport {
	return &models.RankingReport{
		TotalEpisodes:     len(dedupeEpisodes(observations)),
		TotalObservations: len(observations),
		StartOffset:       cfg.StartOffset,
		MinAgeDays:        cfg.MinAgeDays,
		MostDownloaded:    s.MostDownloaded(observations, cfg.TopN),
		BestStarts:        s.BestStarts(observations, cfg.StartOffset, cfg.TopN),
		Evergreens:        s.Evergreens(observations, cfg.TopN, cfg.MinAgeDays),
	}
}

// ReportConfig carries the view parameters for a full report.
type ReportConfig struct {
	TopN        int
	StartOffset string
	MinAgeDays  int
}

// Print renders the report to stdout.
func (s *RankingService) Print(r *models.RankingReport) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🎙 PODCAST DOWNLOAD ANALYTICS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Episodes     : \033[1m%d\033[0m\n", r.TotalEpisodes)
	fmt.Printf("  Observations : \033[1m%d\033[0m\n", r.TotalObservations)
	fmt.Println()

	printRanked("Most Downloaded Episodes", "downloads", r.MostDownloaded, thin)
	printRanked(fmt.Sprintf("Best Starts (downloads/day at %s)", r.StartOffset), "dl/day", r.BestStarts, thin)
	printRanked(fmt.Sprintf("Evergreens (older than %d days, downloads/day overall)", r.MinAgeDays), "dl/day", r.Evergreens, thin)

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}

func printRanked(heading, unit string, rows []*models.RankedEpisode, thin string) {
	fmt.Printf("\033[1;33m  %s\033[0m\n", heading)
	fmt.Printf("  %s\n", thin)
	if len(rows) == 0 {
		fmt.Printf("  No matching episodes\n\n")
		return
	}
	for i, e := range rows {
		fmt.Printf("  \033[1m%2d.\033[0m %-42s \033[1;32m%10.1f %s\033[0m\n",
			i+1, truncate(e.Title, 42), e.Rate, unit)
	}
	fmt.Println()
}

// dedupeEpisodes projects the tidy table down to one row per episode,
// keeping tidy order (post_date ascending).
func dedupeEpisodes(observations []*models.TidyObservation) []*models.RankedEpisode {
	seen := make(map[string]struct{}, len(observations))
	episodes := make([]*models.RankedEpisode, 0, len(observations))

	for _, o := range observations {
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		episodes = append(episodes, &models.RankedEpisode{
			ID:               o.ID,
			Title:            o.Title,
			DaysSinceRelease: o.DaysSinceRelease,
			Downloads:        o.Downloads,
		})
	}
	return episodes
}

// takeTopN ranks rows in one canonical total order (Rate descending, ties by
// id ascending) and clips to |n| rows. n >= 0 returns the first n of that
// order; n < 0 returns the last |n| reversed, so the bottom list reads
// worst-first. Slicing both directions out of the same ranked list keeps
// top-n and bottom-n disjoint even when metrics tie. Asking for more rows
// than exist returns everything.
func takeTopN(rows []*models.RankedEpisode, n int) []*models.RankedEpisode {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Rate != rows[j].Rate {
			return rows[i].Rate > rows[j].Rate
		}
		return rows[i].ID < rows[j].ID
	})

	if n >= 0 {
		if n > len(rows) {
			n = len(rows)
		}
		return rows[:n]
	}

	limit := -n
	if limit > len(rows) {
		limit = len(rows)
	}
	bottom := make([]*models.RankedEpisode, limit)
	for i := 0; i < limit; i++ {
		bottom[i] = rows[len(rows)-1-i]
	}
	return bottom
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
