package services

import (
	"sort"

	"github.com/lordyo/podcast-analytics/models"
)

// Chart builders are pure functions from the tidy table to declarative
// series specs; rendering lives in the charts package.

// AverageDownloadsCurve groups observations by pit_days and emits one line
// series of mean cumulative downloads per day count, ordered by pit_days
// ascending.
func AverageDownloadsCurve(observations []*models.TidyObservation) models.ChartSeries {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, o := range observations {
		sums[o.PitDays] += o.DownloadsInTime
		counts[o.PitDays]++
	}

	days := make([]int, 0, len(sums))
	for d := range sums {
		days = append(days, d)
	}
	sort.Ints(days)

	points := make([]models.ChartPoint, 0, len(days))
	for _, d := range days {
		points = append(points, models.ChartPoint{
			X: float64(d),
			Y: sums[d] / float64(counts[d]),
		})
	}

	return models.ChartSeries{Name: "average downloads", Points: points}
}

// DownloadCurvesPerEpisode emits one series per episode, points
// (pit_days, downloads_in_time) in ascending pit_days order, with the
// episode title as the trailing label for the series' last point. No
// averaging: every episode is shown.
func DownloadCurvesPerEpisode(observations []*models.TidyObservation) []models.ChartSeries {
	byEpisode := make(map[string][]*models.TidyObservation)
	var order []string
	for _, o := range observations {
		if _, seen := byEpisode[o.ID]; !seen {
			order = append(order, o.ID)
		}
		byEpisode[o.ID] = append(byEpisode[o.ID], o)
	}

	series := make([]models.ChartSeries, 0, len(order))
	for _, id := range order {
		obs := byEpisode[id]
		sort.SliceStable(obs, func(i, j int) bool {
			return obs[i].PitDays < obs[j].PitDays
		})

		points := make([]models.ChartPoint, 0, len(obs))
		for _, o := range obs {
			points = append(points, models.ChartPoint{
				X: float64(o.PitDays),
				Y: o.DownloadsInTime,
			})
		}

		series = append(series, models.ChartSeries{
			Name:   obs[0].Title,
			Label:  obs[0].Title,
			Points: points,
		})
	}
	return series
}
