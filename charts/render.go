// Package charts renders the declarative series specs produced by the
// services package to PNG files. It is the presentation collaborator: it
// reads finished series and never touches the tidy table itself.
package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lordyo/podcast-analytics/models"
)

// RenderAverageCurve draws the mean-downloads line chart to path.
func RenderAverageCurve(series models.ChartSeries, path string) error {
	p := plot.New()
	p.Title.Text = "Average downloads per point in time"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "days since release"
	p.Y.Label.Text = "downloads"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(toXYs(series.Points))
	if err != nil {
		return fmt.Errorf("charts: average curve: %w", err)
	}
	line.Width = vg.Points(2)
	line.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	p.Add(line)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("charts: save %s: %w", path, err)
	}
	return nil
}

// RenderEpisodeCurves overlays one semi-transparent line per episode and
// places each episode's title at the last point of its series.
func RenderEpisodeCurves(series []models.ChartSeries, path string) error {
	p := plot.New()
	p.Title.Text = "Downloads over time per episode"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "days since release"
	p.Y.Label.Text = "downloads"
	p.Add(plotter.NewGrid())

	var labels plotter.XYLabels
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}

		line, err := plotter.NewLine(toXYs(s.Points))
		if err != nil {
			return fmt.Errorf("charts: episode curve %q: %w", s.Name, err)
		}
		line.Width = vg.Points(1)
		// alpha keeps overlapping episodes readable
		line.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0x50}
		p.Add(line)

		if s.Label != "" {
			last := s.Points[len(s.Points)-1]
			labels.XYs = append(labels.XYs, plotter.XY{X: last.X, Y: last.Y})
			labels.Labels = append(labels.Labels, s.Label)
		}
	}

	if len(labels.Labels) > 0 {
		labelPoints, err := plotter.NewLabels(labels)
		if err != nil {
			return fmt.Errorf("charts: episode labels: %w", err)
		}
		p.Add(labelPoints)
	}

	if err := p.Save(12*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("charts: save %s: %w", path, err)
	}
	return nil
}

func toXYs(points []models.ChartPoint) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return xys
}
