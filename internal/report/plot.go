package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/surv"
)

// WriteKMPlot renders the survival curve as a step plot with its
// confidence band and returns the PNG path.
func WriteKMPlot(dir string, e *surv.KMEstimate) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Kaplan-Meier Survival Curve"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Survival Probability"
	p.Y.Min, p.Y.Max = 0, 1.02
	p.Add(plotter.NewGrid())

	curve, err := plotter.NewLine(stepXYs(e, func(pt surv.KMPoint) float64 { return pt.Survival }))
	if err != nil {
		return "", fmt.Errorf("build survival line: %w", err)
	}
	curve.LineStyle.Width = vg.Points(1.5)
	curve.LineStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	lower, err := plotter.NewLine(stepXYs(e, func(pt surv.KMPoint) float64 { return pt.Lower }))
	if err != nil {
		return "", fmt.Errorf("build lower band: %w", err)
	}
	upper, err := plotter.NewLine(stepXYs(e, func(pt surv.KMPoint) float64 { return pt.Upper }))
	if err != nil {
		return "", fmt.Errorf("build upper band: %w", err)
	}
	band := color.RGBA{R: 31, G: 119, B: 180, A: 120}
	dashes := []vg.Length{vg.Points(3), vg.Points(2)}
	for _, l := range []*plotter.Line{lower, upper} {
		l.LineStyle.Width = vg.Points(0.75)
		l.LineStyle.Color = band
		l.LineStyle.Dashes = dashes
	}

	p.Add(curve, lower, upper)
	p.Legend.Add("KM estimate", curve)
	p.Legend.Add(fmt.Sprintf("%.0f%% CI", 100*e.CILevel), lower)
	p.Legend.Top = true

	path := filepath.Join(dir, FileKMPlot)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save plot: %w", err)
	}
	return path, nil
}

// stepXYs turns the event table into right-continuous step coordinates
// starting at (0, 1).
func stepXYs(e *surv.KMEstimate, y func(surv.KMPoint) float64) plotter.XYs {
	xys := plotter.XYs{{X: 0, Y: 1}}
	prev := 1.0
	for _, pt := range e.Points {
		v := y(pt)
		xys = append(xys, plotter.XY{X: pt.Time, Y: prev})
		xys = append(xys, plotter.XY{X: pt.Time, Y: v})
		prev = v
	}
	return xys
}
