// Package charts renders the lab's figures: solved consumption functions
// and regression scatter plots with fitted lines.
package charts

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/alanlujan91/DemARK/internal/perfforesight"
)

var (
	consumptionColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	referenceColor   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	fitColor         = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// ConsumptionFunction plots the solved consumption rule c(m) over
// [mMin, mMax] together with the 45-degree line c = m.
func ConsumptionFunction(sol *perfforesight.Solution, mMin, mMax float64, points int) (*plot.Plot, error) {
	ms, cs, err := sol.Sample(mMin, mMax, points)
	if err != nil {
		return nil, err
	}

	xys := make(plotter.XYs, len(ms))
	diag := make(plotter.XYs, len(ms))
	for i := range ms {
		xys[i].X, xys[i].Y = ms[i], cs[i]
		diag[i].X, diag[i].Y = ms[i], ms[i]
	}

	p := plot.New()
	p.Title.Text = "Perfect foresight consumption function"
	p.X.Label.Text = "normalized market resources m"
	p.Y.Label.Text = "normalized consumption c"

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("charts: consumption line: %w", err)
	}
	line.Color = consumptionColor
	line.Width = vg.Points(1.5)

	ref, err := plotter.NewLine(diag)
	if err != nil {
		return nil, fmt.Errorf("charts: reference line: %w", err)
	}
	ref.Color = referenceColor
	ref.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(line, ref)
	p.Legend.Add(fmt.Sprintf("c(m), MPC=%.3f", sol.MPC), line)
	p.Legend.Add("c = m", ref)
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// ScatterFit plots observation pairs with the fitted regression line
// c = intercept + slope*y laid over them.
func ScatterFit(y, c []float64, intercept, slope float64, title, xLabel, yLabel string) (*plot.Plot, error) {
	if len(y) != len(c) {
		return nil, fmt.Errorf("charts: %d x values but %d y values", len(y), len(c))
	}
	if len(y) == 0 {
		return nil, fmt.Errorf("charts: no observations to plot")
	}

	xys := make(plotter.XYs, len(y))
	for i := range y {
		xys[i].X, xys[i].Y = y[i], c[i]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("charts: scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = consumptionColor

	fit := plotter.NewFunction(func(x float64) float64 { return intercept + slope*x })
	fit.Color = fitColor
	fit.Width = vg.Points(1.5)

	p.Add(scatter, fit)
	p.Legend.Add("observations", scatter)
	p.Legend.Add(fmt.Sprintf("fit: %.1f + %.3f y", intercept, slope), fit)
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// WriteSVG renders a plot as SVG to w, the format the HTTP chart
// endpoints serve.
func WriteSVG(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePNG writes a plot to a PNG file, used by the CLI pipeline.
func SavePNG(p *plot.Plot, path string) error {
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
