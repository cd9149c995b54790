// Package render draws spectra and fit overlays with gonum/plot.
package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"fringe-analysis/internal/spectrum"
)

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// series colors, cycled in the order data sets are added.
var seriesPalette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
}

// Plot is one figure under construction.
type Plot struct {
	p      *plot.Plot
	series int
}

func NewPlot(title, xlabel, ylabel string) *Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.X.LineStyle.Width = vg.Points(1.5)
	p.Y.LineStyle.Width = vg.Points(1.5)
	p.Legend.Top = true
	p.Legend.Padding = vg.Points(5)
	return &Plot{p: p}
}

func (pl *Plot) nextColor() color.RGBA {
	c := seriesPalette[pl.series%len(seriesPalette)]
	pl.series++
	return c
}

// AddSpectrum scatters the data points, with y error bars when every
// point carries an uncertainty.
func (pl *Plot) AddSpectrum(name string, s spectrum.Spectrum) error {
	pts := make(plotter.XYs, len(s))
	for i, p := range s {
		pts[i].X = p.X
		pts[i].Y = p.Y
	}
	col := pl.nextColor()

	if s.Weighted() {
		errs := make(plotter.Errors, len(s))
		for i, p := range s {
			errs[i].Low = p.YErr
			errs[i].High = p.YErr
		}
		ep := errorPoints{XYs: pts, YErrors: plotter.YErrors(errs)}

		scatter, err := plotter.NewScatter(ep)
		if err != nil {
			return fmt.Errorf("failed to build scatter: %w", err)
		}
		bars, err := plotter.NewYErrorBars(ep)
		if err != nil {
			return fmt.Errorf("failed to build error bars: %w", err)
		}
		scatter.GlyphStyle.Color = col
		scatter.GlyphStyle.Radius = vg.Points(2)
		scatter.Shape = draw.CircleGlyph{}
		bars.LineStyle.Color = col

		pl.p.Add(bars, scatter)
		pl.p.Legend.Add(name, scatter)
		return nil
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Color = col
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.Shape = draw.CircleGlyph{}

	pl.p.Add(scatter)
	pl.p.Legend.Add(name, scatter)
	return nil
}

// AddCurve samples fn over [lo, hi] and draws it as a line.
func (pl *Plot) AddCurve(name string, fn func(float64) float64, lo, hi float64, samples int) error {
	if samples < 2 {
		samples = 2
	}
	pts := make(plotter.XYs, samples)
	step := (hi - lo) / float64(samples-1)
	for i := range pts {
		x := lo + float64(i)*step
		pts[i].X = x
		pts[i].Y = fn(x)
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build curve: %w", err)
	}
	line.Color = pl.nextColor()
	line.Width = vg.Points(1.5)

	pl.p.Add(line)
	pl.p.Legend.Add(name, line)
	return nil
}

// AddFit overlays the combined model and each component of a fit
// result across the data range of s.
func (pl *Plot) AddFit(s spectrum.Spectrum, res *spectrum.FitResult) error {
	if len(s) == 0 {
		return &spectrum.InputError{Field: "spectrum", Index: -1, Reason: "no data points"}
	}
	lo, hi := s[0].X, s[len(s)-1].X

	if err := pl.AddCurve("fit", res.Model, lo, hi, 400); err != nil {
		return err
	}
	for i, c := range res.Components {
		if err := pl.AddCurve(fmt.Sprintf("component %d", i+1), c.Eval, lo, hi, 400); err != nil {
			return err
		}
	}
	return nil
}

// SavePNG writes the figure to path.
func (pl *Plot) SavePNG(path string) error {
	if err := pl.p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
