package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"actcli/pkg/contracts/domain"
)

// Panel selects one channel of a diurnal chart
type Panel struct {
	Column string
	Label  string
}

var defaultDiurnalColumns = []string{"nox", "so2", "o3"}

// DefaultPanels returns the NOx, SO2 and O3 panels present in the profile,
// or one panel per profile column when none of them are.
func DefaultPanels(p *domain.DiurnalProfile) []Panel {
	has := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		has[c] = true
	}

	var panels []Panel
	for _, c := range defaultDiurnalColumns {
		if has[c] {
			panels = append(panels, Panel{Column: c, Label: domain.ChannelLabel(c)})
		}
	}
	if len(panels) > 0 {
		return panels
	}
	for _, c := range p.Columns {
		panels = append(panels, Panel{Column: c, Label: domain.ChannelLabel(c)})
	}
	return panels
}

const secondsPerDay = 24 * 60 * 60

// DiurnalPanels draws the mean of each panel's channel against time of day,
// optionally over its 25th to 75th percentile band. The y axis runs from 0
// to 5% above the largest plotted value.
func DiurnalPanels(profile *domain.DiurnalProfile, panels []Panel, opts Options) (*Chart, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("no panels to draw")
	}

	c := &Chart{width: opts.Width, height: opts.Height}
	for i, panel := range panels {
		title := ""
		if i == 0 {
			title = opts.Title
		}
		xLabel := ""
		if i == len(panels)-1 {
			xLabel = opts.XLabel
		}

		label := panel.Label
		if label == "" {
			label = domain.ChannelLabel(panel.Column)
		}
		p := newPanel(title, xLabel, label)
		p.X.Tick.Marker = plot.TimeTicks{Format: "15:04"}
		p.X.Min = 0
		p.X.Max = secondsPerDay

		if err := drawDiurnal(p, profile, panel.Column, label, i, opts.Shaded); err != nil {
			return nil, err
		}
		c.panels = append(c.panels, p)
	}
	return c, nil
}

func drawDiurnal(p *plot.Plot, profile *domain.DiurnalProfile, column, label string, i int, shaded bool) error {
	keys, means := profile.Series(column, domain.StatMean)
	if len(keys) == 0 {
		return fmt.Errorf("%w: %q", domain.ErrUnknownColumn, column)
	}
	_, q25 := profile.Series(column, domain.StatQ25)
	_, q75 := profile.Series(column, domain.StatQ75)

	xs := make([]float64, len(keys))
	for k, key := range keys {
		xs[k] = key.Offset().Seconds()
	}

	top := math.Inf(-1)
	for k := range xs {
		if !math.IsNaN(means[k]) {
			top = math.Max(top, means[k])
		}
		if shaded && !math.IsNaN(q75[k]) {
			top = math.Max(top, q75[k])
		}
	}

	lineColor := seriesColor(i)
	if shaded {
		if err := addBand(p, xs, q25, q75, lineColor); err != nil {
			return fmt.Errorf("band %s: %w", column, err)
		}
	}
	if err := addLine(p, label, finiteXYs(xs, means), lineColor); err != nil {
		return err
	}

	p.Y.Min = 0
	if top > 0 && !math.IsInf(top, 0) {
		p.Y.Max = 1.05 * top
	}
	return nil
}

// addBand fills the area between lower and upper where both are present
func addBand(p *plot.Plot, xs, lower, upper []float64, c color.Color) error {
	var top, bottom plotter.XYs
	for k := range xs {
		if math.IsNaN(lower[k]) || math.IsNaN(upper[k]) {
			continue
		}
		top = append(top, plotter.XY{X: xs[k], Y: upper[k]})
		bottom = append(bottom, plotter.XY{X: xs[k], Y: lower[k]})
	}
	if len(top) < 2 {
		return nil
	}

	ring := make(plotter.XYs, 0, 2*len(top))
	ring = append(ring, top...)
	for k := len(bottom) - 1; k >= 0; k-- {
		ring = append(ring, bottom[k])
	}

	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return err
	}
	r, g, b, _ := c.RGBA()
	poly.Color = color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 64}
	poly.LineStyle.Width = 0
	p.Add(poly)
	return nil
}
