package app

import (
	"io"

	"gonum.org/v1/plot/vg"

	"actcli/internal/chart"
)

// ChartOptions returns the chart layout from the diurnal configuration
func (a *Application) ChartOptions() chart.Options {
	cfg := a.Config.Diurnal
	opts := chart.DefaultOptions()
	opts.Title = cfg.Title
	if cfg.XLabel != "" {
		opts.XLabel = cfg.XLabel
	}
	opts.Width = vg.Length(cfg.WidthInches) * vg.Inch
	opts.Height = vg.Length(cfg.HeightInches) * vg.Inch
	opts.Shaded = cfg.Shaded
	return opts
}

// SaveChart renders c as PNG to path through the file manager
func (a *Application) SaveChart(path string, c *chart.Chart) error {
	return a.Files.WriteAtomic(path, func(w io.Writer) error {
		_, err := c.WriteTo(w)
		return err
	})
}
