package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Options controls the page layout of a chart
type Options struct {
	Title  string
	XLabel string
	Width  vg.Length
	Height vg.Length
	// Shaded draws the interquartile band behind diurnal means.
	Shaded bool
}

// DefaultOptions returns a landscape letter page
func DefaultOptions() Options {
	return Options{
		XLabel: "Hour of Day (local)",
		Width:  11 * vg.Inch,
		Height: 8.5 * vg.Inch,
		Shaded: true,
	}
}

// Chart is a column of vertically stacked panels rendered to one image
type Chart struct {
	panels []*plot.Plot
	width  vg.Length
	height vg.Length
}

// Panels returns the number of stacked panels
func (c *Chart) Panels() int {
	return len(c.panels)
}

// WriteTo renders the chart as PNG
func (c *Chart) WriteTo(w io.Writer) (int64, error) {
	if len(c.panels) == 0 {
		return 0, fmt.Errorf("chart has no panels")
	}

	img := vgimg.New(c.width, c.height)
	dc := draw.New(img)

	grid := make([][]*plot.Plot, len(c.panels))
	for i, p := range c.panels {
		grid[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(c.panels),
		Cols:      1,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
		PadY:      vg.Points(15),
	}

	canvases := plot.Align(grid, tiles, dc)
	for i, p := range c.panels {
		p.Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	return png.WriteTo(w)
}

// Save renders the chart to a PNG file
func (c *Chart) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newPanel(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.BackgroundColor = colornames.White
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.Padding = vg.Points(5)
	p.Add(plotter.NewGrid())
	return p
}

// finiteXYs drops points with a missing coordinate
func finiteXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

// addLine adds a legend-labelled series. Empty series are skipped.
func addLine(p *plot.Plot, label string, pts plotter.XYs, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("line %s: %w", label, err)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

func seriesColor(i int) color.Color {
	return plotutil.Color(i)
}
