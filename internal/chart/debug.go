package chart

import (
	"fmt"

	"gonum.org/v1/plot"

	"actcli/pkg/contracts/domain"
)

// DebugChannels returns the channels drawn in the upper (instrument health)
// and lower (gas) panels of a model's debug plot. VAPS has no split and
// draws every channel of the table in one panel.
func DebugChannels(t *domain.Table, model domain.Model) (internal, gas []string, err error) {
	spec, ok := model.Spec()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidModel, model)
	}
	if model == domain.ModelVAPS {
		return nil, append([]string(nil), t.Columns...), nil
	}

	present := func(names []string) []string {
		var out []string
		for _, n := range names {
			if t.HasColumn(n) {
				out = append(out, n)
			}
		}
		return out
	}
	internal = present(append(append([]string(nil), spec.InternalTemps...), spec.InternalFlows...))
	gas = present(spec.GasChannels)
	return internal, gas, nil
}

// DebugPlot draws a table's raw channels over time for a visual check of
// the instrument
func DebugPlot(t *domain.Table, model domain.Model, opts Options) (*Chart, error) {
	internal, gas, err := DebugChannels(t, model)
	if err != nil {
		return nil, err
	}
	if len(internal) == 0 && len(gas) == 0 {
		return nil, fmt.Errorf("no %s channels to plot", model)
	}

	xs := make([]float64, t.Len())
	for i, ts := range t.Index {
		xs[i] = float64(ts.Unix())
	}

	c := &Chart{width: opts.Width, height: opts.Height}
	groups := []struct {
		channels []string
		yLabel   string
	}{
		{channels: internal, yLabel: "Internal"},
		{channels: gas, yLabel: "Concentration"},
	}
	for _, g := range groups {
		if len(g.channels) == 0 {
			continue
		}
		title := ""
		if len(c.panels) == 0 {
			title = opts.Title
		}
		p := newPanel(title, "", g.yLabel)
		p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}

		for i, name := range g.channels {
			values, _ := t.Column(name)
			if err := addLine(p, domain.ChannelLabel(name), finiteXYs(xs, values), seriesColor(i)); err != nil {
				return nil, err
			}
		}
		c.panels = append(c.panels, p)
	}
	c.panels[len(c.panels)-1].X.Label.Text = "Time (UTC)"
	return c, nil
}
