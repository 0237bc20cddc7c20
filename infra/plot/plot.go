// Package plot renders the run charts as PNG files: the SOC and power
// timelines, the sizing trade-off summary and a single-orbit close-up with
// eclipse shading.
package plot

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/kilianp07/epsim/core/report"
	"github.com/kilianp07/epsim/core/sim"
)

// Config defines which charts a run renders and where.
type Config struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`
	// DetailPanels selects the configuration shown in the single-orbit
	// close-up. Runs that do not evaluate this count fall back to the last
	// configuration.
	DetailPanels int `json:"detail_panels"`
}

// SetDefaults fills unset fields with sensible defaults.
func (c *Config) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if c.DetailPanels == 0 {
		c.DetailPanels = 4
	}
}

// Validate checks the chart settings.
func (c Config) Validate() error {
	if c.DetailPanels < 0 {
		return fmt.Errorf("detail_panels must not be negative")
	}
	return nil
}

// WriteAll renders every chart into cfg.Dir and returns the written paths.
func WriteAll(cfg Config, simCfg sim.Config, res *sim.Result, summaries []report.Summary) ([]string, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating chart directory: %w", err)
	}

	detail := res.IndexOf(cfg.DetailPanels)
	if detail < 0 {
		detail = len(res.Panels) - 1
	}

	charts := []struct {
		name   string
		render func(path string) error
	}{
		{"soc.png", func(path string) error { return SOCTimeline(path, res) }},
		{"power.png", func(path string) error { return PowerTimeline(path, res, detail) }},
		{"summary.png", func(path string) error {
			return SummaryCharts(path, summaries, simCfg.Loads.SafeModeSOC, simCfg.Battery.SOCMin)
		}},
		{"orbit_detail.png", func(path string) error { return OrbitDetail(path, res, simCfg, detail) }},
	}

	written := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(cfg.Dir, c.name)
		if err := c.render(path); err != nil {
			return written, fmt.Errorf("rendering %s: %w", c.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// SOCTimeline draws the battery state of charge of every configuration over
// the whole mission.
func SOCTimeline(path string, res *sim.Result) error {
	p := plot.New()
	p.Title.Text = "Battery SOC for Different Panel Counts"
	p.X.Label.Text = "Time [hours]"
	p.Y.Label.Text = "SOC"
	p.Add(plotter.NewGrid())

	for i, pc := range res.Panels {
		line, err := plotter.NewLine(hoursSeries(res.Times, res.SOC[i]))
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(pc.String(), line)
	}
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// PowerTimeline draws the generated power of every configuration against the
// platform draw of the detail configuration.
func PowerTimeline(path string, res *sim.Result, loadIdx int) error {
	p := plot.New()
	p.Title.Text = "Solar Power vs Load"
	p.X.Label.Text = "Time [hours]"
	p.Y.Label.Text = "Power [W]"
	p.Add(plotter.NewGrid())

	for i, pc := range res.Panels {
		line, err := plotter.NewLine(hoursSeries(res.Times, res.Solar[i]))
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(pc.String(), line)
	}

	load, err := plotter.NewLine(hoursSeries(res.Times, res.Load[loadIdx]))
	if err != nil {
		return err
	}
	load.Color = color.Black
	load.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(load)
	p.Legend.Add("Load", load)

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// SummaryCharts draws the sizing trade-off figure: minimum and average SOC
// against the panel count, and minimum SOC against array mass.
func SummaryCharts(path string, summaries []report.Summary, safeModeSOC, criticalSOC float64) error {
	if len(summaries) == 0 {
		return fmt.Errorf("no summaries to chart")
	}

	minPts := make(plotter.XYs, len(summaries))
	avgPts := make(plotter.XYs, len(summaries))
	massPts := make(plotter.XYs, len(summaries))
	labels := make([]string, len(summaries))
	for i, s := range summaries {
		minPts[i] = plotter.XY{X: float64(s.PanelCount), Y: s.MinSOC}
		avgPts[i] = plotter.XY{X: float64(s.PanelCount), Y: s.AvgSOC}
		massPts[i] = plotter.XY{X: s.MassKg, Y: s.MinSOC}
		labels[i] = fmt.Sprintf("%dp", s.PanelCount)
	}

	left := plot.New()
	left.Title.Text = "SOC Performance vs Panel Configuration"
	left.X.Label.Text = "Number of Solar Panels"
	left.Y.Label.Text = "State of Charge"
	left.Add(plotter.NewGrid())
	if err := plotutil.AddLinePoints(left, "Minimum SOC", minPts, "Average SOC", avgPts); err != nil {
		return err
	}
	xMin, xMax := minPts[0].X, minPts[len(minPts)-1].X
	if err := addThreshold(left, safeModeSOC, xMin, xMax, "Safe Mode Threshold", color.NRGBA{R: 0xc8, A: 0xff}); err != nil {
		return err
	}
	if err := addThreshold(left, criticalSOC, xMin, xMax, "Critical Minimum", color.Black); err != nil {
		return err
	}

	right := plot.New()
	right.Title.Text = "Reliability vs Mass Trade-off"
	right.X.Label.Text = "Total Solar Panel Mass (kg)"
	right.Y.Label.Text = "Minimum SOC"
	right.Add(plotter.NewGrid())
	if err := plotutil.AddLinePoints(right, massPts); err != nil {
		return err
	}
	names, err := plotter.NewLabels(plotter.XYLabels{XYs: massPts, Labels: labels})
	if err != nil {
		return err
	}
	right.Add(names)

	return writeTiled(path, [][]*plot.Plot{{left, right}}, 12*vg.Inch, 5*vg.Inch)
}

// OrbitDetail draws the final orbit of the detail configuration: generated
// power against draw, state of charge and the net power balance, with the
// shadow interval shaded.
func OrbitDetail(path string, res *sim.Result, cfg sim.Config, idx int) error {
	stepsPerOrbit := int(cfg.Time.OrbitPeriodSeconds / cfg.Time.DtSeconds)
	start := res.StepCount() - stepsPerOrbit
	if start < 0 {
		start = 0
	}

	orbit := sim.NewOrbitModel(cfg.Time)
	n := res.StepCount() - start
	thetas := make([]float64, n)
	solar := make([]float64, n)
	load := make([]float64, n)
	soc := make([]float64, n)
	net := make([]float64, n)
	for s := 0; s < n; s++ {
		thetas[s] = orbit.At(res.Times[start+s]).ThetaDeg
		solar[s] = res.Solar[idx][start+s]
		load[s] = res.Load[idx][start+s]
		soc[s] = 100 * res.SOC[idx][start+s]
		net[s] = solar[s] - load[s]
	}
	entryDeg, exitDeg := orbit.EclipseBoundsDeg()

	powerTop := 1.05 * (math.Max(floats.Max(solar), floats.Max(load)) + 1)

	power := plot.New()
	power.Title.Text = fmt.Sprintf("Single Orbit Analysis (%s)", res.Panels[idx])
	power.Y.Label.Text = "Power (W)"
	power.Add(plotter.NewGrid())
	if err := addEclipseBand(power, entryDeg, exitDeg, 0, powerTop); err != nil {
		return err
	}
	solarLine, err := plotter.NewLine(series(thetas, solar))
	if err != nil {
		return err
	}
	solarLine.Color = color.NRGBA{R: 0xff, G: 0xa5, A: 0xff}
	power.Add(solarLine)
	power.Legend.Add("Solar Power", solarLine)
	loadLine, err := plotter.NewLine(series(thetas, load))
	if err != nil {
		return err
	}
	loadLine.Color = color.NRGBA{R: 0xc8, A: 0xff}
	loadLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	power.Add(loadLine)
	power.Legend.Add("Load", loadLine)
	setRange(power, 0, 360, 0, powerTop)

	charge := plot.New()
	charge.Y.Label.Text = "SOC (%)"
	charge.Add(plotter.NewGrid())
	if err := addEclipseBand(charge, entryDeg, exitDeg, 0, 100); err != nil {
		return err
	}
	socLine, err := plotter.NewLine(series(thetas, soc))
	if err != nil {
		return err
	}
	socLine.Color = color.NRGBA{B: 0xc8, A: 0xff}
	charge.Add(socLine)
	if err := addThreshold(charge, 100*cfg.Loads.SafeModeSOC, 0, 360, "Safe Mode", color.NRGBA{R: 0xc8, A: 0xff}); err != nil {
		return err
	}
	setRange(charge, 0, 360, 0, 100)

	netLo := floats.Min(net) - 2
	netHi := floats.Max(net) + 2
	balance := plot.New()
	balance.X.Label.Text = "Orbital Angle θ (degrees)"
	balance.Y.Label.Text = "Net Power (W)"
	balance.Add(plotter.NewGrid())
	if err := addEclipseBand(balance, entryDeg, exitDeg, netLo, netHi); err != nil {
		return err
	}
	netLine, err := plotter.NewLine(series(thetas, net))
	if err != nil {
		return err
	}
	netLine.Color = color.NRGBA{G: 0x96, A: 0xff}
	balance.Add(netLine)
	balance.Legend.Add("Net Power", netLine)
	if err := addThreshold(balance, 0, 0, 360, "", color.Black); err != nil {
		return err
	}
	setRange(balance, 0, 360, netLo, netHi)

	return writeTiled(path, [][]*plot.Plot{{power}, {charge}, {balance}}, 10*vg.Inch, 8*vg.Inch)
}

func hoursSeries(times, vals []float64) plotter.XYs {
	xys := make(plotter.XYs, len(times))
	for i := range times {
		xys[i] = plotter.XY{X: times[i] / 3600, Y: vals[i]}
	}
	return xys
}

func series(xs, ys []float64) plotter.XYs {
	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return xys
}

func addThreshold(p *plot.Plot, y, xMin, xMax float64, name string, c color.Color) error {
	line, err := plotter.NewLine(plotter.XYs{{X: xMin, Y: y}, {X: xMax, Y: y}})
	if err != nil {
		return err
	}
	line.Color = c
	line.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(line)
	if name != "" {
		p.Legend.Add(name, line)
	}
	return nil
}

func addEclipseBand(p *plot.Plot, entryDeg, exitDeg, yMin, yMax float64) error {
	band, err := plotter.NewPolygon(plotter.XYs{
		{X: entryDeg, Y: yMin},
		{X: exitDeg, Y: yMin},
		{X: exitDeg, Y: yMax},
		{X: entryDeg, Y: yMax},
	})
	if err != nil {
		return err
	}
	band.Color = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x33}
	band.LineStyle.Color = color.NRGBA{}
	p.Add(band)
	p.Legend.Add("Eclipse", band)
	return nil
}

func setRange(p *plot.Plot, xMin, xMax, yMin, yMax float64) {
	p.X.Min, p.X.Max = xMin, xMax
	p.Y.Min, p.Y.Max = yMin, yMax
}

func writeTiled(path string, plots [][]*plot.Plot, w, h vg.Length) error {
	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: len(plots[0]),
		PadX: vg.Points(8),
		PadY: vg.Points(8),
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
