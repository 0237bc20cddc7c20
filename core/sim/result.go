package sim

import "github.com/kilianp07/epsim/core/model"

// Result holds the output series of one sizing run. All series share the
// time grid; per-configuration series are indexed [configuration][step].
// Series are written exactly once during the run and never mutated after.
type Result struct {
	// Times is the grid of elapsed mission times in seconds, starting at
	// zero with the mission end excluded.
	Times []float64
	// Panels lists the evaluated configurations in input order.
	Panels []model.PanelConfig
	// SOC is the battery state of charge per configuration and step.
	SOC [][]float64
	// Solar is the generated power in watts per configuration and step.
	Solar [][]float64
	// Load is the platform draw in watts per configuration and step.
	Load [][]float64
}

// StepCount returns the number of grid points.
func (r *Result) StepCount() int { return len(r.Times) }

// IndexOf returns the series index for the given panel count, or -1 when the
// count was not part of the run.
func (r *Result) IndexOf(count int) int {
	for i, p := range r.Panels {
		if p.Count == count {
			return i
		}
	}
	return -1
}

func newResult(times []float64, panels []model.PanelConfig) *Result {
	n := len(times)
	res := &Result{
		Times:  times,
		Panels: panels,
		SOC:    make([][]float64, len(panels)),
		Solar:  make([][]float64, len(panels)),
		Load:   make([][]float64, len(panels)),
	}
	for i := range panels {
		res.SOC[i] = make([]float64, n)
		res.Solar[i] = make([]float64, n)
		res.Load[i] = make([]float64, n)
	}
	return res
}
