package sim

import (
	"context"
	"time"

	"github.com/kilianp07/epsim/core/logger"
	"github.com/kilianp07/epsim/core/model"
)

// Engine drives the energy-balance simulation across the time grid and the
// panel-configuration axis. The time axis is strictly sequential (each step
// reads the previous step's state); configurations are independent of each
// other and may be simulated in parallel.
type Engine struct {
	cfg     Config
	panels  []model.PanelConfig
	orbit   OrbitModel
	solar   SolarModel
	load    LoadModel
	batt    BatteryModel
	log     logger.Logger
	workers int
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithWorkers overrides the configured worker count for the configuration
// axis. Values of one or less select sequential execution.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// NewEngine validates the configuration and builds an engine. The
// configuration is captured by value and never mutated.
func NewEngine(cfg Config, log logger.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		panels:  cfg.Panels(),
		orbit:   NewOrbitModel(cfg.Time),
		solar:   NewSolarModel(cfg.Solar),
		load:    NewLoadModel(cfg),
		batt:    NewBatteryModel(cfg),
		log:     log,
		workers: cfg.Workers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Run simulates every configuration over the full time grid and returns the
// assembled series. The output is deterministic and independent of the
// worker count: each configuration writes to a disjoint region of the
// result. Cancelling the context aborts the run between configurations.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	steps := e.cfg.Time.StepCount()
	dt := e.cfg.Time.DtSeconds

	// Geometry and effective capacity depend on time only, so they are
	// computed once per step and shared read-only by all configurations.
	times := make([]float64, steps)
	geoms := make([]Geometry, steps)
	caps := make([]float64, steps)
	for i := range times {
		t := float64(i) * dt
		times[i] = t
		geoms[i] = e.orbit.At(t)
		caps[i] = e.batt.EffectiveCapacityWh(MissionYears(t))
	}

	res := newResult(times, e.panels)
	start := time.Now()
	e.log.Infof("simulating %d steps for %d panel configurations (workers=%d)",
		steps, len(e.panels), e.workers)

	if e.workers > 1 && len(e.panels) > 1 {
		if err := e.runParallel(ctx, res, geoms, caps); err != nil {
			return nil, err
		}
	} else {
		for i := range e.panels {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.simulate(i, res, geoms, caps)
		}
	}

	e.log.Debugw("simulation complete", map[string]any{
		"steps":    steps,
		"configs":  len(e.panels),
		"duration": time.Since(start).String(),
	})
	return res, nil
}

// runParallel fans the configuration indices out to a fixed worker pool.
func (e *Engine) runParallel(ctx context.Context, res *Result, geoms []Geometry, caps []float64) error {
	workers := e.workers
	if workers > len(e.panels) {
		workers = len(e.panels)
	}

	jobs := make(chan int)
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := range jobs {
				e.simulate(i, res, geoms, caps)
			}
		}()
	}

feed:
	for i := range e.panels {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	for w := 0; w < workers; w++ {
		<-done
	}
	return ctx.Err()
}

// simulate folds one configuration over the time grid, threading the
// previous step's SOC forward. Step zero carries the initial SOC and no
// generation or load.
func (e *Engine) simulate(idx int, res *Result, geoms []Geometry, caps []float64) {
	panel := e.panels[idx]
	soc := res.SOC[idx]
	solar := res.Solar[idx]
	load := res.Load[idx]

	soc[0] = e.cfg.Battery.SOCInitial
	for t := 1; t < len(geoms); t++ {
		g := geoms[t]
		capacity := caps[t]
		solarW := e.solar.Power(panel, g)
		loadW, _ := e.load.Power(soc[t-1], g, capacity)
		soc[t] = e.batt.Step(soc[t-1], solarW, loadW, capacity)
		solar[t] = solarW
		load[t] = loadW
	}
}
