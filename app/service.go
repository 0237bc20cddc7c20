package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/epsim/config"
	coremetrics "github.com/kilianp07/epsim/core/metrics"
	"github.com/kilianp07/epsim/core/report"
	"github.com/kilianp07/epsim/core/sim"
	"github.com/kilianp07/epsim/infra/logger"
	"github.com/kilianp07/epsim/infra/metrics"
	"github.com/kilianp07/epsim/infra/mqtt"
	"github.com/kilianp07/epsim/infra/plot"
	"github.com/kilianp07/epsim/infra/runlog"
	"github.com/kilianp07/epsim/pkg/export"
)

// Service orchestrates one sizing run: it drives the engine and fans the
// outcome out to the console report, result files, charts, metrics sinks,
// the MQTT publisher and the run log.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	engine    *sim.Engine
	sink      coremetrics.MetricsSink
	influx    *metrics.InfluxSink
	publisher *mqtt.Publisher
	store     runlog.Store

	// Out receives the console report. Defaults to os.Stdout.
	Out io.Writer
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	engine, err := sim.NewEngine(cfg.Simulation, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	svc := &Service{cfg: cfg, log: logg, engine: engine, sink: coremetrics.NopSink{}}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		if is, ok := sink.(*metrics.InfluxSink); ok {
			svc.influx = is
		}
		sinks = append(sinks, sink)
	}
	if len(sinks) == 1 {
		svc.sink = sinks[0]
	} else if len(sinks) > 1 {
		svc.sink = metrics.NewMultiSink(sinks...)
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}

	if cfg.RunLog.Enabled {
		store, err := runlog.NewJSONLStore(cfg.RunLog.Path)
		if err != nil {
			return nil, fmt.Errorf("run log: %w", err)
		}
		svc.store = store
	}

	return svc, nil
}

// Run executes the sizing run and writes every configured output. File
// outputs fail the run; telemetry failures are logged and skipped.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	runID := uuid.NewString()
	started := time.Now()
	res, err := s.engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	duration := time.Since(started)

	summaries := report.Summarize(res, s.cfg.Report.MinViableSOC)
	if err := report.Write(s.out(), summaries); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if s.cfg.Export.Enabled {
		if err := s.writeExports(res, summaries); err != nil {
			return err
		}
	}
	if s.cfg.Plots.Enabled {
		written, err := plot.WriteAll(s.cfg.Plots, s.cfg.Simulation, res, summaries)
		if err != nil {
			return err
		}
		for _, path := range written {
			s.log.Infof("wrote %s", path)
		}
	}

	now := time.Now()
	ev := coremetrics.RunEvent{
		RunID:     runID,
		Orbits:    s.cfg.Simulation.Time.NumOrbits,
		DtSeconds: s.cfg.Simulation.Time.DtSeconds,
		Configs:   len(res.Panels),
		Steps:     res.StepCount(),
		Duration:  duration,
		Time:      now,
	}
	sevs := summaryEvents(runID, summaries, now)

	if err := s.sink.RecordRun(ev); err != nil {
		s.log.Errorf("recording run metrics: %v", err)
	}
	if rec, ok := s.sink.(coremetrics.SummaryRecorder); ok {
		if err := rec.RecordSummaries(sevs); err != nil {
			s.log.Errorf("recording summary metrics: %v", err)
		}
	}
	if every := s.cfg.Metrics.SeriesSampleEvery; every > 0 {
		if rec, ok := s.sink.(coremetrics.SeriesRecorder); ok {
			if err := rec.RecordSeries(seriesPoints(runID, res, every, now)); err != nil {
				s.log.Errorf("recording series metrics: %v", err)
			}
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRun(ev); err != nil {
			s.log.Errorf("publishing run: %v", err)
		}
		if err := s.publisher.PublishSummaries(sevs); err != nil {
			s.log.Errorf("publishing summaries: %v", err)
		}
	}

	if s.store != nil {
		rec := runlog.Record{
			RunID:       runID,
			Timestamp:   now,
			Orbits:      s.cfg.Simulation.Time.NumOrbits,
			DtSeconds:   s.cfg.Simulation.Time.DtSeconds,
			PanelCounts: s.cfg.Simulation.PanelCounts,
			Summaries:   summaries,
		}
		if err := s.store.Append(ctx, rec); err != nil {
			s.log.Errorf("appending run log: %v", err)
		}
	}

	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.influx != nil {
		s.influx.Close()
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *Service) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func (s *Service) writeExports(res *sim.Result, summaries []report.Summary) error {
	dir := s.cfg.Export.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	type job struct {
		name  string
		write func(io.Writer) error
	}
	var jobs []job
	if s.cfg.Export.CSV {
		jobs = append(jobs,
			job{"series.csv", func(w io.Writer) error { return export.WriteSeriesCSV(w, res) }},
			job{"summary.csv", func(w io.Writer) error { return export.WriteSummariesCSV(w, summaries) }},
		)
	}
	if s.cfg.Export.JSON {
		jobs = append(jobs,
			job{"series.json", func(w io.Writer) error { return export.WriteSeriesJSON(w, res) }},
			job{"summary.json", func(w io.Writer) error { return export.WriteSummariesJSON(w, summaries) }},
		)
	}

	for _, j := range jobs {
		path := filepath.Join(dir, j.name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := j.write(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		s.log.Infof("wrote %s", path)
	}
	return nil
}

func summaryEvents(runID string, summaries []report.Summary, now time.Time) []coremetrics.SummaryEvent {
	evs := make([]coremetrics.SummaryEvent, len(summaries))
	for i, sum := range summaries {
		evs[i] = coremetrics.SummaryEvent{
			RunID:      runID,
			PanelCount: sum.PanelCount,
			MinSOC:     sum.MinSOC,
			AvgSOC:     sum.AvgSOC,
			FinalSOC:   sum.FinalSOC,
			MassKg:     sum.MassKg,
			Viable:     sum.Viable,
			Time:       now,
		}
	}
	return evs
}

func seriesPoints(runID string, res *sim.Result, every int, now time.Time) []coremetrics.SeriesPoint {
	var points []coremetrics.SeriesPoint
	for i, p := range res.Panels {
		for step := 0; step < res.StepCount(); step += every {
			points = append(points, coremetrics.SeriesPoint{
				RunID:          runID,
				PanelCount:     p.Count,
				ElapsedSeconds: res.Times[step],
				SOC:            res.SOC[i][step],
				SolarW:         res.Solar[i][step],
				LoadW:          res.Load[i][step],
				Time:           now,
			})
		}
	}
	return points
}
