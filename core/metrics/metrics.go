package metrics

import "time"

// RunEvent describes one completed sizing run.
type RunEvent struct {
	RunID     string
	Orbits    int
	DtSeconds float64
	Configs   int
	Steps     int
	Duration  time.Duration
	Time      time.Time
}

// MetricsSink records sizing runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// SummaryEvent is the per-configuration outcome of a run.
type SummaryEvent struct {
	RunID      string
	PanelCount int
	MinSOC     float64
	AvgSOC     float64
	FinalSOC   float64
	MassKg     float64
	Viable     bool
	Time       time.Time
}

// SummaryRecorder is implemented by sinks able to record per-configuration
// outcomes.
type SummaryRecorder interface {
	RecordSummaries(evs []SummaryEvent) error
}

// SeriesPoint is one (possibly downsampled) sample of a configuration's
// simulated series.
type SeriesPoint struct {
	RunID          string
	PanelCount     int
	ElapsedSeconds float64
	SOC            float64
	SolarW         float64
	LoadW          float64
	Time           time.Time
}

// SeriesRecorder is implemented by sinks able to ingest series samples.
type SeriesRecorder interface {
	RecordSeries(points []SeriesPoint) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error { return nil }

// Ensure NopSink implements SummaryRecorder.
func (NopSink) RecordSummaries([]SummaryEvent) error { return nil }

// Ensure NopSink implements SeriesRecorder.
func (NopSink) RecordSeries([]SeriesPoint) error { return nil }
