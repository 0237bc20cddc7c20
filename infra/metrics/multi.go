package metrics

import coremetrics "github.com/kilianp07/epsim/core/metrics"

// MultiSink fans run records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(ev coremetrics.RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSummaries forwards summaries to sinks that support them.
func (m *MultiSink) RecordSummaries(evs []coremetrics.SummaryEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SummaryRecorder); ok {
			if err := rec.RecordSummaries(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSeries forwards series samples to sinks that support them.
func (m *MultiSink) RecordSeries(points []coremetrics.SeriesPoint) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SeriesRecorder); ok {
			if err := rec.RecordSeries(points); err != nil {
				return err
			}
		}
	}
	return nil
}
