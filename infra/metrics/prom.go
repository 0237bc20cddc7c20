package metrics

import (
	"strconv"

	coremetrics "github.com/kilianp07/epsim/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records sizing runs in Prometheus metrics.
type PromSink struct {
	runs     prometheus.Counter
	duration prometheus.Histogram
	minSOC   *prometheus.GaugeVec
	viable   *prometheus.GaugeVec
}

// NewPromSink registers sizing metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using
// cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "epsim_runs_total",
		Help: "Total number of completed sizing runs",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "epsim_run_duration_seconds",
		Help:    "Wall-clock duration of a sizing run",
		Buckets: prometheus.DefBuckets,
	})
	minSOC := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "epsim_min_soc",
		Help: "Minimum state of charge reached over the mission",
	}, []string{"panel_count"})
	viable := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "epsim_config_viable",
		Help: "Whether the configuration keeps the required reserve (1/0)",
	}, []string{"panel_count"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(minSOC); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			minSOC = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(viable); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			viable = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, duration: duration, minSOC: minSOC, viable: viable}, nil
}

// RecordRun counts the run and observes its duration.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.Inc()
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordSummaries sets the per-configuration gauges.
func (s *PromSink) RecordSummaries(evs []coremetrics.SummaryEvent) error {
	for _, ev := range evs {
		label := strconv.Itoa(ev.PanelCount)
		s.minSOC.WithLabelValues(label).Set(ev.MinSOC)
		v := 0.0
		if ev.Viable {
			v = 1
		}
		s.viable.WithLabelValues(label).Set(v)
	}
	return nil
}
