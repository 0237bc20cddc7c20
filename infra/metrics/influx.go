package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/epsim/core/metrics"
	"github.com/kilianp07/epsim/infra/logger"
)

// InfluxSink writes run records to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails, so a missing database never blocks a
// sizing run.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run record as a single point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("sizing_run").
		AddTag("run_id", ev.RunID).
		AddTag("component", "engine").
		AddField("orbits", ev.Orbits).
		AddField("dt_seconds", ev.DtSeconds).
		AddField("configs", ev.Configs).
		AddField("steps", ev.Steps).
		AddField("duration_ms", round3(float64(ev.Duration.Milliseconds()))).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSummaries writes one point per configuration outcome.
func (s *InfluxSink) RecordSummaries(evs []coremetrics.SummaryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ev := range evs {
		p := write.NewPointWithMeasurement("panel_summary").
			AddTag("run_id", ev.RunID).
			AddTag("panel_count", strconv.Itoa(ev.PanelCount)).
			AddTag("viable", strconv.FormatBool(ev.Viable)).
			AddField("min_soc", round3(ev.MinSOC)).
			AddField("avg_soc", round3(ev.AvgSOC)).
			AddField("final_soc", round3(ev.FinalSOC)).
			AddField("mass_kg", round3(ev.MassKg)).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordSeries writes downsampled series samples.
func (s *InfluxSink) RecordSeries(points []coremetrics.SeriesPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, pt := range points {
		p := write.NewPointWithMeasurement("sim_series").
			AddTag("run_id", pt.RunID).
			AddTag("panel_count", strconv.Itoa(pt.PanelCount)).
			AddField("elapsed_s", pt.ElapsedSeconds).
			AddField("soc", round3(pt.SOC)).
			AddField("solar_w", round3(pt.SolarW)).
			AddField("load_w", round3(pt.LoadW)).
			SetTime(pt.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
