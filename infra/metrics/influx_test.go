package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/epsim/core/metrics"
)

func TestInfluxSink_RecordRun(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.RunEvent{
		RunID:     "run-1",
		Orbits:    100,
		DtSeconds: 100,
		Configs:   6,
		Steps:     5700,
		Duration:  1500 * time.Millisecond,
		Time:      now,
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("sizing_run").
		AddTag("run_id", "run-1").
		AddTag("component", "engine").
		AddField("orbits", 100).
		AddField("dt_seconds", 100.0).
		AddField("configs", 6).
		AddField("steps", 5700).
		AddField("duration_ms", 1500.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestInfluxSink_RecordSummaries(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.SummaryEvent{
		RunID:      "run-1",
		PanelCount: 4,
		MinSOC:     0.31234,
		AvgSOC:     0.55,
		FinalSOC:   0.62,
		MassKg:     0.2,
		Viable:     true,
		Time:       now,
	}
	if err := sink.RecordSummaries([]coremetrics.SummaryEvent{ev}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("panel_summary").
		AddTag("run_id", "run-1").
		AddTag("panel_count", "4").
		AddTag("viable", "true").
		AddField("min_soc", 0.312).
		AddField("avg_soc", 0.55).
		AddField("final_soc", 0.62).
		AddField("mass_kg", 0.2).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	cfg := coremetrics.Config{
		InfluxURL:    srv.URL + "/api/v2/write",
		InfluxToken:  "tok",
		InfluxOrg:    "org",
		InfluxBucket: "bucket",
	}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
