// Package e2e exercises the telemetry sinks against real backing services
// started with testcontainers.
package e2e

import (
	"context"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxReader wraps the official client with the query plumbing the suite
// needs to verify written run records.
type InfluxReader struct {
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxReader creates a reader for the given endpoint. The server must
// already be onboarded; test containers handle that through init environment
// variables.
func NewInfluxReader(url, token, org string) *InfluxReader {
	client := influxdb2.NewClient(url, token)
	return &InfluxReader{client: client, query: client.QueryAPI(org)}
}

// CountRows runs a Flux query and returns the number of rows in the result.
func (r *InfluxReader) CountRows(ctx context.Context, flux string) (int, error) {
	res, err := r.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer func() { _ = res.Close() }()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// Close releases the underlying client resources.
func (r *InfluxReader) Close() {
	r.client.Close()
}
