package metrics

import "fmt"

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
	// SeriesSampleEvery streams every n-th simulation step to sinks that
	// accept series points. Zero disables series streaming.
	SeriesSampleEvery int `json:"series_sample_every"`
}

// SetDefaults fills unset fields with sensible defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":2112"
	}
}

// Validate checks the sink settings.
func (c Config) Validate() error {
	if c.InfluxEnabled && c.InfluxURL == "" {
		return fmt.Errorf("influx_url is required when influx_enabled is set")
	}
	if c.SeriesSampleEvery < 0 {
		return fmt.Errorf("series_sample_every must not be negative")
	}
	return nil
}
