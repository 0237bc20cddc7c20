package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/epsim/core/report"
)

// Config defines the run history settings.
type Config struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SetDefaults fills unset fields with sensible defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "runs.jsonl"
	}
}

// Validate checks the run history settings.
func (c Config) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("path is required when the run log is enabled")
	}
	return nil
}

// Record captures one sizing run for the history log.
type Record struct {
	RunID       string           `json:"run_id"`
	Timestamp   time.Time        `json:"timestamp"`
	Orbits      int              `json:"orbits"`
	DtSeconds   float64          `json:"dt_seconds"`
	PanelCounts []int            `json:"panel_counts"`
	Summaries   []report.Summary `json:"summaries"`
}

// Query filters history records. Zero values match everything.
type Query struct {
	Start time.Time
	End   time.Time
	// PanelCount keeps only runs that evaluated this count.
	PanelCount int
	// OnlyViable keeps only runs where at least one configuration was viable.
	OnlyViable bool
}

// Store persists run records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
