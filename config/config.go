package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	coremetrics "github.com/kilianp07/epsim/core/metrics"
	"github.com/kilianp07/epsim/core/report"
	"github.com/kilianp07/epsim/core/sim"
	"github.com/kilianp07/epsim/infra/mqtt"
	"github.com/kilianp07/epsim/infra/plot"
	"github.com/kilianp07/epsim/infra/runlog"
	"github.com/kilianp07/epsim/pkg/export"
)

// Config gathers every setting of a sizing run.
type Config struct {
	Simulation sim.Config         `json:"simulation"`
	Report     report.Config      `json:"report"`
	Export     export.Config      `json:"export"`
	Plots      plot.Config        `json:"plots"`
	Metrics    coremetrics.Config `json:"metrics"`
	MQTT       mqtt.Config        `json:"mqtt"`
	RunLog     runlog.Config      `json:"runlog"`
}

// Default returns the reference study parameters with every optional output
// disabled. The console report is always produced.
func Default() Config {
	cfg := Config{Simulation: sim.DefaultConfig()}
	cfg.Report.SetDefaults()
	cfg.Export.SetDefaults()
	cfg.Plots.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.RunLog.SetDefaults()
	return cfg
}

// Load reads the configuration file at path, applies EPS_ environment
// overrides on top and validates the result. An empty path yields the
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides, EPS_SECTION__KEY=value.
	if err := k.Load(env.Provider("EPS_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "eps_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Plots.Validate(); err != nil {
		return fmt.Errorf("plots: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.RunLog.Validate(); err != nil {
		return fmt.Errorf("runlog: %w", err)
	}
	return nil
}
