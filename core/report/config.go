package report

import "fmt"

// Config holds the reporting thresholds.
type Config struct {
	// MinViableSOC is the state-of-charge floor a configuration must stay
	// strictly above over the whole mission to be declared viable.
	MinViableSOC float64 `json:"min_viable_soc"`
}

// SetDefaults fills unset fields with sensible defaults.
func (c *Config) SetDefaults() {
	if c.MinViableSOC == 0 {
		c.MinViableSOC = 0.25
	}
}

// Validate checks the reporting settings.
func (c Config) Validate() error {
	if c.MinViableSOC < 0 || c.MinViableSOC >= 1 {
		return fmt.Errorf("min_viable_soc must be in [0, 1), got %v", c.MinViableSOC)
	}
	return nil
}
