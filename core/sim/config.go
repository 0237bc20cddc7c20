package sim

import (
	"fmt"
	"math"

	"github.com/kilianp07/epsim/core/model"
)

// TimeConfig defines the simulation time grid.
type TimeConfig struct {
	// DtSeconds is the integration step size.
	DtSeconds float64 `json:"dt_seconds"`
	// OrbitPeriodSeconds is the duration of one orbit.
	OrbitPeriodSeconds float64 `json:"orbit_period_seconds"`
	// NumOrbits is the mission length expressed in orbits.
	NumOrbits int `json:"num_orbits"`
}

// MissionSeconds returns the total simulated duration.
func (c TimeConfig) MissionSeconds() float64 {
	return float64(c.NumOrbits) * c.OrbitPeriodSeconds
}

// StepCount returns the number of grid points. The grid starts at zero and
// excludes the mission end time.
func (c TimeConfig) StepCount() int {
	return int(math.Ceil(c.MissionSeconds() / c.DtSeconds))
}

// Validate checks the time grid parameters.
func (c TimeConfig) Validate() error {
	if c.DtSeconds <= 0 {
		return fmt.Errorf("dt_seconds must be positive")
	}
	if c.OrbitPeriodSeconds <= 0 {
		return fmt.Errorf("orbit_period_seconds must be positive")
	}
	if c.DtSeconds > c.OrbitPeriodSeconds {
		return fmt.Errorf("dt_seconds must not exceed the orbit period")
	}
	if c.NumOrbits <= 0 {
		return fmt.Errorf("num_orbits must be positive")
	}
	return nil
}

// SolarConfig defines the illumination and conversion chain parameters.
type SolarConfig struct {
	SolarConstantWm2 float64 `json:"solar_constant_wm2"`
	PanelAreaM2      float64 `json:"panel_area_m2"`
	PackingEff       float64 `json:"packing_efficiency"`
	CellEff          float64 `json:"cell_efficiency"`
	MPPTEff          float64 `json:"mppt_efficiency"`
	WiringEff        float64 `json:"wiring_efficiency"`
	PanelMassKg      float64 `json:"panel_mass_kg"`
}

// ConversionEff returns the combined efficiency of the electrical chain.
func (c SolarConfig) ConversionEff() float64 {
	return c.CellEff * c.MPPTEff * c.WiringEff
}

// Validate checks the solar chain parameters.
func (c SolarConfig) Validate() error {
	if c.SolarConstantWm2 <= 0 {
		return fmt.Errorf("solar_constant_wm2 must be positive")
	}
	if c.PanelAreaM2 <= 0 {
		return fmt.Errorf("panel_area_m2 must be positive")
	}
	for _, e := range []struct {
		name string
		val  float64
	}{
		{"packing_efficiency", c.PackingEff},
		{"cell_efficiency", c.CellEff},
		{"mppt_efficiency", c.MPPTEff},
		{"wiring_efficiency", c.WiringEff},
	} {
		if e.val <= 0 || e.val > 1 {
			return fmt.Errorf("%s must be in (0,1]", e.name)
		}
	}
	if c.PanelMassKg < 0 {
		return fmt.Errorf("panel_mass_kg must not be negative")
	}
	return nil
}

// LoadsConfig defines the platform power draws and the safe-mode policy.
type LoadsConfig struct {
	OBCW     float64 `json:"obc_w"`
	ADCSW    float64 `json:"adcs_w"`
	CommsW   float64 `json:"comms_w"`
	PayloadW float64 `json:"payload_w"`
	// SafeModeSOC is the state of charge below which the platform sheds all
	// loads except the on-board computer. The threshold is strict: a SOC
	// exactly at the value keeps the nominal load.
	SafeModeSOC float64 `json:"safe_mode_soc"`
}

// NominalW returns the combined draw of all subsystems outside safe mode.
func (c LoadsConfig) NominalW() float64 {
	return c.OBCW + c.ADCSW + c.CommsW + c.PayloadW
}

// Validate checks the load parameters.
func (c LoadsConfig) Validate() error {
	for _, e := range []struct {
		name string
		val  float64
	}{
		{"obc_w", c.OBCW},
		{"adcs_w", c.ADCSW},
		{"comms_w", c.CommsW},
		{"payload_w", c.PayloadW},
	} {
		if e.val < 0 {
			return fmt.Errorf("%s must not be negative", e.name)
		}
	}
	if c.SafeModeSOC < 0 || c.SafeModeSOC > 1 {
		return fmt.Errorf("safe_mode_soc must be in [0,1]")
	}
	return nil
}

// TransmissionConfig defines the downlink session parameters.
type TransmissionConfig struct {
	PowerW          float64 `json:"power_w"`
	DurationSeconds float64 `json:"duration_seconds"`
	// ReserveFraction is the fraction of effective capacity that must remain
	// in the battery after a full transmission on top of the nominal load.
	// Setting it to 1 disables transmissions entirely.
	ReserveFraction float64 `json:"reserve_fraction"`
}

// WindowWidthDeg returns the orbital-angle width of the transmission window
// for the given orbit period.
func (c TransmissionConfig) WindowWidthDeg(orbitPeriodSeconds float64) float64 {
	return 360 * c.DurationSeconds / orbitPeriodSeconds
}

// Validate checks the transmission parameters against the orbit period.
func (c TransmissionConfig) Validate(orbitPeriodSeconds float64) error {
	if c.PowerW < 0 {
		return fmt.Errorf("power_w must not be negative")
	}
	if c.DurationSeconds < 0 {
		return fmt.Errorf("duration_seconds must not be negative")
	}
	if c.DurationSeconds > orbitPeriodSeconds {
		return fmt.Errorf("duration_seconds must not exceed the orbit period")
	}
	if c.ReserveFraction < 0 || c.ReserveFraction > 1 {
		return fmt.Errorf("reserve_fraction must be in [0,1]")
	}
	return nil
}

// BatteryConfig defines the storage parameters.
type BatteryConfig struct {
	CapacityWh float64 `json:"capacity_wh"`
	SOCMin     float64 `json:"soc_min"`
	SOCMax     float64 `json:"soc_max"`
	SOCInitial float64 `json:"soc_initial"`
	// ChargeEff derates net-positive energy steps; discharge is not derated.
	ChargeEff       float64 `json:"charge_efficiency"`
	FadeRatePerYear float64 `json:"fade_rate_per_year"`
	// SelfDischargePerMonth is the passive SOC loss over a 30-day month.
	SelfDischargePerMonth float64 `json:"self_discharge_per_month"`
	// CapacityFloorFraction bounds capacity fade from below as a fraction of
	// nominal capacity.
	CapacityFloorFraction float64 `json:"capacity_floor_fraction"`
}

// SelfDischargePerDay returns the daily passive loss rate.
func (c BatteryConfig) SelfDischargePerDay() float64 {
	return c.SelfDischargePerMonth / 30
}

// Validate checks the battery parameters.
func (c BatteryConfig) Validate() error {
	if c.CapacityWh <= 0 {
		return fmt.Errorf("capacity_wh must be positive")
	}
	if c.SOCMin < 0 || c.SOCMin >= c.SOCMax {
		return fmt.Errorf("soc bounds must satisfy 0 <= soc_min < soc_max")
	}
	if c.SOCMax > 1 {
		return fmt.Errorf("soc_max must not exceed 1")
	}
	if c.SOCInitial < c.SOCMin || c.SOCInitial > c.SOCMax {
		return fmt.Errorf("soc_initial must lie within [soc_min, soc_max]")
	}
	if c.ChargeEff <= 0 || c.ChargeEff > 1 {
		return fmt.Errorf("charge_efficiency must be in (0,1]")
	}
	if c.FadeRatePerYear < 0 {
		return fmt.Errorf("fade_rate_per_year must not be negative")
	}
	if c.SelfDischargePerMonth < 0 {
		return fmt.Errorf("self_discharge_per_month must not be negative")
	}
	if c.CapacityFloorFraction <= 0 || c.CapacityFloorFraction > 1 {
		return fmt.Errorf("capacity_floor_fraction must be in (0,1]")
	}
	return nil
}

// Config gathers every parameter of a sizing run. It is created once,
// validated before the run and never mutated afterwards; all models receive
// it by value.
type Config struct {
	Time         TimeConfig         `json:"time"`
	Solar        SolarConfig        `json:"solar"`
	Loads        LoadsConfig        `json:"loads"`
	Transmission TransmissionConfig `json:"transmission"`
	Battery      BatteryConfig      `json:"battery"`
	// PanelCounts lists the candidate array sizes, evaluated independently.
	PanelCounts []int `json:"panel_counts"`
	// Workers bounds the number of goroutines simulating configurations in
	// parallel. Zero or one means sequential execution; the output is
	// identical either way.
	Workers int `json:"workers"`
}

// DefaultConfig returns the reference study parameters: a 95-minute orbit
// simulated for 100 orbits at 100 s resolution, 10 cm CubeSat panels and a
// 10 Wh battery.
func DefaultConfig() Config {
	return Config{
		Time: TimeConfig{
			DtSeconds:          100,
			OrbitPeriodSeconds: 95 * 60,
			NumOrbits:          100,
		},
		Solar: SolarConfig{
			SolarConstantWm2: 1361,
			PanelAreaM2:      0.1 * 0.1,
			PackingEff:       0.5,
			CellEff:          0.30,
			MPPTEff:          0.95,
			WiringEff:        0.97,
			PanelMassKg:      0.05,
		},
		Loads: LoadsConfig{
			OBCW:        0.5,
			ADCSW:       0.8,
			CommsW:      0.7,
			PayloadW:    0.5,
			SafeModeSOC: 0.30,
		},
		Transmission: TransmissionConfig{
			PowerW:          15,
			DurationSeconds: 15 * 60,
			ReserveFraction: 0.30,
		},
		Battery: BatteryConfig{
			CapacityWh:            10,
			SOCMin:                0.2,
			SOCMax:                0.99,
			SOCInitial:            0.6,
			ChargeEff:             0.95,
			FadeRatePerYear:       0.20,
			SelfDischargePerMonth: 0.02,
			CapacityFloorFraction: 0.3,
		},
		PanelCounts: []int{1, 2, 3, 4, 5, 6},
	}
}

// Validate checks every section and the cross-section constraints.
func (c Config) Validate() error {
	if err := c.Time.Validate(); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if err := c.Solar.Validate(); err != nil {
		return fmt.Errorf("solar: %w", err)
	}
	if err := c.Loads.Validate(); err != nil {
		return fmt.Errorf("loads: %w", err)
	}
	if err := c.Transmission.Validate(c.Time.OrbitPeriodSeconds); err != nil {
		return fmt.Errorf("transmission: %w", err)
	}
	if err := c.Battery.Validate(); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	if len(c.PanelCounts) == 0 {
		return fmt.Errorf("panel_counts must not be empty")
	}
	for _, n := range c.PanelCounts {
		if n <= 0 {
			return fmt.Errorf("panel_counts entries must be positive, got %d", n)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// Panels expands the candidate counts into array configurations.
func (c Config) Panels() []model.PanelConfig {
	panels := make([]model.PanelConfig, len(c.PanelCounts))
	for i, n := range c.PanelCounts {
		panels[i] = model.PanelConfig{
			Count:      n,
			AreaM2:     c.Solar.PanelAreaM2,
			PackingEff: c.Solar.PackingEff,
			MassKg:     c.Solar.PanelMassKg,
		}
	}
	return panels
}
