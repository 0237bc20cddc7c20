package model

import "fmt"

// PanelConfig is one candidate solar-array configuration under study. The
// sizing run evaluates several counts side by side; configurations share no
// state with each other.
type PanelConfig struct {
	Count      int     // number of body-mounted panels
	AreaM2     float64 // cell area per panel in m²
	PackingEff float64 // fraction of the panel face covered by cells
	MassKg     float64 // mass per panel in kg
}

// TotalAreaM2 returns the active cell area across all panels.
func (p PanelConfig) TotalAreaM2() float64 {
	return float64(p.Count) * p.AreaM2 * p.PackingEff
}

// TotalMassKg returns the mass of the whole array.
func (p PanelConfig) TotalMassKg() float64 {
	return float64(p.Count) * p.MassKg
}

// PeakPowerW returns the raw solar power the array intercepts at normal
// incidence for the given flux, before conversion losses.
func (p PanelConfig) PeakPowerW(solarConstantWm2 float64) float64 {
	return solarConstantWm2 * p.TotalAreaM2()
}

// Validate checks that the configuration is physically sound.
func (p PanelConfig) Validate() error {
	if p.Count <= 0 {
		return fmt.Errorf("panel count must be positive")
	}
	if p.AreaM2 <= 0 {
		return fmt.Errorf("panel area must be positive")
	}
	if p.PackingEff <= 0 || p.PackingEff > 1 {
		return fmt.Errorf("packing efficiency must be in (0,1]")
	}
	if p.MassKg < 0 {
		return fmt.Errorf("panel mass must not be negative")
	}
	return nil
}

// String returns a label suitable for report and chart legends.
func (p PanelConfig) String() string {
	if p.Count == 1 {
		return "1 panel"
	}
	return fmt.Sprintf("%d panels", p.Count)
}
