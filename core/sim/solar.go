package sim

import "github.com/kilianp07/epsim/core/model"

// SolarModel converts orbital geometry and an array configuration into
// generated electrical power.
type SolarModel struct {
	fluxWm2  float64
	chainEff float64
}

// NewSolarModel builds the generation model from the solar chain parameters.
func NewSolarModel(cfg SolarConfig) SolarModel {
	return SolarModel{fluxWm2: cfg.SolarConstantWm2, chainEff: cfg.ConversionEff()}
}

// Power returns the electrical output in watts. It is zero whenever the
// satellite is eclipsed or the projection factor vanishes, and never
// negative.
func (s SolarModel) Power(panels model.PanelConfig, g Geometry) float64 {
	if !g.Sunlit {
		return 0
	}
	return panels.PeakPowerW(s.fluxWm2) * s.chainEff * g.Projection
}
