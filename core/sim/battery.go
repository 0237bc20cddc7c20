package sim

const (
	secondsPerDay  = 86400.0
	daysPerYear    = 365.0
	secondsPerHour = 3600.0
)

// BatteryModel integrates net power into state of charge, modelling charge
// losses, passive self-discharge and age-based capacity fade.
type BatteryModel struct {
	cfg       BatteryConfig
	dtSeconds float64
	// retention is the per-step self-discharge multiplier, applied on every
	// step regardless of charge direction.
	retention float64
}

// NewBatteryModel builds the battery model for the configured step size.
func NewBatteryModel(cfg Config) BatteryModel {
	return BatteryModel{
		cfg:       cfg.Battery,
		dtSeconds: cfg.Time.DtSeconds,
		retention: 1 - cfg.Battery.SelfDischargePerDay()*cfg.Time.DtSeconds/secondsPerDay,
	}
}

// EffectiveCapacityWh returns the usable capacity after linear fade at the
// given mission age, floored at the configured fraction of nominal so the
// SOC update never divides by a vanishing capacity.
func (b BatteryModel) EffectiveCapacityWh(missionYears float64) float64 {
	c := b.cfg.CapacityWh * (1 - b.cfg.FadeRatePerYear*missionYears)
	if floor := b.cfg.CapacityFloorFraction * b.cfg.CapacityWh; c < floor {
		return floor
	}
	return c
}

// Step advances the state of charge by one time step. Net charging is
// derated by the charge efficiency; discharging is not. The result is
// clamped into [SOCMin, SOCMax] inclusive.
func (b BatteryModel) Step(prevSOC, solarW, loadW, capacityWh float64) float64 {
	deltaWh := (solarW - loadW) * b.dtSeconds / secondsPerHour
	if deltaWh > 0 {
		deltaWh *= b.cfg.ChargeEff
	}
	soc := prevSOC + deltaWh/capacityWh
	soc *= b.retention
	return clamp(soc, b.cfg.SOCMin, b.cfg.SOCMax)
}

// MissionYears converts elapsed mission time to years for the fade model.
func MissionYears(elapsedSeconds float64) float64 {
	return elapsedSeconds / secondsPerDay / daysPerYear
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
