package sim

import (
	"math"
	"testing"
)

func TestBatteryModel_DischargeStep(t *testing.T) {
	batt := NewBatteryModel(DefaultConfig())
	// 2.5 W nominal load over 100 s drains ~0.0694 Wh from a 10 Wh pack,
	// dropping SOC by ~0.00694 before self-discharge.
	got := batt.Step(0.6, 0, 2.5, 10)
	if math.Abs(got-0.5930551) > 1e-6 {
		t.Errorf("discharge step: got %v, want ~0.5930551", got)
	}
}

func TestBatteryModel_ChargeEfficiencyOnlyWhenCharging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Battery.SelfDischargePerMonth = 0
	batt := NewBatteryModel(cfg)

	up := batt.Step(0.5, 5, 0, 10)
	down := batt.Step(0.5, 0, 5, 10)
	gain := up - 0.5
	loss := 0.5 - down
	if gain <= 0 || loss <= 0 {
		t.Fatalf("expected movement in both directions, gain=%v loss=%v", gain, loss)
	}
	if math.Abs(gain-loss*cfg.Battery.ChargeEff) > 1e-12 {
		t.Errorf("charging should be derated by %v: gain=%v loss=%v", cfg.Battery.ChargeEff, gain, loss)
	}
}

func TestBatteryModel_SelfDischargeAppliesEveryStep(t *testing.T) {
	cfg := DefaultConfig()
	batt := NewBatteryModel(cfg)

	got := batt.Step(0.6, 0, 0, 10)
	want := 0.6 * (1 - cfg.Battery.SelfDischargePerDay()*cfg.Time.DtSeconds/86400)
	if math.Abs(got-want) > 1e-15 {
		t.Errorf("idle step: got %v, want %v", got, want)
	}
	if got >= 0.6 {
		t.Errorf("idle battery should lose charge, got %v", got)
	}
}

func TestBatteryModel_ClampInclusiveBounds(t *testing.T) {
	batt := NewBatteryModel(DefaultConfig())

	if got := batt.Step(0.98, 1000, 0, 10); got != 0.99 {
		t.Errorf("overcharge should clamp to soc_max: got %v", got)
	}
	if got := batt.Step(0.22, 0, 1000, 10); got != 0.2 {
		t.Errorf("deep discharge should clamp to soc_min: got %v", got)
	}
}

func TestBatteryModel_CapacityFade(t *testing.T) {
	batt := NewBatteryModel(DefaultConfig())

	if got := batt.EffectiveCapacityWh(0); math.Abs(got-10) > 1e-12 {
		t.Errorf("fresh capacity: got %v, want 10", got)
	}
	if got := batt.EffectiveCapacityWh(0.5); math.Abs(got-9) > 1e-12 {
		t.Errorf("capacity after half a year: got %v, want 9", got)
	}

	prev := math.Inf(1)
	for years := 0.0; years <= 10; years += 0.25 {
		c := batt.EffectiveCapacityWh(years)
		if c > prev {
			t.Fatalf("capacity increased at %v years: %v > %v", years, c, prev)
		}
		prev = c
	}

	// Long past the linear fade horizon the floor holds the capacity up.
	if got := batt.EffectiveCapacityWh(10); math.Abs(got-3) > 1e-12 {
		t.Errorf("floored capacity: got %v, want 3", got)
	}
}

func TestMissionYears(t *testing.T) {
	if got := MissionYears(365 * 86400); math.Abs(got-1) > 1e-12 {
		t.Errorf("one year of seconds: got %v", got)
	}
	if got := MissionYears(0); got != 0 {
		t.Errorf("mission start: got %v", got)
	}
}
