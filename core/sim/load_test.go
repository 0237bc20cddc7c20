package sim

import (
	"math"
	"testing"
)

func TestLoadModel_SafeModeThresholdIsStrict(t *testing.T) {
	cfg := DefaultConfig()
	load := NewLoadModel(cfg)
	// Mid-orbit geometry, outside the transmission window.
	g := Geometry{ThetaDeg: 90, Sunlit: true, Projection: 0.9}

	got, tx := load.Power(0.25, g, cfg.Battery.CapacityWh)
	if tx {
		t.Errorf("transmission must not run outside the window")
	}
	if got != cfg.Loads.OBCW {
		t.Errorf("below threshold only the OBC should draw: got %v, want %v", got, cfg.Loads.OBCW)
	}

	got, _ = load.Power(0.30, g, cfg.Battery.CapacityWh)
	if want := cfg.Loads.NominalW(); got != want {
		t.Errorf("at the threshold the nominal load applies: got %v, want %v", got, want)
	}
}

func TestLoadModel_NominalLoadSum(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Loads.NominalW(); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("nominal load: got %v, want 2.5", got)
	}
}

func TestLoadModel_TransmissionWindowGating(t *testing.T) {
	cfg := DefaultConfig()
	load := NewLoadModel(cfg)
	capacity := cfg.Battery.CapacityWh
	soc := 0.9 // plenty of margin

	cases := []struct {
		name string
		g    Geometry
		want bool
	}{
		{"window start", Geometry{ThetaDeg: 0, Sunlit: true, Projection: 0.88}, true},
		{"inside window", Geometry{ThetaDeg: 30, Sunlit: true, Projection: 0.95}, true},
		{"past window", Geometry{ThetaDeg: 60, Sunlit: true, Projection: 1.0}, false},
		{"eclipsed", Geometry{ThetaDeg: 30, Sunlit: false, Projection: 0.95}, false},
	}
	for _, c := range cases {
		got, tx := load.Power(soc, c.g, capacity)
		if tx != c.want {
			t.Errorf("%s: tx got %v, want %v", c.name, tx, c.want)
		}
		want := cfg.Loads.NominalW()
		if c.want {
			want += cfg.Transmission.PowerW
		}
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("%s: load got %v, want %v", c.name, got, want)
		}
	}
}

func TestLoadModel_TransmissionEnergyGuard(t *testing.T) {
	cfg := DefaultConfig()
	load := NewLoadModel(cfg)
	g := Geometry{ThetaDeg: 10, Sunlit: true, Projection: 0.9}
	capacity := cfg.Battery.CapacityWh

	// With a 10 Wh battery the session needs 3.75 Wh, the parallel nominal
	// load 0.625 Wh and the reserve 3 Wh, so the break-even SOC is 0.7375.
	if _, tx := load.Power(0.74, g, capacity); !tx {
		t.Errorf("expected transmission above the break-even SOC")
	}
	if _, tx := load.Power(0.7375, g, capacity); tx {
		t.Errorf("transmission must not run at exactly the break-even SOC")
	}
	if _, tx := load.Power(0.60, g, capacity); tx {
		t.Errorf("transmission must not run below the break-even SOC")
	}
}

func TestLoadModel_FullReserveDisablesTransmission(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transmission.ReserveFraction = 1
	load := NewLoadModel(cfg)
	g := Geometry{ThetaDeg: 0, Sunlit: true, Projection: 0.88}

	for soc := cfg.Battery.SOCMin; soc <= cfg.Battery.SOCMax; soc += 0.01 {
		if _, tx := load.Power(soc, g, cfg.Battery.CapacityWh); tx {
			t.Fatalf("transmission fired at soc=%v with full reserve", soc)
		}
	}
}
