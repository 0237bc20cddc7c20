package model

import (
	"math"
	"testing"
)

func TestPanelConfig_Derivations(t *testing.T) {
	p := PanelConfig{Count: 4, AreaM2: 0.01, PackingEff: 0.5, MassKg: 0.05}

	if got := p.TotalAreaM2(); math.Abs(got-0.02) > 1e-12 {
		t.Errorf("total area: got %v, want 0.02", got)
	}
	if got := p.PeakPowerW(1361); math.Abs(got-27.22) > 1e-9 {
		t.Errorf("peak power: got %v, want 27.22", got)
	}
	if got := p.TotalMassKg(); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("total mass: got %v, want 0.2", got)
	}
}

func TestPanelConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		p       PanelConfig
		wantErr bool
	}{
		{"valid", PanelConfig{Count: 1, AreaM2: 0.01, PackingEff: 0.5, MassKg: 0.05}, false},
		{"zero count", PanelConfig{Count: 0, AreaM2: 0.01, PackingEff: 0.5}, true},
		{"zero area", PanelConfig{Count: 1, AreaM2: 0, PackingEff: 0.5}, true},
		{"packing above one", PanelConfig{Count: 1, AreaM2: 0.01, PackingEff: 1.1}, true},
		{"negative mass", PanelConfig{Count: 1, AreaM2: 0.01, PackingEff: 0.5, MassKg: -1}, true},
	}
	for _, c := range cases {
		err := c.p.Validate()
		if (err != nil) != c.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", c.name, err, c.wantErr)
		}
	}
}

func TestPanelConfig_String(t *testing.T) {
	if got := (PanelConfig{Count: 1}).String(); got != "1 panel" {
		t.Errorf("singular label: got %q", got)
	}
	if got := (PanelConfig{Count: 6}).String(); got != "6 panels" {
		t.Errorf("plural label: got %q", got)
	}
}
