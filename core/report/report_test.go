package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/kilianp07/epsim/core/model"
	"github.com/kilianp07/epsim/core/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Times: []float64{0, 100, 200, 300},
		Panels: []model.PanelConfig{
			{Count: 1, MassKg: 0.05},
			{Count: 4, MassKg: 0.05},
		},
		SOC: [][]float64{
			{0.6, 0.4, 0.2, 0.3},
			{0.6, 0.5, 0.45, 0.55},
		},
		Solar: [][]float64{
			{0, 1.5, 0, 0.5},
			{0, 6.0, 0, 2.0},
		},
		Load: [][]float64{
			{0, 2.5, 2.5, 0.5},
			{0, 2.5, 2.5, 2.5},
		},
	}
}

func TestSummarize(t *testing.T) {
	sums := Summarize(testResult(), 0.25)
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}

	one := sums[0]
	if one.PanelCount != 1 {
		t.Errorf("panel count: got %d", one.PanelCount)
	}
	if math.Abs(one.MinSOC-0.2) > 1e-12 {
		t.Errorf("min SOC: got %v, want 0.2", one.MinSOC)
	}
	if math.Abs(one.AvgSOC-0.375) > 1e-12 {
		t.Errorf("avg SOC: got %v, want 0.375", one.AvgSOC)
	}
	if math.Abs(one.FinalSOC-0.3) > 1e-12 {
		t.Errorf("final SOC: got %v, want 0.3", one.FinalSOC)
	}
	if math.Abs(one.PeakSolarW-1.5) > 1e-12 {
		t.Errorf("peak solar: got %v, want 1.5", one.PeakSolarW)
	}
	// Only the two non-zero samples count towards the sunlit average.
	if math.Abs(one.AvgSunlitW-1.0) > 1e-12 {
		t.Errorf("avg sunlit: got %v, want 1.0", one.AvgSunlitW)
	}
	if math.Abs(one.MassKg-0.05) > 1e-12 {
		t.Errorf("mass: got %v, want 0.05", one.MassKg)
	}
	if one.Viable {
		t.Errorf("min SOC 0.2 must not be viable at threshold 0.25")
	}

	if !sums[1].Viable {
		t.Errorf("4-panel config should be viable, min SOC %v", sums[1].MinSOC)
	}
	if math.Abs(sums[1].MassKg-0.2) > 1e-12 {
		t.Errorf("4-panel mass: got %v, want 0.2", sums[1].MassKg)
	}
}

func TestSummarize_ViabilityThresholdIsStrict(t *testing.T) {
	res := testResult()
	sums := Summarize(res, 0.45)
	// The 4-panel minimum is exactly 0.45, which must not count as viable.
	if sums[1].Viable {
		t.Errorf("min SOC equal to the threshold must fail viability")
	}
}

func TestRecommended(t *testing.T) {
	sums := []Summary{
		{PanelCount: 6, Viable: true},
		{PanelCount: 2, Viable: false},
		{PanelCount: 4, Viable: true},
	}
	best, ok := Recommended(sums)
	if !ok {
		t.Fatal("expected a recommendation")
	}
	if best.PanelCount != 4 {
		t.Errorf("recommended count: got %d, want 4", best.PanelCount)
	}

	if _, ok := Recommended([]Summary{{PanelCount: 1}, {PanelCount: 2}}); ok {
		t.Error("no viable configuration must yield no recommendation")
	}
}

func TestWrite(t *testing.T) {
	sums := Summarize(testResult(), 0.25)
	var buf bytes.Buffer
	if err := Write(&buf, sums); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"EPS OPTIMIZATION RESULTS",
		"1 Panels:",
		"4 Panels:",
		"Min SOC: 20.0%",
		"Status: ✗ FAILS",
		"Status: ✓ VIABLE",
		"RECOMMENDATION: 4 panels provide optimal balance",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_NoViableConfiguration(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []Summary{{PanelCount: 1}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "no configuration meets the reserve margin") {
		t.Errorf("expected the no-recommendation line:\n%s", buf.String())
	}
}
