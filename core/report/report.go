package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/epsim/core/sim"
)

// Summary condenses one configuration's run into the figures the sizing
// decision is made from.
type Summary struct {
	PanelCount int     `json:"panel_count"`
	MinSOC     float64 `json:"min_soc"`
	AvgSOC     float64 `json:"avg_soc"`
	FinalSOC   float64 `json:"final_soc"`
	PeakSolarW float64 `json:"peak_solar_w"`
	AvgSunlitW float64 `json:"avg_sunlit_w"`
	MassKg     float64 `json:"mass_kg"`
	Viable     bool    `json:"viable"`
}

// Summarize reduces every configuration's series to a Summary. A
// configuration is viable when its minimum SOC stays strictly above
// minViableSOC over the whole mission.
func Summarize(res *sim.Result, minViableSOC float64) []Summary {
	summaries := make([]Summary, len(res.Panels))
	for i, p := range res.Panels {
		soc := res.SOC[i]
		min := floats.Min(soc)
		summaries[i] = Summary{
			PanelCount: p.Count,
			MinSOC:     min,
			AvgSOC:     stat.Mean(soc, nil),
			FinalSOC:   soc[len(soc)-1],
			PeakSolarW: floats.Max(res.Solar[i]),
			AvgSunlitW: sunlitMean(res.Solar[i]),
			MassKg:     p.TotalMassKg(),
			Viable:     min > minViableSOC,
		}
	}
	return summaries
}

// sunlitMean averages the generated power over the samples where the array
// actually produced, so eclipse zeros do not dilute the figure.
func sunlitMean(solar []float64) float64 {
	sunlit := make([]float64, 0, len(solar))
	for _, w := range solar {
		if w > 0 {
			sunlit = append(sunlit, w)
		}
	}
	if len(sunlit) == 0 {
		return 0
	}
	return stat.Mean(sunlit, nil)
}

// Recommended returns the viable configuration with the fewest panels. The
// second return is false when no configuration is viable.
func Recommended(summaries []Summary) (Summary, bool) {
	var best Summary
	found := false
	for _, s := range summaries {
		if !s.Viable {
			continue
		}
		if !found || s.PanelCount < best.PanelCount {
			best = s
			found = true
		}
	}
	return best, found
}

// Write renders the sizing report. The layout follows the study's console
// output: one block per configuration and a closing recommendation.
func Write(w io.Writer, summaries []Summary) error {
	var buf bytes.Buffer
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf, "EPS OPTIMIZATION RESULTS")
	fmt.Fprintln(&buf, rule)

	for _, s := range summaries {
		status := "✗ FAILS"
		if s.Viable {
			status = "✓ VIABLE"
		}
		fmt.Fprintf(&buf, "\n%d Panels:\n", s.PanelCount)
		fmt.Fprintf(&buf, "  Min SOC: %.1f%%\n", s.MinSOC*100)
		fmt.Fprintf(&buf, "  Avg SOC: %.1f%%\n", s.AvgSOC*100)
		fmt.Fprintf(&buf, "  Final SOC: %.1f%%\n", s.FinalSOC*100)
		fmt.Fprintf(&buf, "  Peak solar: %.2f W\n", s.PeakSolarW)
		fmt.Fprintf(&buf, "  Avg sunlit solar: %.2f W\n", s.AvgSunlitW)
		fmt.Fprintf(&buf, "  Mass: %.2f kg\n", s.MassKg)
		fmt.Fprintf(&buf, "  Status: %s\n", status)
	}

	fmt.Fprintf(&buf, "\n%s\n", rule)
	if best, ok := Recommended(summaries); ok {
		fmt.Fprintf(&buf, "RECOMMENDATION: %d panels provide optimal balance\n", best.PanelCount)
	} else {
		fmt.Fprintln(&buf, "RECOMMENDATION: no configuration meets the reserve margin")
	}
	fmt.Fprintln(&buf, rule)

	_, err := w.Write(buf.Bytes())
	return err
}
