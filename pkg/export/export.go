package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/epsim/core/report"
	"github.com/kilianp07/epsim/core/sim"
)

// Config defines which result files a run writes.
type Config struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`
	CSV     bool   `json:"csv"`
	JSON    bool   `json:"json"`
}

// SetDefaults fills unset fields with sensible defaults.
func (c *Config) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
}

// Validate checks the export settings.
func (c Config) Validate() error {
	if c.Enabled && !c.CSV && !c.JSON {
		return fmt.Errorf("export enabled but neither csv nor json selected")
	}
	return nil
}

// WriteSeriesCSV writes the full series table to w. The header carries one
// soc/solar/load column group per panel count.
func WriteSeriesCSV(w io.Writer, res *sim.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"time_s"}
	for _, p := range res.Panels {
		n := strconv.Itoa(p.Count)
		header = append(header, "soc_"+n+"p", "solar_w_"+n+"p", "load_w_"+n+"p")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for s, t := range res.Times {
		rec := make([]string, 0, len(header))
		rec = append(rec, strconv.FormatFloat(t, 'f', -1, 64))
		for i := range res.Panels {
			rec = append(rec,
				strconv.FormatFloat(res.SOC[i][s], 'f', -1, 64),
				strconv.FormatFloat(res.Solar[i][s], 'f', -1, 64),
				strconv.FormatFloat(res.Load[i][s], 'f', -1, 64),
			)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type seriesDoc struct {
	TimesS      []float64   `json:"time_s"`
	PanelCounts []int       `json:"panel_counts"`
	SOC         [][]float64 `json:"soc"`
	SolarW      [][]float64 `json:"solar_w"`
	LoadW       [][]float64 `json:"load_w"`
}

// WriteSeriesJSON writes the full series to w as one JSON document.
func WriteSeriesJSON(w io.Writer, res *sim.Result) error {
	counts := make([]int, len(res.Panels))
	for i, p := range res.Panels {
		counts[i] = p.Count
	}
	doc := seriesDoc{
		TimesS:      res.Times,
		PanelCounts: counts,
		SOC:         res.SOC,
		SolarW:      res.Solar,
		LoadW:       res.Load,
	}
	enc := json.NewEncoder(w)
	return enc.Encode(doc)
}

// WriteSummariesCSV writes the per-configuration summary table to w.
func WriteSummariesCSV(w io.Writer, summaries []report.Summary) error {
	cw := csv.NewWriter(w)
	header := []string{"panel_count", "min_soc", "avg_soc", "final_soc", "peak_solar_w", "avg_sunlit_w", "mass_kg", "viable"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range summaries {
		rec := []string{
			strconv.Itoa(s.PanelCount),
			strconv.FormatFloat(s.MinSOC, 'f', -1, 64),
			strconv.FormatFloat(s.AvgSOC, 'f', -1, 64),
			strconv.FormatFloat(s.FinalSOC, 'f', -1, 64),
			strconv.FormatFloat(s.PeakSolarW, 'f', -1, 64),
			strconv.FormatFloat(s.AvgSunlitW, 'f', -1, 64),
			strconv.FormatFloat(s.MassKg, 'f', -1, 64),
			strconv.FormatBool(s.Viable),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummariesJSON writes the summaries to w in JSON format.
func WriteSummariesJSON(w io.Writer, summaries []report.Summary) error {
	enc := json.NewEncoder(w)
	return enc.Encode(summaries)
}
