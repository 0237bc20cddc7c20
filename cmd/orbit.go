package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epsim/config"
	"github.com/kilianp07/epsim/core/model"
	"github.com/kilianp07/epsim/core/sim"
)

var orbitPanels int

var orbitCmd = &cobra.Command{
	Use:   "orbit",
	Short: "Print a single-orbit geometry and power table",
	RunE:  orbitTable,
}

func init() {
	orbitCmd.Flags().IntVar(&orbitPanels, "panels", 4, "panel count for the power column")
	rootCmd.AddCommand(orbitCmd)
}

func orbitTable(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	simCfg := cfg.Simulation

	panel := model.PanelConfig{
		Count:      orbitPanels,
		AreaM2:     simCfg.Solar.PanelAreaM2,
		PackingEff: simCfg.Solar.PackingEff,
		MassKg:     simCfg.Solar.PanelMassKg,
	}
	if err := panel.Validate(); err != nil {
		return err
	}

	orbit := sim.NewOrbitModel(simCfg.Time)
	solar := sim.NewSolarModel(simCfg.Solar)
	widthDeg := simCfg.Transmission.WindowWidthDeg(simCfg.Time.OrbitPeriodSeconds)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "one orbit at %.0f s resolution, %s\n", simCfg.Time.DtSeconds, panel)
	fmt.Fprintf(w, "%8s %10s %7s %11s %9s %7s\n", "time_s", "theta_deg", "sunlit", "projection", "solar_w", "window")

	steps := int(simCfg.Time.OrbitPeriodSeconds / simCfg.Time.DtSeconds)
	for s := 0; s < steps; s++ {
		t := float64(s) * simCfg.Time.DtSeconds
		g := orbit.At(t)
		fmt.Fprintf(w, "%8.0f %10.2f %7t %11.3f %9.3f %7t\n",
			t, g.ThetaDeg, g.Sunlit, g.Projection, solar.Power(panel, g),
			g.Sunlit && g.ThetaDeg <= widthDeg)
	}
	return nil
}
