package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epsim/config"
	"github.com/kilianp07/epsim/infra/runlog"
)

var (
	historyPanels int
	historyViable bool
	historySince  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sizing runs",
	RunE:  showHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyPanels, "panels", 0, "only runs that evaluated this panel count")
	historyCmd.Flags().BoolVar(&historyViable, "viable", false, "only runs with at least one viable configuration")
	historyCmd.Flags().StringVar(&historySince, "since", "", "only runs after this RFC 3339 time")
	rootCmd.AddCommand(historyCmd)
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := runlog.NewJSONLStore(cfg.RunLog.Path)
	if err != nil {
		return fmt.Errorf("run log: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := runlog.Query{PanelCount: historyPanels, OnlyViable: historyViable}
	if historySince != "" {
		ts, err := time.Parse(time.RFC3339, historySince)
		if err != nil {
			return fmt.Errorf("parse since: %w", err)
		}
		q.Start = ts
	}

	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(w, "no recorded runs match")
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintf(w, "%s  run %s  %d orbits  dt %.0f s\n",
			rec.Timestamp.Format(time.RFC3339), rec.RunID, rec.Orbits, rec.DtSeconds)
		for _, s := range rec.Summaries {
			status := "fails"
			if s.Viable {
				status = "viable"
			}
			fmt.Fprintf(w, "    %d panels: min SOC %.1f%%  avg %.1f%%  mass %.2f kg  %s\n",
				s.PanelCount, 100*s.MinSOC, 100*s.AvgSOC, s.MassKg, status)
		}
	}
	return nil
}
