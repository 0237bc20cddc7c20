package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epsim/app"
	"github.com/kilianp07/epsim/config"
	"github.com/kilianp07/epsim/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "epsim",
	Short: "CubeSat EPS sizing simulator",
	Long: "epsim simulates the battery state of charge of a CubeSat power system\n" +
		"over many orbits for several solar-array sizes and reports which\n" +
		"configuration keeps the mission viable.",
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (built-in defaults when empty)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.Out = cmd.OutOrStdout()
	return svc.Run(ctx)
}
