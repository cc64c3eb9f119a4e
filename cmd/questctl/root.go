package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/finquest/internal/app"
	"github.com/aliskhannn/finquest/internal/config"
	"github.com/aliskhannn/finquest/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "questctl",
	Short: "Operator tool for the finquest progression engine",
	Long: `questctl manages the quiz catalog and player progress
against the same storage the server is configured with.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// withApp loads configuration, builds the services, and runs fn.
func withApp(fn func(ctx context.Context, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		lg, err := logger.New(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = lg.Sync() }()

		ctx := cmd.Context()
		a, err := app.New(ctx, cfg, lg)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(ctx, a, args)
	}
}
