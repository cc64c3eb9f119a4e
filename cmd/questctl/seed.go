package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/finquest/internal/app"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the question catalog from a JSON file",
	Long:  "Seeding is skipped when the catalog already holds questions.",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app.App, _ []string) error {
		n, err := a.Bank.SeedFromFile(ctx, seedFile)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Catalog already seeded, nothing to do.")
			return nil
		}
		fmt.Printf("Seeded %d questions from %s.\n", n, seedFile)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "assets/questions.json", "Catalog file")
}
