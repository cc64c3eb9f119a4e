package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/finquest/internal/app"
)

var listLevel int

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List active questions of a level",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app.App, _ []string) error {
		questions, err := a.Bank.ListQuestions(ctx, listLevel)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			fmt.Printf("No active questions at level %d.\n", listLevel)
			return nil
		}
		for _, q := range questions {
			fmt.Printf("%5d | %-10s | %s\n", q.ID, q.Category, q.Question)
		}
		return nil
	}),
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate [id]",
	Short: "Stop serving a question",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid question id %q", args[0])
		}
		if err := a.Bank.Deactivate(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Question %d deactivated.\n", id)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(questionsCmd, deactivateCmd)
	questionsCmd.Flags().IntVarP(&listLevel, "level", "l", 1, "Level to list")
}
