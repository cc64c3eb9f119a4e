package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/finquest/internal/app"
)

var resetAll bool

var progressCmd = &cobra.Command{
	Use:   "progress [user-id]",
	Short: "Show a player's progress",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		summary, err := a.Progress.GetProgressSummary(ctx, args[0])
		if err != nil {
			return err
		}
		t := summary.Tracker
		fmt.Printf("User:       %s\n", t.UserID)
		fmt.Printf("Map/level:  %d/%d (%d levels left)\n", t.CurrentMap, t.CurrentLevel, summary.LevelsRemaining)
		fmt.Printf("XP:         %d\n", t.TotalXP)
		fmt.Printf("Streak:     %d days\n", t.StreakDays)
		fmt.Printf("Answered:   %d (%.0f%% correct)\n", summary.AnsweredQuestions, summary.Accuracy)
		return nil
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset [user-id]",
	Short: "Run the daily reset for one player, or for everyone with --all",
	Args: func(cmd *cobra.Command, args []string) error {
		if resetAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		if resetAll {
			return a.Scheduler.RunOnce(ctx)
		}

		out, err := a.Progress.ResetIfDue(ctx, args[0])
		if err != nil {
			return err
		}
		if !out.Applied {
			fmt.Println("Reset already ran in the current window.")
			return nil
		}
		fmt.Printf("Reset %s: map %d, level %d, streak %d.\n", out.Action, out.CurrentMap, out.CurrentLevel, out.StreakDays)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(progressCmd, resetCmd)
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "Reset every player")
}
