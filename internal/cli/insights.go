package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
)

// NewStreakCommand creates the streak command.
func NewStreakCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streak <name>",
		Short: "Show streak counters for a habit",
		Long: `Show a habit's current and longest streaks, total completions, and the
share of the last 30 days with at least one completion.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			eng, closeStore, err := rootOpts.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			h, err := eng.FindHabit(cmd.Context(), LocalUserID, args[0])
			if err != nil {
				return f.Fail(err)
			}
			info, err := eng.Streak(cmd.Context(), LocalUserID, h.ID)
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(info, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n", h.Name)
				fmt.Fprintf(w, "  current streak:    %d\n", info.CurrentStreak)
				fmt.Fprintf(w, "  longest streak:    %d\n", info.LongestStreak)
				fmt.Fprintf(w, "  total completions: %d\n", info.TotalCompletions)
				fmt.Fprintf(w, "  30-day rate:       %.0f%%\n", info.CompletionRate30*100)
			})
		},
	}
	return cmd
}

// NewHeatmapCommand creates the heatmap command.
func NewHeatmapCommand(rootOpts *RootOptions) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "heatmap <name>",
		Short: "Show per-day completion history",
		Long: `Show per-day completion values for a habit over recent months. The
lookback is clamped to what the profile's tier allows. Days with no
completions are omitted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			eng, closeStore, err := rootOpts.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			h, err := eng.FindHabit(cmd.Context(), LocalUserID, args[0])
			if err != nil {
				return f.Fail(err)
			}
			entries, err := eng.Heatmap(cmd.Context(), LocalUserID, h.ID, months)
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(entries, func(w io.Writer) {
				if len(entries) == 0 {
					fmt.Fprintln(w, "No completions in range")
					return
				}
				for _, e := range entries {
					mark := strings.Repeat("#", min(e.Count, 10))
					fmt.Fprintf(w, "%s  %-10s %d/%d\n", e.Date, mark, e.Count, e.Target)
				}
			})
		},
	}

	cmd.Flags().IntVar(&months, "months", 0, "months of history (clamped by tier, default 3)")
	return cmd
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var startStr, endStr string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show daily completion stats",
		Long: `Show one row per day: habits completed out of habits that existed that
day. Days with no activity still appear with a zero rate. Without flags
the range is the tier's analytics window ending today.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			start, err := parseDateFlag(startStr)
			if err != nil {
				return f.Fail(habit.NewValidation("invalid start date %q", startStr))
			}
			end, err := parseDateFlag(endStr)
			if err != nil {
				return f.Fail(habit.NewValidation("invalid end date %q", endStr))
			}

			eng, closeStore, err := rootOpts.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			stats, err := eng.DailyStats(cmd.Context(), LocalUserID, start, end)
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(stats, func(w io.Writer) {
				for _, s := range stats {
					fmt.Fprintf(w, "%s  %d/%d  %3.0f%%\n",
						s.Date, s.CompletedHabits, s.TotalHabits, s.CompletionRate*100)
				}
			})
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endStr, "end", "", "last day (YYYY-MM-DD, default today)")
	return cmd
}

// NewReviewCommand creates the review command.
func NewReviewCommand(rootOpts *RootOptions) *cobra.Command {
	var weekStr string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Show a weekly review",
		Long: `Summarize one Monday-to-Sunday week: per-habit completions against what
the schedule asked for, plus the best and worst days. Without --week the
previous full week is reviewed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			var week dates.Date
			if weekStr != "" {
				var err error
				if week, err = dates.Parse(weekStr); err != nil {
					return f.Fail(habit.NewValidation("invalid week %q: use YYYY-MM-DD", weekStr))
				}
			}

			eng, closeStore, err := rootOpts.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			review, err := eng.WeeklyReviewFor(cmd.Context(), LocalUserID, week)
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(review, func(w io.Writer) {
				fmt.Fprintf(w, "Week of %s - %s\n", review.WeekStart, review.WeekEnd)
				fmt.Fprintf(w, "  %d/%d completed (%.0f%%)\n",
					review.TotalCompletions, review.TotalPossible, review.CompletionRate*100)
				if review.BestDay != "" {
					fmt.Fprintf(w, "  best day %s, worst day %s\n", review.BestDay, review.WorstDay)
				}
				for _, h := range review.Habits {
					fmt.Fprintf(w, "  %-24s %d/%d\n", h.Name, h.Completed, h.Possible)
				}
			})
		},
	}

	cmd.Flags().StringVar(&weekStr, "week", "", "any day in the week to review (YYYY-MM-DD)")
	return cmd
}
