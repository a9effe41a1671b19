package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/engine"
	"github.com/roach88/habitarc/internal/habit"
)

// parseDateFlag parses an optional --date value. Empty means "today in the
// profile's timezone", which the engine resolves itself.
func parseDateFlag(s string) (dates.Date, error) {
	if s == "" {
		return dates.Date{}, nil
	}
	return dates.Parse(s)
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "toggle <name>",
		Short: "Flip a habit's completion for a day",
		Long: `Flip the completion state for one day: record it if absent, remove it
if present. Running toggle twice always lands back where you started.

--date accepts yesterday or tomorrow at most; older history is immutable
from the CLI.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			day, err := parseDateFlag(dateStr)
			if err != nil {
				return f.Fail(habit.NewValidation("invalid date %q: use YYYY-MM-DD", dateStr))
			}

			eng, closeStore, err := rootOpts.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			h, err := eng.FindHabit(cmd.Context(), LocalUserID, args[0])
			if err != nil {
				return f.Fail(err)
			}
			res, err := eng.ToggleCompletion(cmd.Context(), engine.CompletionParams{
				UserID:  LocalUserID,
				HabitID: h.ID,
				Date:    day,
			})
			if err != nil {
				return f.Fail(err)
			}
			log.Debug("toggled", "habit", h.ID, "action", res.Action)
			return f.Success(res, func(w io.Writer) {
				if res.Action == habit.ToggleCreated {
					fmt.Fprintf(w, "Checked off %q (streak %d)\n", h.Name, res.Habit.CurrentStreak)
				} else {
					fmt.Fprintf(w, "Unchecked %q (streak %d)\n", h.Name, res.Habit.CurrentStreak)
				}
			})
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "day to toggle (YYYY-MM-DD, default today)")
	return cmd
}

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dateStr string
		value   int
		note    string
	)

	cmd := &cobra.Command{
		Use:   "done <name>",
		Short: "Record a completion",
		Long: `Record a completion for one day. Unlike toggle this never removes
anything: repeating the command for the same day is a no-op, except that a
higher --value raises the stored value.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			day, err := parseDateFlag(dateStr)
			if err != nil {
				return f.Fail(habit.NewValidation("invalid date %q: use YYYY-MM-DD", dateStr))
			}

			eng, closeStore, err := rootOpts.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			h, err := eng.FindHabit(cmd.Context(), LocalUserID, args[0])
			if err != nil {
				return f.Fail(err)
			}
			res, err := eng.CreateCompletion(cmd.Context(), engine.CompletionParams{
				UserID:  LocalUserID,
				HabitID: h.ID,
				Date:    day,
				Value:   value,
				Note:    note,
			})
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(res, func(w io.Writer) {
				fmt.Fprintf(w, "Recorded %q on %s (streak %d, longest %d)\n",
					h.Name, res.Completion.LocalDate, res.Habit.CurrentStreak, res.Habit.LongestStreak)
			})
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "day to record (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&value, "value", 0, "units completed (default 1)")
	cmd.Flags().StringVar(&note, "note", "", "note attached to the completion")
	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a completion",
		Long: `Remove the completion for one day, recomputing streaks afterwards. The
longest streak keeps its high-water mark even if the removal breaks the
run that set it. Removing a day with no completion is a no-op.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			day, err := parseDateFlag(dateStr)
			if err != nil {
				return f.Fail(habit.NewValidation("invalid date %q: use YYYY-MM-DD", dateStr))
			}

			eng, closeStore, err := rootOpts.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			h, err := eng.FindHabit(cmd.Context(), LocalUserID, args[0])
			if err != nil {
				return f.Fail(err)
			}
			deleted, res, err := eng.DeleteCompletion(cmd.Context(), engine.CompletionParams{
				UserID:  LocalUserID,
				HabitID: h.ID,
				Date:    day,
			})
			if err != nil {
				return f.Fail(err)
			}
			payload := map[string]any{"deleted": deleted}
			if res != nil {
				payload["habit"] = res.Habit
			}
			return f.Success(payload, func(w io.Writer) {
				if !deleted {
					fmt.Fprintf(w, "Nothing recorded for %q on that day\n", h.Name)
					return
				}
				fmt.Fprintf(w, "Removed completion for %q (streak %d)\n", h.Name, res.Habit.CurrentStreak)
			})
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "day to clear (YYYY-MM-DD, default today)")
	return cmd
}
