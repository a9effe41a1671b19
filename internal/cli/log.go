package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/habitarc/internal/engine"
	"github.com/roach88/habitarc/internal/habit"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dateStr string
		mood    int
		energy  int
		stress  int
		note    string
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record or list daily wellbeing",
		Long: `Record mood, energy, and stress (each 1-5) for one day, or list recent
entries with --list. Re-running for the same day merges: fields you leave
out keep their stored value.`,
		Args:          cobra.NoArgs,
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

			if list {
				// Zero bounds mean the engine's default 30-day window; an
				// explicit --date narrows the listing to that single day.
				logs, err := eng.ListDailyLogs(cmd.Context(), LocalUserID, day, day)
				if err != nil {
					return f.Fail(err)
				}
				return f.Success(logs, func(w io.Writer) {
					if len(logs) == 0 {
						fmt.Fprintln(w, "No entries")
						return
					}
					for _, l := range logs {
						fmt.Fprintf(w, "%s  mood %s energy %s stress %s  %s\n",
							l.LogDate, scoreStr(l.Mood), scoreStr(l.Energy), scoreStr(l.Stress), l.Note)
					}
				})
			}

			entry, err := eng.UpsertDailyLog(cmd.Context(), engine.DailyLogParams{
				UserID: LocalUserID,
				Date:   day,
				Mood:   mood,
				Energy: energy,
				Stress: stress,
				Note:   note,
			})
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(entry, func(w io.Writer) {
				fmt.Fprintf(w, "Logged %s: mood %s energy %s stress %s\n",
					entry.LogDate, scoreStr(entry.Mood), scoreStr(entry.Energy), scoreStr(entry.Stress))
			})
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "day to log (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&mood, "mood", 0, "mood score 1-5")
	cmd.Flags().IntVar(&energy, "energy", 0, "energy score 1-5")
	cmd.Flags().IntVar(&stress, "stress", 0, "stress score 1-5")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	cmd.Flags().BoolVar(&list, "list", false, "list recent entries instead of writing")

	return cmd
}

func scoreStr(v int) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}
