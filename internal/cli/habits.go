package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/habitarc/internal/engine"
	"github.com/roach88/habitarc/internal/habit"
	"github.com/roach88/habitarc/internal/habitfile"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		description  string
		color        string
		icon         string
		frequency    string
		days         []int
		timesPerWeek int
		target       int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new habit",
		Long: `Create a habit with a schedule.

Frequencies:
  daily          due every day (the default)
  weekly_days    due on fixed weekdays; pass --days 1,3,5 (Mon=1 .. Sun=7)
  weekly_target  due N times per week on any days; pass --times-per-week N`,
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

			h, err := eng.CreateHabit(cmd.Context(), engine.CreateHabitParams{
				UserID:       LocalUserID,
				Name:         args[0],
				Description:  description,
				Color:        color,
				Icon:         icon,
				Frequency:    habit.Frequency(frequency),
				Schedule:     habit.Schedule{Days: days, TimesPerWeek: timesPerWeek},
				TargetPerDay: target,
			})
			if err != nil {
				return f.Fail(err)
			}
			log.Debug("habit created", "id", h.ID, "name", h.Name, "frequency", h.Frequency)
			return f.Success(h, func(w io.Writer) {
				fmt.Fprintf(w, "Added %q (%s)\n", h.Name, describeFrequency(h.Frequency, days, timesPerWeek))
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().StringVar(&color, "color", "", "hex color, e.g. #22c55e")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&frequency, "frequency", "daily", "daily|weekly_days|weekly_target")
	cmd.Flags().IntSliceVar(&days, "days", nil, "weekdays for weekly_days (Mon=1 .. Sun=7)")
	cmd.Flags().IntVar(&timesPerWeek, "times-per-week", 0, "weekly quota for weekly_target")
	cmd.Flags().IntVar(&target, "target", 0, "units per day that count as complete (default 1)")

	return cmd
}

func describeFrequency(f habit.Frequency, days []int, timesPerWeek int) string {
	switch f {
	case habit.FrequencyWeeklyDays:
		names := make([]string, 0, len(days))
		for _, d := range days {
			if d >= 1 && d <= 7 {
				names = append(names, weekdayShort[d-1])
			}
		}
		return "on " + strings.Join(names, ", ")
	case habit.FrequencyWeeklyTarget:
		return fmt.Sprintf("%dx per week", timesPerWeek)
	default:
		return "daily"
	}
}

var weekdayShort = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits with today's status",
		Long: `List active habits with their completion state for today.

Due-ness follows each habit's schedule: daily habits are always due,
weekly_days habits only on their weekdays, and weekly_target habits until
the week's quota is met.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			eng, closeStore, err := rootOpts.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			statuses, err := eng.HabitsWithTodayStatus(cmd.Context(), LocalUserID)
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(statuses, func(w io.Writer) {
				if len(statuses) == 0 {
					fmt.Fprintln(w, "No habits yet. Add one with `habitarc add`.")
					return
				}
				for _, s := range statuses {
					fmt.Fprintf(w, "%s %-24s %s streak %d\n",
						statusMark(s), s.Habit.Name, progress(s), s.Habit.CurrentStreak)
				}
			})
		},
	}
	return cmd
}

func statusMark(s engine.HabitStatus) string {
	switch {
	case s.IsComplete:
		return "[x]"
	case s.IsDueToday:
		return "[ ]"
	default:
		return "[-]"
	}
}

func progress(s engine.HabitStatus) string {
	if s.Habit.TargetPerDay > 1 {
		return fmt.Sprintf("%d/%d today,", s.CompletedToday, s.Habit.TargetPerDay)
	}
	if s.IsComplete {
		return "done today,"
	}
	if !s.IsDueToday {
		return "not due today,"
	}
	return "due today,"
}

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <name>",
		Short: "Archive a habit",
		Long: `Soft-delete a habit. Its history is kept but it stops appearing in
lists, stats, and reviews, and no longer counts against the habit limit.`,
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
			if err := eng.ArchiveHabit(cmd.Context(), LocalUserID, h.ID); err != nil {
				return f.Fail(err)
			}
			return f.Success(map[string]string{"archived": h.ID}, func(w io.Writer) {
				fmt.Fprintf(w, "Archived %q\n", h.Name)
			})
		},
	}
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.cue>",
		Short: "Import habits from a definitions file",
		Long: `Import habits from a CUE definitions file.

The file holds a list of habit definitions validated against a schema
before anything is written. Names that already exist are skipped, so the
command is safe to re-run after editing the file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

type importSummary struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, path string) error {
	f := rootOpts.formatter(cmd)

	defs, err := habitfile.Load(path)
	if err != nil {
		return f.Fail(err)
	}

	eng, closeStore, err := rootOpts.openEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	var sum importSummary
	for _, d := range defs {
		existing, err := eng.FindHabit(cmd.Context(), LocalUserID, d.Name)
		if err == nil && existing != nil {
			sum.Skipped = append(sum.Skipped, d.Name)
			continue
		}
		if err != nil && !habit.IsNotFound(err) {
			return f.Fail(err)
		}

		h, err := eng.CreateHabit(cmd.Context(), engine.CreateHabitParams{
			UserID:       LocalUserID,
			Name:         d.Name,
			Description:  d.Description,
			Color:        d.Color,
			Icon:         d.Icon,
			Frequency:    d.Frequency,
			Schedule:     d.Schedule(),
			TargetPerDay: d.TargetPerDay,
		})
		if err != nil {
			return f.Fail(err)
		}
		log.Debug("habit imported", "id", h.ID, "name", h.Name)
		sum.Created = append(sum.Created, h.Name)
	}

	return f.Success(sum, func(w io.Writer) {
		fmt.Fprintf(w, "Imported %d habit(s)", len(sum.Created))
		if len(sum.Skipped) > 0 {
			fmt.Fprintf(w, ", skipped %d existing", len(sum.Skipped))
		}
		fmt.Fprintln(w)
	})
}
