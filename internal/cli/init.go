package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/entitlement"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var timezone, tier string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the database and local profile",
		Long: `Create the habitarc database and register the local profile.

The timezone decides which calendar day a completion lands on; set it to
your IANA zone (e.g. America/New_York) so late-night check-ins bucket
correctly. Safe to re-run: an existing profile is updated in place.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, rootOpts, timezone, tier)
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone for day bucketing")
	cmd.Flags().StringVar(&tier, "tier", "free", "subscription tier (free|plus|pro)")

	return cmd
}

func runInit(cmd *cobra.Command, rootOpts *RootOptions, timezone, tier string) error {
	f := rootOpts.formatter(cmd)

	if _, err := dates.LoadZone(timezone); err != nil {
		return f.Fail(err)
	}
	t := entitlement.Tier(tier)
	switch t {
	case entitlement.TierFree, entitlement.TierPlus, entitlement.TierPro:
	default:
		return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("unknown tier %q", tier)}
	}

	cfg := &Config{DB: rootOpts.config.DB, Timezone: timezone, Tier: tier}
	if err := rootOpts.writeConfig(cfg); err != nil {
		return &ExitError{Code: ExitCommandError, Message: "write config", Err: err}
	}

	eng, closeStore, err := rootOpts.openEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := eng.RegisterUser(cmd.Context(), LocalUserID, timezone, t); err != nil {
		return f.Fail(err)
	}
	log.Debug("profile registered", "timezone", timezone, "tier", tier, "db", cfg.DB)

	payload := map[string]string{"db": cfg.DB, "timezone": timezone, "tier": tier}
	return f.Success(payload, func(w io.Writer) {
		fmt.Fprintf(w, "Initialized %s (timezone %s, tier %s)\n", cfg.DB, timezone, tier)
	})
}
