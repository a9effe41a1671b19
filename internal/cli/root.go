package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/habitarc/internal/engine"
	"github.com/roach88/habitarc/internal/store"
)

// LocalUserID is the single user a CLI installation tracks. Multi-user
// deployments sit behind the API layer, not this binary.
const LocalUserID = "local"

// Config is the YAML configuration file (~/.habitarc.yaml by default).
type Config struct {
	DB       string `yaml:"db"`
	Timezone string `yaml:"timezone"`
	Tier     string `yaml:"tier"`
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Verbose    bool
	Format     string // "json" | "text"

	config *Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the habitarc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "habitarc",
		Short: "habitarc - habit completion and streak tracking",
		Long:  "Track habits, record completions, and follow streaks from the terminal.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Verbose {
				log.SetLevel(log.DebugLevel)
			}
			return opts.loadConfig()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.habitarc.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewArchiveCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewToggleCommand(opts))
	cmd.AddCommand(NewDoneCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewStreakCommand(opts))
	cmd.AddCommand(NewHeatmapCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewReviewCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// defaultConfigPath resolves ~/.habitarc.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".habitarc.yaml"), nil
}

// loadConfig reads the YAML config file. A missing file is fine - defaults
// apply and `habitarc init` writes one.
func (o *RootOptions) loadConfig() error {
	path := o.ConfigPath
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return err
		}
	}

	cfg := &Config{Timezone: "UTC", Tier: "free"}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if cfg.DB == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DB = filepath.Join(home, ".habitarc", "habitarc.db")
	}
	if o.DBPath != "" {
		cfg.DB = o.DBPath
	}
	o.config = cfg
	return nil
}

// writeConfig persists the config file (used by init).
func (o *RootOptions) writeConfig(cfg *Config) error {
	path := o.ConfigPath
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	o.config = cfg
	return nil
}

// openEngine opens the store and builds an engine for command execution.
// The returned closer must be deferred.
func (o *RootOptions) openEngine() (*engine.Engine, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(o.config.DB), 0o755); err != nil {
		return nil, nil, &ExitError{Code: ExitCommandError, Message: "create data directory", Err: err}
	}
	s, err := store.Open(o.config.DB)
	if err != nil {
		return nil, nil, &ExitError{Code: ExitCommandError, Message: "open database", Err: err}
	}
	return engine.New(s), s.Close, nil
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
