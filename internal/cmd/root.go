package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/scour/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for scour
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scour",
		Short: "Scans and cleans up project dependency folders",
		Long: `Scour scans directory trees for things developers want gone or gathered.

In cleanup mode it finds dependency and build-artifact folders that a build
can regenerate (node_modules, target, vendor, ...), reports how much disk
space they hold, and deletes them when asked. In combine mode it collects a
project's source files into one annotated Markdown document.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewCleanCommand())
	cmd.AddCommand(NewCombineCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewGreetCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// loadConfig loads the YAML config from an explicit path, falling back to
// the default file under the scour home when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
