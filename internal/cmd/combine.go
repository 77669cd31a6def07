package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/scour/internal/combiner"
	"github.com/harrison/scour/internal/logger"
)

// NewCombineCommand creates the combine command
func NewCombineCommand() *cobra.Command {
	var (
		path       string
		output     string
		include    []string
		exclude    []string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Combine code files into a single Markdown document",
		Long: `Walk a directory tree and concatenate every text file into one Markdown
document, each file in its own fenced code block annotated with its path.

Dependency folders, lock files, hidden entries, and binary files are skipped.
With no --include list every text file is taken; with one, only files whose
extension is listed (well-known extensionless files such as Makefile and
Dockerfile are always taken). Extensions are matched without the leading
dot, so "-i .go" and "-i go" mean the same thing.

Output goes to stdout unless --output names a file. When it does, the output
file itself is never aggregated, even when it lives inside the scanned tree.

Examples:
  # Dump the current project to stdout
  scour combine

  # Only Go and SQL files, into a file
  scour combine -p ~/src/scour -i go,sql -o scour-code.md

  # Everything except Markdown
  scour combine -e md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCombine(cmd, path, output, include, exclude, configPath)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Root path to scan")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringSliceVarP(&include, "include", "i", nil, "Comma-separated list of file extensions to include (e.g. go,py,js)")
	cmd.Flags().StringSliceVarP(&exclude, "exclude", "e", nil, "Comma-separated list of file extensions to exclude")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: $SCOUR_HOME/config.yaml)")

	return cmd
}

// runCombine executes the combine command
func runCombine(cmd *cobra.Command, path, output string, include, exclude []string, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log := logger.NewStderr(cfg.LogLevel)

	// Stream mode writes the document itself to stdout, so the banner and
	// summary would corrupt it. Only file mode gets console chatter.
	var sink combiner.Sink
	if output == "" {
		sink = combiner.NewStreamSink(cmd.OutOrStdout())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "📝 Combining code from %q into %q\n", path, output)
		fileSink, err := combiner.NewFileSink(output, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer fileSink.Close()
		sink = fileSink
	}

	_, err = combiner.Run(path, sink, combiner.Options{
		Include:     include,
		Exclude:     exclude,
		IgnoreDirs:  cfg.Combine.IgnoreDirs,
		IgnoreFiles: cfg.Combine.IgnoreFiles,
		TextNames:   cfg.Combine.TextNames,
		Log:         log,
	})
	return err
}
