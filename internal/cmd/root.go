package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/app"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/config"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configPath string
	logLevel   string
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// openApp connects to storage. Logs go to stderr so command output stays clean.
func (o *rootOptions) openApp(ctx context.Context, stderr io.Writer) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger.New(stderr, cfg.LogLevel))
}

// NewRootCommand creates and returns the root cobra command for quizctl
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "quizctl",
		Short: "Inspect questionnaire visibility and session gap heatmaps",
		Long: `quizctl works against the same MongoDB and Redis stores as the API server.

It evaluates visibility rules for a questionnaire, prints the rule
dependency graph, exports session gap heatmaps and issues API tokens.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(newHeatmapCommand(opts))
	cmd.AddCommand(newVisibleCommand(opts))
	cmd.AddCommand(newGraphCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))

	return cmd
}

// writeOutput writes data to path, or to w when path is empty
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
