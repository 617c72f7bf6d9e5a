package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// heatmapRenderer is the part of the heatmap service the export command uses
type heatmapRenderer interface {
	GenerateHeatmap(ctx context.Context, sessionID string) (*model.HeatmapResult, error)
	ExportToCSV(ctx context.Context, sessionID string) (string, error)
	ExportToMarkdown(ctx context.Context, sessionID string) (string, error)
	ExportToHTML(ctx context.Context, sessionID string) (string, error)
}

var heatmapFormats = []string{"csv", "markdown", "json", "html"}

func newHeatmapCommand(opts *rootOptions) *cobra.Command {
	var format string
	var output string
	var stdout bool

	cmd := &cobra.Command{
		Use:   "heatmap <sessionId>",
		Short: "Export a session gap heatmap",
		Long: `Export the dimension x severity gap heatmap for a session.

Examples:
  # Markdown table to stdout
  quizctl heatmap 3f2c... --format markdown --stdout

  # CSV file
  quizctl heatmap 3f2c... --format csv --output heatmap.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if !validFormat(format) {
				return fmt.Errorf("invalid format '%s': format must be one of %s", format, strings.Join(heatmapFormats, ", "))
			}
			if stdout {
				output = ""
			} else if output == "" {
				output = defaultHeatmapFile(args[0], format)
			}

			a, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			data, err := renderHeatmap(cmd.Context(), a.HeatmapService, args[0], format)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Export format (csv|markdown|json|html)")
	cmd.Flags().StringVar(&output, "output", "", "Output file path (default: heatmap-<sessionId>.<ext>)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write to stdout instead of a file")

	return cmd
}

func validFormat(format string) bool {
	for _, f := range heatmapFormats {
		if f == format {
			return true
		}
	}
	return false
}

func defaultHeatmapFile(sessionID, format string) string {
	ext := format
	if format == "markdown" {
		ext = "md"
	}
	return fmt.Sprintf("heatmap-%s.%s", sessionID, ext)
}

func renderHeatmap(ctx context.Context, svc heatmapRenderer, sessionID, format string) ([]byte, error) {
	var (
		out string
		err error
	)
	switch format {
	case "csv":
		out, err = svc.ExportToCSV(ctx, sessionID)
	case "markdown":
		out, err = svc.ExportToMarkdown(ctx, sessionID)
	case "html":
		out, err = svc.ExportToHTML(ctx, sessionID)
	case "json":
		result, genErr := svc.GenerateHeatmap(ctx, sessionID)
		if genErr != nil {
			return nil, genErr
		}
		data, marshalErr := json.MarshalIndent(result, "", "  ")
		if marshalErr != nil {
			return nil, marshalErr
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
