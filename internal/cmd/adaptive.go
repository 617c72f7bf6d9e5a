package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

func newVisibleCommand(opts *rootOptions) *cobra.Command {
	var responsesPath string

	cmd := &cobra.Command{
		Use:   "visible <questionnaireId>",
		Short: "List the questions visible for a set of responses",
		Long: `Evaluate visibility rules for a questionnaire against responses read
from a JSON object keyed by question id, e.g.

  {"q-team-size": 12, "q-threat": {"selectedOptionId": "threat-yes"}}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			responses, err := loadResponses(responsesPath)
			if err != nil {
				return err
			}

			a, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			questions, err := a.AdaptiveService.GetVisibleQuestions(cmd.Context(), args[0], responses)
			if err != nil {
				return err
			}
			printQuestions(cmd.OutOrStdout(), questions)
			return nil
		},
	}

	cmd.Flags().StringVar(&responsesPath, "responses", "", "Path to a JSON file of responses (none if not specified)")

	return cmd
}

func newGraphCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <questionnaireId>",
		Short: "Print the visibility rule dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			graph, err := a.AdaptiveService.BuildDependencyGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printGraph(cmd.OutOrStdout(), graph)
			return nil
		},
	}
}

// loadResponses reads a responses object. An empty path means no responses.
func loadResponses(path string) (model.Responses, error) {
	responses := model.Responses{}
	if path == "" {
		return responses, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read responses file: %w", err)
	}
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("failed to parse responses file: %w", err)
	}
	return responses, nil
}

func printQuestions(w io.Writer, questions []*model.Question) {
	for _, q := range questions {
		marker := " "
		if q.IsRequired {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s  %s\n", marker, q.ID, q.Text)
	}
	fmt.Fprintf(w, "%d visible\n", len(questions))
}

func printGraph(w io.Writer, graph model.DependencyGraph) {
	sources := make([]string, 0, len(graph))
	for source := range graph {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		targets := graph.Targets(source)
		sort.Strings(targets)
		fmt.Fprintln(w, source)
		for _, target := range targets {
			fmt.Fprintf(w, "  -> %s\n", target)
		}
	}
}
