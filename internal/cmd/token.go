package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/service"
)

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			resp, err := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL).IssueToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "User id to embed (generated if not specified)")

	return cmd
}
