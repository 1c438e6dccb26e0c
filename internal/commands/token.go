package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kopilka/internal/middleware"
)

func newTokenCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer tokens for testing and integrations",
	}

	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue <identity>",
		Short: "Sign a bearer token for an external identity (e.g. tg:12345)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := strings.TrimSpace(args[0])
			if identity == "" {
				return fmt.Errorf("identity must not be empty")
			}

			cfg, err := e.loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if ttl == 0 {
				ttl = cfg.JWTExpirationDur
			}

			token, err := middleware.IssueToken(cfg.JWTSecret, identity, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_EXPIRES_IN)")
	cmd.AddCommand(issue)

	return cmd
}
