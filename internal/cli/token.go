package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/docroute/internal/adapters/httpapi"
	"github.com/example/docroute/internal/config"
)

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token [actor]",
		Short: "Issue an API bearer token for an actor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("no jwt_secret configured; run 'docroute init' or set DOCROUTE_JWT_SECRET")
			}

			actor := GetActorID()
			if len(args) == 1 {
				actor = args[0]
			}
			if actor == "" {
				return fmt.Errorf("no actor given")
			}

			token, err := httpapi.IssueToken(cfg.JWTSecret, actor, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime (0 for no expiry)")

	return cmd
}
