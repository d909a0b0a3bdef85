package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/docroute/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the approval API over HTTP",
		Long: `Serve the JSON API. Every /api request needs a bearer token signed with
the configured jwt_secret; the token subject is the acting user. Use
'docroute token' to issue one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := wire.HTTPServer()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = wire.Config().HTTPAddr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
