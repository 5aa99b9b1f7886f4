package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kolmo-labs/buildledger/internal/api"
	"github.com/kolmo-labs/buildledger/internal/config"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the BuildLedger API server",
		Long: `Starts the HTTP API server. The schema is migrated on startup.
The server shuts down gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := openMigratedStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			srv, err := api.NewServer(api.Config{
				Store:         store,
				Addr:          cfg.Server.Addr,
				SessionKey:    cfg.Server.SessionKey,
				PriceBookPath: cfg.Server.PriceBookPath,
				Logger:        logger,
			})
			if err != nil {
				return err
			}
			return srv.Serve(ctx)
		},
	}
}
