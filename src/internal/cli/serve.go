package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"proteomorphic/src/internal/api"
	"proteomorphic/src/internal/system"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		Long: `Start the analysis server.

Endpoints:
  POST /api/analyze   analyse {proteinName, proteinSequence}
  GET  /api/health    service and model status
  GET  /ws            per-stage streaming over websocket`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				if err := cfg.SetAddr(addr); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(runContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, svc, err := buildAnalyzer(ctx, cfg)
			if err != nil {
				return err
			}

			slog.Info("starting proteomorphic",
				"endpoint", fmt.Sprintf("http://%s:%d", cfg.Server.EffectiveHost, cfg.Server.Port),
				"model_loaded", svc.Loaded(),
				"provider", svc.Provider(),
				"device", svc.Device(),
				"runtime", system.GetInfo().String(),
			)
			system.LogMemoryUsage("startup")

			return api.NewServer(a, svc, cfg.Server).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

// runContext falls back to a background context when cobra was executed
// without one.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
