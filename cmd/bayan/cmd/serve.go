package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/internal/server"
	"github.com/msto63/bayan/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host     string
		grpcPort int
		httpPort int
		noStore  bool
	)
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve program runs over gRPC and WebSocket",
		Long: `Starts the run server. Each request runs in a fresh session.

Endpoints:
  gRPC       bayan.v1.Runner/Run, grpc.health.v1.Health
  WebSocket  /ws  (messages: run, ping)
  HTTP       POST /api/v1/run, GET /healthz, GET /version`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.config
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("grpc-port") {
				cfg.Server.GRPCPort = grpcPort
			}
			if cmd.Flags().Changed("http-port") {
				cfg.Server.HTTPPort = httpPort
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var facts store.FactStore
			if !noStore {
				s, err := a.openStore("")
				if err != nil {
					return err
				}
				defer s.Close()
				facts = s
			}

			srv, err := server.New(server.Config{App: &cfg, Store: facts, Logger: a.logger})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("serving", mdwlog.Fields{
				"grpc":   cfg.GRPCAddress(),
				"http":   cfg.HTTPAddress(),
				"config": cfg.Source,
			})
			return srv.Run(ctx)
		},
	}
	c.Flags().StringVar(&host, "host", "", "listen host (default: [server] host)")
	c.Flags().IntVar(&grpcPort, "grpc-port", 0, "gRPC port (default: [server] grpc_port)")
	c.Flags().IntVar(&httpPort, "http-port", 0, "HTTP and WebSocket port (default: [server] http_port)")
	c.Flags().BoolVar(&noStore, "no-store", false, "disable fact snapshots")
	return c
}
