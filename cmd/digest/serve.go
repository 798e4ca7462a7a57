package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sweetpotato0/digest/pkg/logging"
	"github.com/sweetpotato0/digest/pkg/telemetry"
	"github.com/sweetpotato0/digest/server"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the summarization HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdown, err := telemetry.Init(ctx, telemetry.Config{ServiceName: "digest"})
		if err != nil {
			return err
		}
		defer shutdown(context.Background())

		svc, err := newService()
		if err != nil {
			return err
		}

		cfg := server.ConfigFromEnv()
		if addrFlag != "" {
			cfg.WithAddr(addrFlag)
		}
		srv := server.New(svc, cfg)

		logging.WithComponent("main").Info("starting server", "addr", cfg.Addr, "engine", engineFlag)
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (default :8080 or DIGEST_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
