package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/rhea/internal/metrics"
	"github.com/cognicore/rhea/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := loadConfig(root)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			m := metrics.New()
			bot, cleanup, err := buildBot(ctx, cfg, logger, m)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := loadHealthData(ctx, bot, cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("health data ready", zap.Int("articles", report.Total))

			srv, err := server.New(bot, server.Config{
				MaxSessions: cfg.HTTP.MaxSessions,
				Logger:      logger,
				Metrics:     m,
			})
			if err != nil {
				return err
			}

			httpSrv := &http.Server{
				Addr:         cfg.HTTP.Addr,
				Handler:      srv.Handler(),
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
				errc <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}
