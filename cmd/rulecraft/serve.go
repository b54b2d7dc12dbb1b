package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/rulecraft/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the assistant as a JSON API over HTTP. Each request carries one user
message or button press; the reply lists what the assistant presented.
Prometheus metrics are served at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		addr := a.cfg.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		handler := httpAdapter.NewHandler(a.assistant,
			httpAdapter.WithMetrics(a.metrics.Handler()),
			httpAdapter.WithLogger(a.logger),
		)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go a.assistant.RunSweeper(ctx, a.cfg.SweepInterval)

		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("Starting rulecraft server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			a.logger.Info("Shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			a.logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
