package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/smkplugin/internal/reader"
	"github.com/me/smkplugin/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plugin operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			fr, err := reader.New(cfg.Reader, logger)
			if err != nil {
				return fmt.Errorf("create reader: %w", err)
			}
			srv := server.New(cfg.Server, registry, fr, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, &http.Server{Addr: srv.Addr(), Handler: srv.Handler()})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}

// serve runs httpServer until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, httpServer *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpServer.Addr, "reader", cfg.Reader.Kind)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
