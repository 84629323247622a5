package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"servicebot/internal/apihandlers"
	"servicebot/internal/app"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr string // Listen address
	servePort int    // Listen port
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the intake HTTP API server",
	Long: `Starts the HTTP server exposing conversation creation, replies, lookup
and the health endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		cfg := appInstance.Config
		if cmd.Flags().Changed("addr") {
			cfg.Server.Host = serveAddr
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		gin.SetMode(cfg.Server.Mode)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, appInstance, cfg.Addr())
	},
}

func runServer(ctx context.Context, appInstance *app.App, listenAddr string) error {
	srv := &http.Server{
		Addr:    listenAddr,
		Handler: apihandlers.NewRouter(appInstance),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting servicebot API server on http://%s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("servicebot API server stopped.")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (e.g., '0.0.0.0' for all interfaces)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
}

