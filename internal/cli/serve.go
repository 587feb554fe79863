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

	"github.com/ogulcanaydogan/vault-capacity-guardian/internal/scheduler"
	"github.com/ogulcanaydogan/vault-capacity-guardian/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the capacity relay and metrics over HTTP",
	Long: `Start the HTTP API. GET /{vault} and /api/v1/capacity/{vault} return the
parsed {used,total,remaining} figures; /metrics exposes Prometheus metrics.
With --watch the cron scheduler runs alongside the server.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
	serveCmd.Flags().Bool("watch", false, "Also run scheduled checks")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	listen, _ := cmd.Flags().GetString("listen")
	if listen != "" {
		cfg.Server.Listen = listen
	}
	watch, _ := cmd.Flags().GetBool("watch")

	logger := newLogger(cfg)
	rec := initRecorder(cfg)

	pipeline, err := initPipeline(cfg, logger, rec, watch)
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var metricsHandler http.Handler
	if rec != nil {
		metricsHandler = rec.Handler()
	}
	apiServer := server.NewServer(pipeline, store, cfg.Monitor.Vault, metricsHandler, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	schedDone := make(chan struct{})
	if watch {
		sched, err := scheduler.New(cfg.Schedule.Cron, pipeline, store, cfg.Monitor.Vault, logger)
		if err != nil {
			return err
		}
		go func() {
			defer close(schedDone)
			_ = sched.Run(ctx)
		}()
	} else {
		close(schedDone)
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "listen", cfg.Server.Listen, "watch", watch)
		fmt.Fprintf(os.Stderr, "Vault Capacity Guardian listening on %s\n", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		cancel()
		<-schedDone
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		<-schedDone
	}

	logger.Info("server stopped")
	return nil
}
