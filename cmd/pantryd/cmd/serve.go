package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openpantry/pantryd/internal/server"
	"github.com/openpantry/pantryd/internal/store"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pantry API server",
	Long: `Start an HTTP server exposing the pantry API.

Endpoints:
  POST /receipts/scan      - Scan an uploaded receipt image
  GET  /pantry/items       - List pantry items
  POST /pantry/items       - Create a pantry item
  GET  /pantry/items/{id}  - Fetch, update, or delete a single item
  GET  /vocabulary         - Vocabulary snapshot status
  POST /vocabulary/refresh - Force a vocabulary refresh
  GET  /ws/scan            - WebSocket scan channel with progress
  GET  /health             - Health check
  GET  /metrics            - Prometheus metrics

Examples:
  pantryd serve
  pantryd serve --port 8080
  pantryd serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		serverCfg := cfg.Server
		if cmd.Flags().Changed("host") {
			serverCfg.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			serverCfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("cors-origin") {
			serverCfg.CORSOrigin, _ = cmd.Flags().GetString("cors-origin")
		}
		if cmd.Flags().Changed("max-upload-size") {
			serverCfg.MaxUploadMB, _ = cmd.Flags().GetInt64("max-upload-size")
		}
		if cmd.Flags().Changed("timeout") {
			serverCfg.TimeoutSec, _ = cmd.Flags().GetInt("timeout")
		}
		if cmd.Flags().Changed("shutdown-timeout") {
			serverCfg.ShutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
		}
		if cmd.Flags().Changed("max-concurrent-scans") {
			serverCfg.MaxConcurrentScans, _ = cmd.Flags().GetInt("max-concurrent-scans")
		}

		if serverCfg.Port < 1 || serverCfg.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", serverCfg.Port)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		logger := slog.Default()

		pool, err := newDatabasePool(ctx, cfg)
		if err != nil {
			return err
		}
		if pool != nil {
			defer pool.Close()
		}

		cache, err := newVocabulary(cfg, pool, logger)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()

		// Warm from the source, or the local snapshot when the source
		// is down. A cold cache is not fatal: the server starts and
		// reports scans as unavailable until a refresh succeeds.
		if err := cache.Warm(ctx); err != nil {
			logger.Warn("starting without vocabulary", "error", err)
		}
		cache.Start(ctx)

		engine, err := newEngine(ctx, cfg)
		if err != nil {
			return err
		}

		p, err := newPipeline(cfg, engine, cache, logger)
		if err != nil {
			return err
		}

		var pantry store.Store
		if pool != nil {
			pantry = store.NewPostgresStore(pool)
		} else {
			logger.Warn("no database configured, pantry items are kept in memory")
			pantry = store.NewMemoryStore()
		}

		apiServer := server.NewServer(serverCfg, p, pantry, cache, logger)
		defer func() { _ = apiServer.Close() }()

		mux := http.NewServeMux()
		apiServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", serverCfg.Host, serverCfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(serverCfg.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(serverCfg.TimeoutSec) * time.Second,
		}

		go func() {
			logger.Info("starting pantry server", "host", serverCfg.Host, "port", serverCfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			logger.Info("context cancelled, initiating shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(serverCfg.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		logger.Info("shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}

		if err := apiServer.Close(); err != nil {
			logger.Error("server cleanup error", "error", err)
		}

		logger.Info("graceful shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int64("max-upload-size", 5, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 60, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().Int("max-concurrent-scans", 2, "maximum receipt scans processed at once")
}
