package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/llmstream/internal/server"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP streaming relay",
	Long:  `Starts an HTTP server that relays streamed completions as Server-Sent Events on /v1/stream and over WebSocket on /v1/ws.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, provider, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		allowAll := cfg.Server.AllowAllOrigins || serveAllowAll

		srv := server.New(server.Config{Port: port, AllowAll: allowAll}, provider, server.Defaults{
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
			MaxTokens:    cfg.MaxTokens,
			SystemPrompt: cfg.SystemPrompt,
			Options:      cfg.Options,
		}, logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown failed", zap.Error(err))
			}
		}()

		fmt.Fprintf(os.Stderr, "llmstream server v%s starting on port %d (%s, %s)\n", Version, port, provider.Name(), cfg.Model)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on (defaults to server.port from config)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow CORS requests from any origin")
	rootCmd.AddCommand(serveCmd)
}
