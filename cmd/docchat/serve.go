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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hubenschmidt/docchat/server"
	"github.com/hubenschmidt/docchat/server/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API",
	Long: `Serve POST /api/chat plus trace inspection routes.

Example:
  docchat serve --addr :3000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	bindFlags(serveCmd.Flags(), map[string]string{"server.addr": "addr"})
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	if a.cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; chat requests will fail")
	}

	traces, err := store.NewTraceStore(a.cfg.Traces.DSN)
	if err != nil {
		return fmt.Errorf("initialize trace store: %w", err)
	}
	if a.cfg.Traces.DSN != "" {
		logger.Info("trace storage enabled", zap.String("component", "store"))
	}

	srv, err := server.New(server.Config{
		Pipeline: a.rag,
		APIKey:   a.cfg.OpenAI.APIKey,
		Traces:   traces,
		Logger:   logger.Named("server"),
	})
	if err != nil {
		traces.Close()
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting docchat server", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
