// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/design-compiler/internal/history"
	"github.com/pdiddy/design-compiler/internal/pipeline"
	"github.com/pdiddy/design-compiler/internal/secrets"
	"github.com/pdiddy/design-compiler/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversion and history over HTTP",
	Long: `Serve starts an HTTP API for a browser front end:

  POST   /convert           convert a design URL (JSON bundle, or ?download=zip)
  GET    /history           list recent conversions
  PATCH  /history/{id}      rename a conversion
  DELETE /history/{id}      remove a conversion
  DELETE /history           clear history

Requests may carry their own token in the body or the X-Figma-Token header;
otherwise the token from --token, .secrets/figma-token, or FIGMA_TOKEN is used.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	explicit, _ := cmd.Flags().GetString("token")
	token, err := secrets.Token(explicit, secretsDir)
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := slog.Default()
	svc := server.New(pipeline.NewConverter(cfg, store, logger), store, token, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().String("token", "", "default design API access token")

	rootCmd.AddCommand(serveCmd)
}
