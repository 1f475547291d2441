package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmynk/payhive/internal/config"
	"github.com/mmynk/payhive/pkg/logging"
)

type ServeCmd struct {
	Config string `help:"YAML configuration file." type:"path" env:"PAYHIVE_CONFIG"`
	Addr   string `help:"Listen address. Overrides server.addr."`
	DBPath string `help:"SQLite database path, or :memory: for a throwaway store. Overrides database.path and DB_PATH." name:"db-path"`
}

// Help is shown by "payhive serve --help".
func (cmd *ServeCmd) Help() string {
	return `The PayPal rail is enabled when payments.paypal.client_id and client_secret
(or PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET) are set.

The PYUSD rail needs a token client that signs and submits transfers. This
binary does not ship one, so PYUSD is never offered by "payhive serve"; embed
the server with a payment.TokenClient to enable it.`
}

func (cmd *ServeCmd) Run(globals *Globals) error {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if cmd.DBPath != "" {
		cfg.Database.Path = cmd.DBPath
	}
	if globals.LogLevel != "" {
		cfg.Log.Level = globals.LogLevel
	}
	logging.Setup(cfg.Log.Level)

	srv, err := newServer(cfg, serverDeps{})
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Server.Addr, "database", cfg.Database.Path)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
