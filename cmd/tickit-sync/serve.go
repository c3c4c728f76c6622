// Serve command: runs the HTTP sync server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ricardodantas/tickit-sync/internal/engine"
	"github.com/ricardodantas/tickit-sync/internal/server"
	"github.com/ricardodantas/tickit-sync/internal/sqlite"
)

var (
	flagServeBind string
	flagServePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeBind, "bind", "", "bind address (overrides config)")
	serveCmd.Flags().IntVar(&flagServePort, "port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	if flagServeBind != "" {
		cfg.Server.Bind = flagServeBind
	}
	if flagServePort != 0 {
		cfg.Server.Port = flagServePort
	}

	if len(cfg.Tokens) == 0 {
		logger.Warn("no API tokens configured; all sync requests will be rejected",
			"hint", "run: tickit-sync token --name <device-name>")
	}

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", cfg.Database.Path, err)
	}
	defer store.Close()

	logger.Info("starting tickit-sync",
		"config", cfgPath,
		"database", cfg.Database.Path,
		"tokens", len(cfg.Tokens),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, engine.New(store, logger), logger, version)
	return srv.Run(ctx)
}
