package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/eldritchhouse/internal/logger"
	"github.com/lawnchairsociety/eldritchhouse/internal/server"
)

var (
	serveAddr   string
	serveTelnet string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated houses over WebSocket and telnet",
	Long: `Start the house server. Every connection gets its own house, generated
on connect, and can walk it with look, go, map and regen commands.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "WebSocket listen address (default from config)")
	serveCmd.Flags().StringVar(&serveTelnet, "telnet", "", "Telnet listen address (default from config, empty to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("telnet") {
		cfg.Server.TelnetAddr = serveTelnet
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, cat)

	db, err := openHistory(cfg.History)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		srv.SetHistory(db)
		logger.Info("Generation history enabled", "driver", cfg.History.Driver)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigChan:
		logger.Always("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
