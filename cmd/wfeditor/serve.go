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

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wfeditor/internal/api"
	"github.com/gyaneshwarpardhi/wfeditor/internal/config"
	"github.com/gyaneshwarpardhi/wfeditor/internal/editor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editing API",
	Long:  `Starts the HTTP API for editing sessions and hot-reloads the config file on change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return runServe(cmd, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, addr string) error {
	loader, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg := loader.Config()
	slog.Info("config loaded", "workflows", len(cfg.Workflows), "upstream", cfg.Upstream.BaseURL != "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := editor.NewManager(ctx, newFetcher(cfg), cfg.Editor, slog.Default())

	// Reloads swap the record source; open sessions keep their trees.
	// Invalid files never reach this hook; the loader keeps the previous config.
	loader.OnChange(func(newCfg *config.Config) {
		mgr.SwapFetcher(newFetcher(newCfg))
		slog.Info("config hot-reloaded", "workflows", len(newCfg.Workflows))
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(mgr, loader),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel()
	mgr.Shutdown()
	slog.Info("goodbye")
	return nil
}
