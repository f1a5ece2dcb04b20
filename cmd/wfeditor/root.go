package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wfeditor/internal/config"
	"github.com/gyaneshwarpardhi/wfeditor/internal/template"
)

var rootCmd = &cobra.Command{
	Use:   "wfeditor",
	Short: "Workflow graph editor backend",
	Long:  `wfeditor serves editing sessions over workflow graphs and checks or exports workflow seeds.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		setupLogging(level)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs/editor.yaml", "Path to editor YAML config")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

// loadConfig reads and validates the file named by --config.
func loadConfig(cmd *cobra.Command) (*config.Loader, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.NewLoader(path)
}

// newFetcher picks the upstream API when one is configured, else the static catalog.
func newFetcher(cfg *config.Config) template.Fetcher {
	if cfg.Upstream.BaseURL != "" {
		timeout := time.Duration(cfg.Editor.FetchTimeoutMs) * time.Millisecond
		return template.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Token, timeout)
	}
	return template.NewCatalog(cfg.Catalog.Templates, cfg.Catalog.Credentials, cfg.Catalog.Inventories)
}
