package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/location-creator/internal/config"
	"github.com/jwebster45206/location-creator/internal/form"
	"github.com/jwebster45206/location-creator/internal/images"
	"github.com/jwebster45206/location-creator/internal/logger"
	"github.com/jwebster45206/location-creator/internal/storage"
	"github.com/jwebster45206/location-creator/pkg/location"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "location-creator",
		Short:        "Edit the locations of a text-adventure world",
		Long: `A terminal editor for the locations file of a text-adventure world.

Examples:
  location-creator
  STORAGE_BACKEND=redis REDIS_URL=redis://localhost:6379/0 location-creator edit
  location-creator validate locations.json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Open the location editor (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor()
		},
	})
	root.AddCommand(newValidateCmd())

	return root
}

func runEditor() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()

	log := logger.Setup(cfg, logFile)
	log.Info("Starting location editor",
		"environment", cfg.Environment,
		"storage", cfg.StorageBackend,
		"id_scheme", cfg.IDScheme)

	st, err := newStorage(cfg, log)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		return err
	}
	defer func() {
		_ = st.Close() // Ignore error in defer
	}()
	if err := st.Ping(context.Background()); err != nil {
		log.Warn("Storage not reachable, saving may fail", "target", st.Describe(), "error", err)
	}

	store := location.NewStore(
		location.WithIDAllocator(newIDAllocator(cfg)),
		location.WithLogger(log),
	)
	lib := images.NewLibrary(".", cfg.ImageDir, log)
	ctrl := form.New(store, lib, log)

	p := tea.NewProgram(NewEditorUI(ctrl, st, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("Editor exited with error", "error", err)
		return fmt.Errorf("error running program: %w", err)
	}

	log.Info("Location editor closed")
	return nil
}

func newStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		rs, err := storage.NewRedisStorage(cfg.RedisURL, cfg.RedisKey, log)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rs.WaitForConnection(ctx, 5, time.Second); err != nil {
			_ = rs.Close()
			return nil, err
		}
		return rs, nil
	default:
		return storage.NewFileStorage(cfg.LocationsFile, log), nil
	}
}

func newIDAllocator(cfg *config.Config) location.IDAllocator {
	if cfg.IDScheme == config.IDSchemeUUID {
		return location.UUIDs{}
	}
	return &location.SequentialIDs{}
}
