package logger

import (
	"io"
	"log/slog"

	"github.com/jwebster45206/location-creator/internal/config"
)

// Setup configures the global slog logger based on environment. The editor
// owns the terminal, so output goes to w rather than stdout.
func Setup(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		// JSON format for production
		handler = slog.NewJSONHandler(w, opts)
	} else {
		// Text format for development
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// WithLocation adds the location id to logger context
func WithLocation(logger *slog.Logger, id string) *slog.Logger {
	return logger.With("location_id", id)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
