package storage

import (
	"context"
)

// Storage persists the serialized location store as a single document.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// LoadLocations returns the saved document. Missing, unreadable or empty
	// documents return an error wrapping location.ErrPersistenceUnavailable.
	LoadLocations(ctx context.Context) ([]byte, error)

	// SaveLocations replaces the saved document.
	SaveLocations(ctx context.Context, data []byte) error

	// Describe names where the document lives, for diagnostics.
	Describe() string
}
