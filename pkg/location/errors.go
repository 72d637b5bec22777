package location

import "errors"

var (
	// ErrNotFound is returned when an id is not present in the store.
	ErrNotFound = errors.New("location not found")

	// ErrPersistenceUnavailable wraps every failure to read or parse saved locations.
	ErrPersistenceUnavailable = errors.New("locations unavailable")

	ErrEmptyData   = errors.New("no location data")
	ErrInvalidData = errors.New("invalid location data")
)
