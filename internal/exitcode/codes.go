package exitcode

import (
	"errors"

	"github.com/i474232898/weatherpi/internal/refresh"
	"github.com/i474232898/weatherpi/internal/weather"
)

// Exit codes for a single refresh run (-once).
const (
	// Success - the LEDs were updated
	Success = 0

	// ConfigError - missing or invalid environment or display configuration
	ConfigError = 1

	// NetworkError - the weather provider could not be reached or answered with an error
	NetworkError = 2

	// DataError - the forecast could not be resolved for another reason
	DataError = 3

	// StorageError - the cache backend could not be opened
	StorageError = 4
)

// For maps a refresh error to an exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, refresh.ErrConfigUnavailable), errors.Is(err, weather.ErrInvalidInterval):
		return ConfigError
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		return NetworkError
	default:
		return DataError
	}
}
