package weather

import (
	"context"
	"errors"
)

var (
	// ErrInvalidInterval is returned for a forecast granularity outside ValidIntervalMinutes.
	ErrInvalidInterval = errors.New("invalid forecast interval")

	// ErrUpstreamUnavailable wraps any transport, status or decoding failure from the weather provider.
	ErrUpstreamUnavailable = errors.New("weather provider unavailable")

	// ErrCacheMiss is returned by a Store when no record has been saved yet.
	ErrCacheMiss = errors.New("no cached forecast")

	// ErrCacheCorrupt is returned by a Store when the persisted record cannot be parsed.
	ErrCacheCorrupt = errors.New("cached forecast is corrupt")
)

// Provider abstracts the minute-forecast source (Azure Maps in production).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location, minutes int) ([]Interval, error)
}

// Store is the single-slot persistence the forecast cache writes through.
// Implementations live in internal/store; only Cache writes to it.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}
