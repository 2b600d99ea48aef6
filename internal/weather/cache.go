package weather

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/i474232898/weatherpi/internal/metrics"
)

// FetchFunc retrieves a fresh forecast. Cache calls it only when the stored record is
// missing, unreadable or expired.
type FetchFunc func(ctx context.Context, loc Location, minutes int) ([]Interval, error)

// Cache is the single-record forecast cache. It is the only writer of its Store.
// It is not safe for concurrent use; the scheduler never overlaps refresh cycles.
type Cache struct {
	store Store
	now   func() time.Time
}

// NewCache creates a Cache over the given store.
func NewCache(store Store) *Cache {
	return &Cache{
		store: store,
		now:   time.Now,
	}
}

// GetOrRefresh returns the cached intervals while the record is younger than maxAge, and
// otherwise fetches, persists and returns a fresh forecast. A failed fetch leaves the stored
// record untouched and returns the fetch error.
func (c *Cache) GetOrRefresh(ctx context.Context, loc Location, minutes int, fetch FetchFunc, maxAge time.Duration) ([]Interval, error) {
	rec, err := c.store.Load(ctx)
	switch {
	case err == nil && !rec.Matches(loc, minutes):
		metrics.CacheLookupsTotal.WithLabelValues("mismatch").Inc()
		slog.InfoContext(ctx, "forecast cache is for another location or interval",
			"cached_location", rec.Location.Key(), "cached_minutes", rec.IntervalMinutes,
			"location", loc.Key(), "minutes", minutes)
	case err == nil:
		age, ok := rec.Age(c.now())
		if ok && age <= maxAge {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			slog.DebugContext(ctx, "forecast cache hit", "age", age.Round(time.Second), "intervals", len(rec.Intervals))
			return rec.Intervals, nil
		}
		metrics.CacheLookupsTotal.WithLabelValues("expired").Inc()
		slog.InfoContext(ctx, "forecast cache expired", "age", age.Round(time.Second), "max_age", maxAge)
	case errors.Is(err, ErrCacheMiss):
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		slog.InfoContext(ctx, "forecast cache empty")
	case errors.Is(err, ErrCacheCorrupt):
		metrics.CacheLookupsTotal.WithLabelValues("corrupt").Inc()
		slog.WarnContext(ctx, "forecast cache corrupt, refetching", "error", err)
	default:
		// An unreachable medium is handled like a miss; the fetch decides the cycle.
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		slog.WarnContext(ctx, "forecast cache unreadable, refetching", "error", err)
	}

	intervals, err := fetch(ctx, loc, minutes)
	if err != nil {
		return nil, err
	}

	fresh := Record{FetchedAt: c.now().UTC(), Location: loc, IntervalMinutes: minutes, Intervals: intervals}
	if err := c.store.Save(ctx, fresh); err != nil {
		slog.ErrorContext(ctx, "failed to persist forecast cache", "error", err)
	}
	return intervals, nil
}
