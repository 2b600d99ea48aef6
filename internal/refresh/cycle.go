package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weatherpi/internal/colors"
	"github.com/i474232898/weatherpi/internal/display"
	"github.com/i474232898/weatherpi/internal/leds"
	"github.com/i474232898/weatherpi/internal/metrics"
	"github.com/i474232898/weatherpi/internal/weather"
)

var (
	// ErrConfigUnavailable is returned when the display document cannot be loaded or is invalid.
	ErrConfigUnavailable = errors.New("display config unavailable")

	// ErrForecastUnavailable is returned when neither the cache nor the provider yields a forecast.
	ErrForecastUnavailable = errors.New("forecast unavailable")
)

// State is the step a cycle is currently in.
type State int

const (
	Idle State = iota
	FetchingConfig
	ResolvingForecast
	MappingColors
	DrivingLeds
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingConfig:
		return "fetching_config"
	case ResolvingForecast:
		return "resolving_forecast"
	case MappingColors:
		return "mapping_colors"
	case DrivingLeds:
		return "driving_leds"
	default:
		return "unknown"
	}
}

// Cycle runs one refresh: config, forecast, colors, LEDs.
type Cycle struct {
	config   display.Provider
	cache    *weather.Cache
	provider weather.Provider
	driver   leds.Driver
	maxAge   time.Duration

	mu    sync.Mutex
	state State
	now   func() time.Time
}

// New creates a refresh cycle.
func New(config display.Provider, cache *weather.Cache, provider weather.Provider, driver leds.Driver, maxAge time.Duration) *Cycle {
	return &Cycle{
		config:   config,
		cache:    cache,
		provider: provider,
		driver:   driver,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// State reports the current step.
func (c *Cycle) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cycle) enter(ctx context.Context, log *slog.Logger, s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	log.DebugContext(ctx, "refresh state", "state", s.String())
}

// Run executes a full cycle and returns the frame handed to the driver. On error the
// LEDs are left as they were.
func (c *Cycle) Run(ctx context.Context) (leds.Frame, error) {
	log := slog.With("cycle_id", uuid.NewString())
	defer c.enter(ctx, log, Idle)

	c.enter(ctx, log, FetchingConfig)
	doc, err := c.config.Load(ctx)
	if err != nil {
		return nil, c.fail(ctx, log, "config_unavailable", fmt.Errorf("%w: %w", ErrConfigUnavailable, err))
	}
	if err := doc.Validate(); err != nil {
		return nil, c.fail(ctx, log, "config_unavailable", fmt.Errorf("%w: %w", ErrConfigUnavailable, err))
	}
	table, err := doc.Table()
	if err != nil {
		return nil, c.fail(ctx, log, "config_unavailable", fmt.Errorf("%w: %w", ErrConfigUnavailable, err))
	}

	c.enter(ctx, log, ResolvingForecast)
	loc := doc.Location()
	intervals, err := c.cache.GetOrRefresh(ctx, loc, doc.ForecastIntervalMinutes, c.provider.Fetch, c.maxAge)
	if err != nil {
		return nil, c.fail(ctx, log, "forecast_unavailable", fmt.Errorf("%w: %w", ErrForecastUnavailable, err))
	}

	c.enter(ctx, log, MappingColors)
	frame := MapFrame(table, intervals)

	c.enter(ctx, log, DrivingLeds)
	c.driver.SetFrame(ctx, frame)

	metrics.CyclesTotal.WithLabelValues("ok").Inc()
	metrics.LastSuccessTimestamp.Set(float64(c.now().Unix()))
	log.InfoContext(ctx, "refresh cycle complete",
		"location", loc.Key(),
		"interval_minutes", doc.ForecastIntervalMinutes,
		"intervals", len(intervals),
		"leds", len(frame),
	)
	return frame, nil
}

func (c *Cycle) fail(ctx context.Context, log *slog.Logger, outcome string, err error) error {
	metrics.CyclesTotal.WithLabelValues(outcome).Inc()
	log.ErrorContext(ctx, "refresh cycle failed", "error", err)
	return err
}

// MapFrame colors the first leds.Count intervals. An interval above every threshold
// yields an unlit pixel.
func MapFrame(table *colors.Table, intervals []weather.Interval) leds.Frame {
	n := min(len(intervals), leds.Count)
	frame := make(leds.Frame, n)
	for i := 0; i < n; i++ {
		dbz := intervals[i].DBZ
		metrics.LedDBZ.WithLabelValues(strconv.Itoa(i)).Set(dbz)

		rgb, err := table.ColorFor(dbz)
		if err != nil {
			continue
		}
		frame[i] = leds.Pixel{Color: rgb, Lit: true}
	}
	for i := n; i < leds.Count; i++ {
		metrics.LedDBZ.DeleteLabelValues(strconv.Itoa(i))
	}
	return frame
}
