package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/i474232898/weatherpi/internal/api/http"
	"github.com/i474232898/weatherpi/internal/config"
	"github.com/i474232898/weatherpi/internal/display"
	"github.com/i474232898/weatherpi/internal/exitcode"
	"github.com/i474232898/weatherpi/internal/leds"
	"github.com/i474232898/weatherpi/internal/metrics"
	"github.com/i474232898/weatherpi/internal/refresh"
	"github.com/i474232898/weatherpi/internal/scheduler"
	"github.com/i474232898/weatherpi/internal/store"
	"github.com/i474232898/weatherpi/internal/weather"
	"github.com/i474232898/weatherpi/internal/weather/providers"
)

func main() {
	os.Exit(run())
}

func run() int {
	once := flag.Bool("once", false, "run a single refresh cycle and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitcode.ConfigError
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if cfg.WeatherAPIKey == "" {
		slog.Warn("RASPBERRY_RAIN_WEATHER_API_KEY is not set; forecast requests will be rejected")
	}

	metrics.Register()

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	cacheStore, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open cache store", "backend", cfg.CacheBackend, "error", err)
		return exitcode.StorageError
	}
	defer closeStore()

	provider := providers.NewAzureMapsProvider(
		providers.HTTPClientConfig{Client: httpClient},
		cfg.WeatherBaseURL,
		cfg.WeatherAPIKey,
		cfg.WeatherClientID,
	)

	var docs display.Provider
	if cfg.ConfigURL != "" {
		docs = display.NewHTTPProvider(httpClient, cfg.ConfigURL)
	} else {
		docs = display.NewFileProvider(cfg.ConfigPath)
	}

	driver, ledState, closeDrivers, err := openDrivers(cfg)
	if err != nil {
		slog.Error("failed to open led drivers", "drivers", cfg.LedDrivers, "error", err)
		return exitcode.ConfigError
	}
	defer closeDrivers()

	cycle := refresh.New(docs, weather.NewCache(cacheStore), provider, driver, cfg.CacheMaxAge)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTPTimeout)
		defer cancel()
		_, err := cycle.Run(ctx)
		return exitcode.For(err)
	}

	sched := scheduler.New(cycle, cfg.RefreshInterval, 2*cfg.HTTPTimeout)
	if err := sched.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		return exitcode.ConfigError
	}
	defer sched.Stop()

	app := httpapi.NewApp()
	httpapi.RegisterRoutes(app, docs, ledState)

	go func() {
		slog.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
	return exitcode.Success
}

func openStore(ctx context.Context, cfg *config.AppConfig) (weather.Store, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.CacheMemory:
		return store.NewMemoryStore(), noop, nil
	case config.CacheSQLite:
		path := cfg.CachePath
		if path == "" {
			path = "weatherpi_cache.db"
		}
		s, err := store.OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		s := store.NewRedisStore(client, store.DefaultRedisKey)
		return s, func() { _ = s.Close() }, nil
	case config.CacheS3:
		s, err := store.NewObjectStore(ctx, cfg.MinIO)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		return store.NewFileStore(cfg.CachePath), noop, nil
	}
}

func openDrivers(cfg *config.AppConfig) (leds.Driver, *leds.MemoryDriver, func(), error) {
	var (
		multi    leds.Multi
		ledState *leds.MemoryDriver
		closers  []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, name := range cfg.LedDrivers {
		switch name {
		case config.DriverMemory:
			ledState = leds.NewMemoryDriver(leds.Count)
			multi = append(multi, ledState)
		case config.DriverGPIO:
			d, err := leds.OpenGPIO(cfg.LedPins)
			if err != nil {
				closeAll()
				return nil, nil, nil, err
			}
			multi = append(multi, d)
		case config.DriverKafka:
			d := leds.NewKafkaDriver(cfg.KafkaBroker, cfg.KafkaTopic, httpapi.ServiceName)
			multi = append(multi, d)
			closers = append(closers, func() { _ = d.Close() })
		}
	}

	slog.Info("led drivers ready", "drivers", cfg.LedDrivers)
	return multi, ledState, closeAll, nil
}
