package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weatherpi/internal/display"
	"github.com/i474232898/weatherpi/internal/leds"
	"github.com/i474232898/weatherpi/internal/store"
	"github.com/i474232898/weatherpi/internal/weather/providers"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheS3     = "s3"
)

// LED drivers.
const (
	DriverMemory = "memory"
	DriverGPIO   = "gpio"
	DriverKafka  = "kafka"
)

// ErrInvalidEnvVar reports an environment variable that could not be used.
type ErrInvalidEnvVar struct {
	Key   string
	Value string
	Err   error
}

func (e *ErrInvalidEnvVar) Error() string {
	return fmt.Sprintf("invalid %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ErrInvalidEnvVar) Unwrap() error { return e.Err }

type AppConfig struct {
	// Azure Maps credentials.
	WeatherAPIKey   string
	WeatherClientID string
	WeatherBaseURL  string

	// Display document source. ConfigURL wins when both are set.
	ConfigURL  string
	ConfigPath string

	CacheBackend string
	CachePath    string
	CacheMaxAge  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinIO store.MinIOConfig

	LedDrivers  []string
	LedPins     [][3]int
	KafkaBroker []string
	KafkaTopic  string

	RefreshInterval time.Duration
	HTTPTimeout     time.Duration
	Port            string
	LogLevel        slog.Level
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the current environment only.
func FromEnv() (*AppConfig, error) {
	var err error
	cfg := &AppConfig{
		WeatherAPIKey:   os.Getenv("RASPBERRY_RAIN_WEATHER_API_KEY"),
		WeatherClientID: os.Getenv("RASPBERRY_RAIN_WEATHER_MS_ID"),
		WeatherBaseURL:  getenvDefault("WEATHER_BASE_URL", providers.DefaultAzureMapsBaseURL),
		ConfigURL:       os.Getenv("CONFIG_URL"),
		ConfigPath:      getenvDefault("CONFIG_PATH", display.DefaultConfigFile),
		CacheBackend:    strings.ToLower(getenvDefault("CACHE_BACKEND", CacheFile)),
		CachePath:       os.Getenv("CACHE_PATH"),
		RedisAddr:       getenvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		MinIO: store.MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getenvDefault("MINIO_BUCKET", "weatherpi"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		},
		KafkaBroker: splitList(getenvDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:  getenvDefault("KAFKA_TOPIC_FRAMES", "weatherpi.frames"),
		Port:        getenvDefault("PORT", "8080"),
	}

	if cfg.RedisDB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	switch cfg.CacheBackend {
	case CacheFile, CacheMemory, CacheSQLite, CacheRedis, CacheS3:
	default:
		return nil, &ErrInvalidEnvVar{Key: "CACHE_BACKEND", Value: cfg.CacheBackend, Err: fmt.Errorf("unknown backend")}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, &ErrInvalidEnvVar{Key: "LOG_LEVEL", Value: os.Getenv("LOG_LEVEL"), Err: err}
	}

	cfg.LedDrivers = splitList(strings.ToLower(getenvDefault("LED_DRIVER", DriverMemory)))
	for _, d := range cfg.LedDrivers {
		switch d {
		case DriverMemory, DriverKafka:
		case DriverGPIO:
			if cfg.LedPins, err = loadPins(); err != nil {
				return nil, err
			}
		default:
			return nil, &ErrInvalidEnvVar{Key: "LED_DRIVER", Value: d, Err: fmt.Errorf("unknown driver")}
		}
	}

	return cfg, nil
}

func loadPins() ([][3]int, error) {
	pins := make([][3]int, 0, leds.Count)
	for i := 0; i < leds.Count; i++ {
		key := fmt.Sprintf("RASPBERRY_RAIN_PINS_LED_%d", i)
		v := os.Getenv(key)
		if v == "" {
			return nil, &ErrInvalidEnvVar{Key: key, Err: fmt.Errorf("required for the gpio driver")}
		}
		p, err := leds.ParsePins(v)
		if err != nil {
			return nil, &ErrInvalidEnvVar{Key: key, Value: v, Err: err}
		}
		pins = append(pins, p)
	}
	return pins, nil
}

// HasDriver reports whether the named LED driver is enabled.
func (c *AppConfig) HasDriver(name string) bool {
	for _, d := range c.LedDrivers {
		if d == name {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ErrInvalidEnvVar{Key: key, Value: v, Err: err}
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ErrInvalidEnvVar{Key: key, Value: v, Err: err}
	}
	return d, nil
}
