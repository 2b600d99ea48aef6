package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherpi/internal/weather"
)

// DefaultAzureMapsBaseURL is the public Azure Maps endpoint.
const DefaultAzureMapsBaseURL = "https://atlas.microsoft.com"

// maxUpstreamMinutes is the coarsest granularity the minute forecast serves.
const maxUpstreamMinutes = 15

// AzureMapsProvider implements weather.Provider for the Azure Maps minute forecast.
type AzureMapsProvider struct {
	name     string
	apiKey   string
	clientID string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewAzureMapsProvider creates the provider. baseURL may be empty to use DefaultAzureMapsBaseURL.
func NewAzureMapsProvider(cfg HTTPClientConfig, baseURL, apiKey, clientID string) *AzureMapsProvider {
	if baseURL == "" {
		baseURL = DefaultAzureMapsBaseURL
	}
	return &AzureMapsProvider{
		name:     "azuremaps",
		apiKey:   apiKey,
		clientID: clientID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpCfg:  cfg,
		circuit:  newCircuitBreaker("azuremaps", cfg),
	}
}

func (p *AzureMapsProvider) Name() string {
	return p.name
}

// Fetch returns the dbz forecast for loc in steps of minutes, soonest first.
// A 30-minute request is served by averaging pairs of 15-minute intervals.
func (p *AzureMapsProvider) Fetch(ctx context.Context, loc weather.Location, minutes int) ([]weather.Interval, error) {
	if err := weather.ValidateIntervalMinutes(minutes); err != nil {
		return nil, err
	}

	requestMinutes := min(minutes, maxUpstreamMinutes)

	values := url.Values{}
	values.Set("api-version", "1.1")
	values.Set("query", fmt.Sprintf("%f,%f", loc.Lat, loc.Lon))
	values.Set("interval", strconv.Itoa(requestMinutes))
	values.Set("subscription-key", p.apiKey)

	u := fmt.Sprintf("%s/weather/forecast/minute/json?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.clientID != "" {
		req.Header.Set("x-ms-client-id", p.clientID)
	}

	slog.DebugContext(ctx, "requesting minute forecast", "provider", p.name, "location", loc.Key(), "interval", requestMinutes)

	resp, err := doRequest(ctx, p.name, p.httpCfg, p.circuit, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Intervals []struct {
			StartTime string  `json:"startTime"`
			Minute    int     `json:"minute"`
			DBZ       float64 `json:"dbz"`
		} `json:"intervals"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", weather.ErrUpstreamUnavailable, err)
	}

	intervals := make([]weather.Interval, 0, len(payload.Intervals))
	for _, it := range payload.Intervals {
		ts, err := time.Parse(time.RFC3339, it.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: interval %d startTime %q: %w", weather.ErrUpstreamUnavailable, it.Minute, it.StartTime, err)
		}
		intervals = append(intervals, weather.Interval{Timestamp: ts, DBZ: it.DBZ})
	}

	if minutes != requestMinutes {
		intervals = weather.AggregatePairs(intervals)
	}

	slog.DebugContext(ctx, "minute forecast received", "provider", p.name, "intervals", len(intervals))
	return intervals, nil
}
