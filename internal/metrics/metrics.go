package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Refresh cycle outcomes (label: outcome = ok, config_unavailable, forecast_unavailable).
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "weatherpi_refresh_cycles_total", Help: "Refresh cycles by outcome"},
		[]string{"outcome"},
	)
	LastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "weatherpi_last_success_timestamp_seconds", Help: "Unix time of the last refresh cycle that drove the LEDs"},
	)

	// Cache lookups (label: result = hit, miss, expired, corrupt, mismatch).
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "weatherpi_forecast_cache_lookups_total", Help: "Forecast cache lookups by result"},
		[]string{"result"},
	)

	// Upstream calls (label: result = ok, error, circuit_open).
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "weatherpi_upstream_requests_total", Help: "Weather provider requests by result"},
		[]string{"provider", "result"},
	)

	// Forecast dbz currently displayed per LED (label: led = 0..3).
	LedDBZ = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "weatherpi_led_dbz", Help: "Forecast reflectivity mapped onto each LED"},
		[]string{"led"},
	)
)

// Register adds every collector to the default registry. Call it once from main.
func Register() {
	prometheus.MustRegister(CyclesTotal, LastSuccessTimestamp, CacheLookupsTotal, UpstreamRequestsTotal, LedDBZ)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
