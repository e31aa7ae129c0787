// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Gateway metrics
	OracleCalls   *prometheus.CounterVec
	OracleLatency *prometheus.HistogramVec

	// Leaderboard metrics
	LeaderboardBuilds    *prometheus.CounterVec
	LeaderboardDuration  *prometheus.HistogramVec
	LeaderboardSkipped   *prometheus.CounterVec
	PriceTapeWriteErrors prometheus.Counter

	// Ledger metrics
	PicksAdded           prometheus.Counter
	WalletsRegistered    prometheus.Counter
	IntakeOutcomes       *prometheus.CounterVec
	RegistrationOutcomes *prometheus.CounterVec
	StoreErrors          *prometheus.CounterVec

	// Bot metrics
	CommandsHandled *prometheus.CounterVec

	// Health metrics
	LastUpdateHandled prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sniper_bowl"
	}

	return &Metrics{
		OracleCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Total number of gateway calls by call and outcome",
		}, []string{"call", "outcome"}),
		OracleLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "call_latency_seconds",
			Help:      "Gateway call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"call"}),

		LeaderboardBuilds: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "builds_total",
			Help:      "Total number of leaderboard builds by kind and outcome",
		}, []string{"kind", "outcome"}),
		LeaderboardDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "build_duration_seconds",
			Help:      "Leaderboard build duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"kind"}),
		LeaderboardSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "entries_skipped_total",
			Help:      "Total number of ledger entries skipped for missing price data",
		}, []string{"kind"}),
		PriceTapeWriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "price_tape_write_errors_total",
			Help:      "Total number of failed price tape writes",
		}),

		PicksAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "picks_added_total",
			Help:      "Total number of picks recorded",
		}),
		WalletsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "wallets_registered_total",
			Help:      "Total number of wallets registered",
		}),
		IntakeOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "intake_outcomes_total",
			Help:      "Total number of pick intake attempts by outcome",
		}, []string{"outcome"}),
		RegistrationOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "registration_outcomes_total",
			Help:      "Total number of registration submissions by outcome",
		}, []string{"outcome"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "store_errors_total",
			Help:      "Total number of ledger store errors by operation",
		}, []string{"operation"}),

		CommandsHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "commands_handled_total",
			Help:      "Total number of chat commands handled",
		}, []string{"command"}),

		LastUpdateHandled: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_update_handled_timestamp",
			Help:      "Unix timestamp of the last chat update handled",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordOracleCall records a gateway call outcome and its latency.
func RecordOracleCall(call, outcome string, seconds float64) {
	DefaultMetrics.OracleCalls.WithLabelValues(call, outcome).Inc()
	DefaultMetrics.OracleLatency.WithLabelValues(call).Observe(seconds)
}

// RecordLeaderboardBuild records a leaderboard build.
func RecordLeaderboardBuild(kind, outcome string, seconds float64) {
	DefaultMetrics.LeaderboardBuilds.WithLabelValues(kind, outcome).Inc()
	DefaultMetrics.LeaderboardDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordLeaderboardSkipped counts entries dropped from a render.
func RecordLeaderboardSkipped(kind string, n int) {
	DefaultMetrics.LeaderboardSkipped.WithLabelValues(kind).Add(float64(n))
}

// RecordPriceTapeError counts a failed price tape write.
func RecordPriceTapeError() {
	DefaultMetrics.PriceTapeWriteErrors.Inc()
}

// RecordIntake records a pick intake outcome.
func RecordIntake(outcome string) {
	DefaultMetrics.IntakeOutcomes.WithLabelValues(outcome).Inc()
	if outcome == "added" {
		DefaultMetrics.PicksAdded.Inc()
	}
}

// RecordRegistration records a registration outcome.
func RecordRegistration(outcome string) {
	DefaultMetrics.RegistrationOutcomes.WithLabelValues(outcome).Inc()
	if outcome == "registered" {
		DefaultMetrics.WalletsRegistered.Inc()
	}
}

// RecordStoreError counts a ledger store failure.
func RecordStoreError(operation string) {
	DefaultMetrics.StoreErrors.WithLabelValues(operation).Inc()
}

// RecordCommand counts a handled chat command and stamps the health gauge.
func RecordCommand(command string, unixSeconds int64) {
	DefaultMetrics.CommandsHandled.WithLabelValues(command).Inc()
	DefaultMetrics.LastUpdateHandled.Set(float64(unixSeconds))
}
