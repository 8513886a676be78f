package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsProcessed tracks commands handled per platform and keyword
	CommandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tipbot_commands_processed_total",
			Help: "Total number of commands processed",
		},
		[]string{"platform", "keyword", "status"},
	)

	// CommandDuration tracks end-to-end command handling latency
	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tipbot_command_duration_seconds",
			Help:    "Command handling latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"keyword"},
	)

	// LedgerCalls tracks outbound ledger API calls
	LedgerCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tipbot_ledger_calls_total",
			Help: "Total number of ledger API calls",
		},
		[]string{"operation", "status"},
	)

	// LedgerLatency tracks ledger API call latency
	LedgerLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tipbot_ledger_latency_seconds",
			Help:    "Ledger API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ChallengesIssued tracks export challenges created
	ChallengesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tipbot_export_challenges_issued_total",
			Help: "Total number of key-export challenges issued",
		},
	)

	// ChallengesConfirmed tracks export challenges consumed by a matching code
	ChallengesConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tipbot_export_challenges_confirmed_total",
			Help: "Total number of key-export challenges confirmed",
		},
	)

	// ChallengesExpired tracks export challenges removed by TTL expiry
	ChallengesExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tipbot_export_challenges_expired_total",
			Help: "Total number of key-export challenges expired",
		},
	)
)
