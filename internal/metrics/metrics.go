// AngelaMos | 2026
// metrics.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_claims_total",
			Help: "Daily earning claims by outcome",
		},
		[]string{"result"},
	)

	PlanPurchasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewards_plan_purchases_total",
			Help: "Successful plan purchases",
		},
	)

	CommissionsPaidTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_commissions_paid_total",
			Help: "Commission payouts by referral level and event type",
		},
		[]string{"level", "event_type"},
	)

	CommissionLevelFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_commission_level_failures_total",
			Help: "Commission levels that failed and were left for redelivery",
		},
		[]string{"level"},
	)

	FanoutRedeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewards_fanout_redeliveries_total",
			Help: "Reward events re-processed by the redelivery worker",
		},
	)

	ClaimDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rewards_claim_duration_seconds",
			Help:    "Latency of the atomic claim transaction",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Claim outcome label values.
const (
	ResultSuccess  = "success"
	ResultTooEarly = "too_early"
	ResultExpired  = "expired"
	ResultConflict = "conflict"
	ResultError    = "error"
)
