package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/set-night/greenqash/internal/domain"
)

var (
	// ClaimsTotal counts claim attempts by outcome
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenqash_claims_total",
			Help: "Reward claim attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CreditedAmount sums credited minor units by category
	CreditedAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenqash_credited_amount_total",
			Help: "Amount credited to earnings accounts, in minor units",
		},
		[]string{"category"},
	)

	CatalogStaleServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greenqash_catalog_stale_served_total",
			Help: "Catalog listings served from the stale cache during a store outage",
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Outcome labels a claim result for ClaimsTotal.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, domain.ErrTaskNotFound):
		return "task_not_found"
	case errors.Is(err, domain.ErrTaskInactive):
		return "task_inactive"
	case errors.Is(err, domain.ErrCreditPending):
		return "credit_pending"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
