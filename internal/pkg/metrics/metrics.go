package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PriceLookups counts resolved pair lookups by the source that served them.
	PriceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_price_lookups_total",
		Help: "Resolved price lookups by source.",
	}, []string{"source"})

	// PriceLookupFailures counts lookups that degraded to zero.
	PriceLookupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_price_lookup_failures_total",
		Help: "Price lookups that yielded no price, by reason.",
	}, []string{"reason"})

	// PoolQuoteAttempts counts individual AMM pool queries by version and outcome.
	PoolQuoteAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_pool_quote_attempts_total",
		Help: "AMM pool quote attempts by exchange version and outcome.",
	}, []string{"version", "outcome"})

	// NotificationsSent counts delivered webhook notifications.
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_notifications_sent_total",
		Help: "Webhook notifications delivered.",
	})
)
