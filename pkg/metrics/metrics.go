package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics counts the business outcomes of the checkout protocol.
type CheckoutMetrics struct {
	SessionsStarted   *prometheus.CounterVec
	PaymentsConfirmed *prometheus.CounterVec
	PaymentsDeclined  *prometheus.CounterVec
	StockConflicts    prometheus.Counter
}

// NewCheckoutMetrics registers the checkout counters with the default
// registry. Call once per process.
func NewCheckoutMetrics() *CheckoutMetrics {
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenmarket",
		Subsystem: "checkout",
		Name:      "sessions_started_total",
		Help:      "Payment provider sessions opened.",
	}, []string{"provider"})
	confirmed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenmarket",
		Subsystem: "checkout",
		Name:      "payments_confirmed_total",
		Help:      "Payments confirmed as approved by a provider.",
	}, []string{"provider"})
	declined := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenmarket",
		Subsystem: "checkout",
		Name:      "payments_declined_total",
		Help:      "Payments declined at confirmation.",
	}, []string{"provider"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "greenmarket",
		Subsystem: "checkout",
		Name:      "stock_conflicts_total",
		Help:      "Cart lines that exceeded live stock at validation or finalization.",
	})

	prometheus.MustRegister(sessions, confirmed, declined, conflicts)
	return &CheckoutMetrics{
		SessionsStarted:   sessions,
		PaymentsConfirmed: confirmed,
		PaymentsDeclined:  declined,
		StockConflicts:    conflicts,
	}
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
