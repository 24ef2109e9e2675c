package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pricing groups the collectors of the menu pricing path. A nil *Pricing is
// valid and records nothing.
type Pricing struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	applied  *prometheus.CounterVec
}

func NewPricing(reg prometheus.Registerer) *Pricing {
	f := promauto.With(reg)
	return &Pricing{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menu",
			Name:      "pricing_requests_total",
			Help:      "Priced menu reads by outcome.",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "menu",
			Name:      "pricing_duration_seconds",
			Help:      "Time spent building a priced menu.",
			Buckets:   prometheus.DefBuckets,
		}),
		applied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menu",
			Name:      "offers_applied_total",
			Help:      "Item prices stamped, by the offer pool that won.",
		}, []string{"scope"}),
	}
}

func (m *Pricing) ObserveRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Pricing) OfferApplied(scope string) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(scope).Inc()
}
