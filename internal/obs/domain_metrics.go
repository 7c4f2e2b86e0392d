package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Domain groups the Prometheus collectors for the order flow. It
// satisfies the order service's Metrics interface.
type Domain struct {
	OrdersFired     *prometheus.CounterVec
	PricingDuration prometheus.Histogram
	CombosApplied   prometheus.Counter
}

// NewDomain registers and returns the domain collectors.
func NewDomain(namespace string, reg prometheus.Registerer) *Domain {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	d := &Domain{
		OrdersFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_fired_total",
			Help:      "Orders sent to the kitchen, labelled by order type.",
		}, []string{"type"}),
		PricingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_duration_seconds",
			Help:      "Latency of a full cart pricing pass.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		CombosApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "combos_applied_total",
			Help:      "Combo promotion instances allocated while pricing.",
		}),
	}
	registerCollector(reg, d.OrdersFired, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			d.OrdersFired = v
		}
	})
	registerCollector(reg, d.PricingDuration, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Histogram); ok {
			d.PricingDuration = v
		}
	})
	registerCollector(reg, d.CombosApplied, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			d.CombosApplied = v
		}
	})
	return d
}

// OrderFired counts one order reaching the kitchen.
func (d *Domain) OrderFired(orderType string) {
	d.OrdersFired.WithLabelValues(orderType).Inc()
}

// PricingComputed records one pricing pass and any combos it applied.
func (d *Domain) PricingComputed(seconds float64, comboInstances int) {
	d.PricingDuration.Observe(seconds)
	if comboInstances > 0 {
		d.CombosApplied.Add(float64(comboInstances))
	}
}

func registerCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
