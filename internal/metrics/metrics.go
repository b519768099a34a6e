// Package metrics collects and exposes Prometheus metrics for the
// inventory service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the service layer records outcomes through.
type Recorder interface {
	RecordSale(units int64)
	RecordUndo(units int64)
	RecordInsufficientStock()
	RecordLowStock()
}

// Collector implements Recorder on top of Prometheus counters.
type Collector struct {
	unitsSold         prometheus.Counter
	unitsRestored     prometheus.Counter
	insufficientStock prometheus.Counter
	lowStock          prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		unitsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teashop_units_sold_total",
			Help: "Total units recorded as sold.",
		}),
		unitsRestored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teashop_units_restored_total",
			Help: "Total units restored by sale undos.",
		}),
		insufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teashop_insufficient_stock_total",
			Help: "Sales rejected because stock was insufficient.",
		}),
		lowStock: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teashop_low_stock_events_total",
			Help: "Times an item dropped to or below the low-stock threshold.",
		}),
	}
	reg.MustRegister(c.unitsSold, c.unitsRestored, c.insufficientStock, c.lowStock)
	return c
}

func (c *Collector) RecordSale(units int64) {
	c.unitsSold.Add(float64(units))
}

func (c *Collector) RecordUndo(units int64) {
	c.unitsRestored.Add(float64(units))
}

func (c *Collector) RecordInsufficientStock() {
	c.insufficientStock.Inc()
}

func (c *Collector) RecordLowStock() {
	c.lowStock.Inc()
}

// Handler returns the HTTP handler exposing the registry's metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
