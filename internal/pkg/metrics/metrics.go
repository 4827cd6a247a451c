package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SalesRecorded     *prometheus.CounterVec
	LedgerAdjustments *prometheus.CounterVec
	InventoryWarnings *prometheus.CounterVec
	StockOrders       *prometheus.CounterVec
}

// New registers every collector on reg under the given prefix.
func New(prefix string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		SalesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_sales_recorded_total",
			Help: "Sales recorded, labeled by whether an attribute was chosen",
		}, []string{"with_attribute"}),
		LedgerAdjustments: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_ledger_adjustments_total",
			Help: "Variant inventory adjustments by direction and result",
		}, []string{"direction", "result"}),
		InventoryWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_inventory_warnings_total",
			Help: "Non-fatal inventory inconsistencies by reason",
		}, []string{"reason"}),
		StockOrders: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_stock_orders_total",
			Help: "Stock orders by lifecycle event",
		}, []string{"event"}),
	}
}

func (m *Metrics) ObserveSale(withAttribute bool) {
	if m == nil {
		return
	}
	label := "false"
	if withAttribute {
		label = "true"
	}
	m.SalesRecorded.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveAdjustment(direction string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.LedgerAdjustments.WithLabelValues(direction, result).Inc()
}

func (m *Metrics) ObserveWarning(reason string) {
	if m == nil {
		return
	}
	m.InventoryWarnings.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveStockOrder(event string) {
	if m == nil {
		return
	}
	m.StockOrders.WithLabelValues(event).Inc()
}
