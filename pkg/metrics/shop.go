package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics records order flow and side-channel health.
type ShopMetrics struct {
	ordersRecorded  *prometheus.CounterVec
	orderRejected   *prometheus.CounterVec
	mailIntents     prometheus.Counter
	auditFailures   *prometheus.CounterVec
	publishFailures prometheus.Counter
	catalogReload   *prometheus.HistogramVec
}

// NewShopMetrics registers the shop metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	ordersRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storeshop_orders_recorded_total",
		Help: "Orders persisted, by sink.",
	}, []string{"sink"})
	orderRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storeshop_orders_rejected_total",
		Help: "Order submissions rejected before persistence, by reason.",
	}, []string{"reason"})
	mailIntents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storeshop_mail_intents_total",
		Help: "Mail intents composed for special products.",
	})
	auditFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storeshop_audit_failures_total",
		Help: "Audit log appends that failed, by target.",
	}, []string{"target"})
	publishFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storeshop_event_publish_failures_total",
		Help: "Order events that could not be published.",
	})
	catalogReload := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storeshop_catalog_reload_seconds",
		Help:    "Duration of catalog reloads in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(ordersRecorded, orderRejected, mailIntents, auditFailures, publishFailures, catalogReload)
	return &ShopMetrics{
		ordersRecorded:  ordersRecorded,
		orderRejected:   orderRejected,
		mailIntents:     mailIntents,
		auditFailures:   auditFailures,
		publishFailures: publishFailures,
		catalogReload:   catalogReload,
	}
}

// IncOrderRecorded counts a persisted order for the named sink.
func (m *ShopMetrics) IncOrderRecorded(sink string) {
	if m == nil || m.ordersRecorded == nil {
		return
	}
	m.ordersRecorded.WithLabelValues(normalizeLabel(sink)).Inc()
}

// IncOrderRejected counts a submission refused by validation.
func (m *ShopMetrics) IncOrderRejected(reason string) {
	if m == nil || m.orderRejected == nil {
		return
	}
	m.orderRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncMailIntent counts a composed mail intent.
func (m *ShopMetrics) IncMailIntent() {
	if m == nil || m.mailIntents == nil {
		return
	}
	m.mailIntents.Inc()
}

// IncAuditFailure counts a failed audit append.
func (m *ShopMetrics) IncAuditFailure(target string) {
	if m == nil || m.auditFailures == nil {
		return
	}
	m.auditFailures.WithLabelValues(normalizeLabel(target)).Inc()
}

// IncPublishFailure counts an order event that was dropped.
func (m *ShopMetrics) IncPublishFailure() {
	if m == nil || m.publishFailures == nil {
		return
	}
	m.publishFailures.Inc()
}

// ObserveCatalogReload records how long a catalog reload took.
func (m *ShopMetrics) ObserveCatalogReload(duration time.Duration, err error) {
	if m == nil || m.catalogReload == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "partial"
	}
	m.catalogReload.WithLabelValues(outcome).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
