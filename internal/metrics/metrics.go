// Package metrics exposes Prometheus instrumentation for the ledger and the
// settlement orchestrator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/payment"
)

const namespace = "payhive"

var (
	_ ledger.Observer  = (*Recorder)(nil)
	_ payment.Observer = (*Recorder)(nil)
)

// Recorder collects ledger and payment metrics into its own registry.
type Recorder struct {
	registry *prometheus.Registry

	approvals          *prometheus.CounterVec
	expensesAuthorized prometheus.Counter
	planTransfers      prometheus.Histogram
	payments           *prometheus.CounterVec
	gatewayLatency     *prometheus.HistogramVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		approvals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approvals_total",
			Help:      "Expense approvals recorded, by result.",
		}, []string{"result"}),
		expensesAuthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_authorized_total",
			Help:      "Expenses that reached approval quorum.",
		}),
		planTransfers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_plan_transfers",
			Help:      "Number of transfers in each computed settlement plan.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Settlement attempts, by rail and resulting status.",
		}, []string{"rail", "status"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Latency of payment gateway calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"rail", "operation", "outcome"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.approvals,
		r.expensesAuthorized,
		r.planTransfers,
		r.payments,
		r.gatewayLatency,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) ApprovalRecorded(result ledger.ApprovalResult) {
	r.approvals.WithLabelValues(string(result)).Inc()
}

func (r *Recorder) ExpenseAuthorized() {
	r.expensesAuthorized.Inc()
}

func (r *Recorder) PlanComputed(transfers int) {
	r.planTransfers.Observe(float64(transfers))
}

func (r *Recorder) PaymentAttempted(rail models.Rail, status models.PaymentStatus) {
	if rail == "" {
		rail = "none"
	}
	r.payments.WithLabelValues(string(rail), string(status)).Inc()
}

func (r *Recorder) GatewayCall(rail models.Rail, operation string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(payment.Classify(err).Kind)
	}
	r.gatewayLatency.WithLabelValues(string(rail), operation, outcome).Observe(d.Seconds())
}
