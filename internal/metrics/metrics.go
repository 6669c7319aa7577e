package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload outcomes.
const (
	OutcomeStored      = "stored"
	OutcomeDenied      = "denied"
	OutcomeRejected    = "rejected"
	OutcomeCollision   = "collision"
	OutcomePartial     = "partial"
	OutcomeStoreFailed = "store_failed"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	UploadsTotal     *prometheus.CounterVec
	UploadBytesTotal prometheus.Counter
	CompletionsTotal *prometheus.CounterVec
	ReconciledTotal  *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UploadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "upload",
			Name:      "requests_total",
			Help:      "Upload attempts by outcome.",
		}, []string{"outcome"}),
		UploadBytesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "upload",
			Name:      "bytes_total",
			Help:      "Bytes written to the object store for stored uploads.",
		}),
		CompletionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "chat",
			Name:      "completions_total",
			Help:      "Streamed completions by model and outcome (ok, error).",
		}, []string{"model", "outcome"}),
		ReconciledTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "upload",
			Name:      "reconciled_total",
			Help:      "Partial uploads revisited by the reconciler, by result (completed, failed).",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveUpload(outcome string, size int64) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeStored {
		m.UploadBytesTotal.Add(float64(size))
	}
}

func (m *Metrics) ObserveCompletion(model string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.CompletionsTotal.WithLabelValues(model, outcome).Inc()
}

func (m *Metrics) ObserveReconcile(completed bool) {
	if m == nil {
		return
	}
	result := "completed"
	if !completed {
		result = "failed"
	}
	m.ReconciledTotal.WithLabelValues(result).Inc()
}
