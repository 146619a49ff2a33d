package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

// Collectors are the Prometheus series fed by Instrumented.
type Collectors struct {
	// Extraction attempts by provider and outcome
	Extractions *prometheus.CounterVec

	// Provider call latency
	Duration *prometheus.HistogramVec

	// Last overall confidence reported per provider
	Confidence *prometheus.GaugeVec
}

// NewCollectors registers the extraction series on reg (prometheus.DefaultRegisterer
// in the daemon, a fresh registry in tests).
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		Extractions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_extractions_total",
			Help: "Total invoice extraction attempts by provider and outcome",
		}, []string{"provider", "outcome"}),

		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "invoice_extraction_duration_seconds",
			Help:    "Duration of provider extraction calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 180},
		}, []string{"provider"}),

		Confidence: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "invoice_extraction_confidence",
			Help: "Overall confidence of the latest successful extraction by provider",
		}, []string{"provider"}),
	}
}

// Observe records one attempt.
func (c *Collectors) Observe(m entity.ExtractionMetrics) {
	if c == nil {
		return
	}
	outcome := constants.OutcomeSuccess
	if !m.Success {
		outcome = constants.OutcomeFailure
	}
	c.Extractions.WithLabelValues(m.Provider, outcome).Inc()
	c.Duration.WithLabelValues(m.Provider).Observe(m.ProcessingTime)
	if v, ok := m.Overall(); ok && m.Success {
		c.Confidence.WithLabelValues(m.Provider).Set(v)
	}
}

// Instrumented feeds every recorded attempt to Prometheus before storing it.
type Instrumented struct {
	Sink
	collectors *Collectors
}

func NewInstrumented(next Sink, c *Collectors) *Instrumented {
	return &Instrumented{Sink: next, collectors: c}
}

func (i *Instrumented) Record(ctx context.Context, m entity.ExtractionMetrics, filename string) {
	i.collectors.Observe(m)
	i.Sink.Record(ctx, m, filename)
}
