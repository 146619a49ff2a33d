// Package extractor holds the invoice extraction providers, the factory that
// picks one, and the wrappers that time and back them up.
package extractor

import (
	"context"
	"time"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm"
)

type (
	Extractor           = llm.InvoiceExtractor
	Request             = llm.ExtractRequest
	ConfidenceEstimator = llm.ConfidenceEstimator
)

// Measured runs an extraction and always reports metrics, also on failure.
type Measured interface {
	ExtractWithMetrics(ctx context.Context, req Request) (entity.RawExtraction, entity.ExtractionMetrics, error)
	ProviderName() string
}

// ExtractWithMetrics times one extraction. On failure the metrics carry the
// error message and the original error is returned unchanged. Confidence is
// only computed for successful runs of extractors implementing ConfidenceEstimator.
func ExtractWithMetrics(ctx context.Context, e Extractor, req Request) (entity.RawExtraction, entity.ExtractionMetrics, error) {
	start := time.Now()
	raw, err := e.Extract(ctx, req)
	m := entity.ExtractionMetrics{
		Provider:       e.ProviderName(),
		ProcessingTime: time.Since(start).Seconds(),
		Success:        err == nil,
	}
	if err != nil {
		m.ErrorMessage = err.Error()
		return nil, m, err
	}
	if ce, ok := e.(ConfidenceEstimator); ok {
		m.Confidence = ce.EstimateConfidence(raw)
	}
	return raw, m, nil
}

type measured struct {
	Extractor
}

// Measure adapts a plain extractor to Measured.
func Measure(e Extractor) Measured {
	if m, ok := e.(Measured); ok {
		return m
	}
	return measured{e}
}

func (m measured) ExtractWithMetrics(ctx context.Context, req Request) (entity.RawExtraction, entity.ExtractionMetrics, error) {
	return ExtractWithMetrics(ctx, m.Extractor, req)
}
