// Package metrics stores per-extraction metrics and aggregates them per provider.
package metrics

import (
	"context"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

//go:generate mockgen -destination=../mocks/metrics_mock.go -package=mocks github.com/joseph-ayodele/invoice-tracker/internal/metrics Sink

// Sink is an append-only log of extraction attempts. Record is best effort:
// storage failures are logged, never returned to the extraction path.
type Sink interface {
	Record(ctx context.Context, m entity.ExtractionMetrics, filename string)
	StatsByProvider(ctx context.Context) (map[string]entity.ProviderStats, error)
	// Recent returns at most limit records, oldest first. limit <= 0 returns all.
	Recent(ctx context.Context, limit int) ([]entity.ExtractionRecord, error)
	Clear(ctx context.Context) error
}

type accumulator struct {
	total, ok     int
	timeSum, conf float64
}

func (a *accumulator) add(m entity.ExtractionMetrics) {
	a.total++
	if m.Success {
		a.ok++
	}
	a.timeSum += m.ProcessingTime
	if v, ok := m.Overall(); ok {
		a.conf += v
	}
}

// stats divides by the total number of records, so attempts without a
// confidence score pull the average down.
func (a *accumulator) stats() entity.ProviderStats {
	if a.total == 0 {
		return entity.ProviderStats{}
	}
	n := float64(a.total)
	return entity.ProviderStats{
		TotalExtractions:      a.total,
		SuccessfulExtractions: a.ok,
		FailedExtractions:     a.total - a.ok,
		AvgProcessingTime:     a.timeSum / n,
		AvgConfidence:         a.conf / n,
		SuccessRate:           float64(a.ok) / n,
	}
}

func aggregate(ms []entity.ExtractionMetrics) map[string]entity.ProviderStats {
	acc := make(map[string]*accumulator)
	for _, m := range ms {
		a, ok := acc[m.Provider]
		if !ok {
			a = &accumulator{}
			acc[m.Provider] = a
		}
		a.add(m)
	}
	out := make(map[string]entity.ProviderStats, len(acc))
	for p, a := range acc {
		out[p] = a.stats()
	}
	return out
}
