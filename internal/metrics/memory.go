package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

// MemoryStore keeps records in process. Used by tests and when no DSN is configured.
type MemoryStore struct {
	mu      sync.Mutex
	records []entity.ExtractionRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Record(_ context.Context, m entity.ExtractionMetrics, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, entity.ExtractionRecord{
		ExtractionMetrics: m,
		Timestamp:         s.now().UTC(),
		Filename:          filename,
	})
}

func (s *MemoryStore) StatsByProvider(context.Context) (map[string]entity.ProviderStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := make([]entity.ExtractionMetrics, len(s.records))
	for i, r := range s.records {
		ms[i] = r.ExtractionMetrics
	}
	return aggregate(ms), nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]entity.ExtractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if limit > 0 && len(s.records) > limit {
		start = len(s.records) - limit
	}
	out := make([]entity.ExtractionRecord, len(s.records)-start)
	copy(out, s.records[start:])
	return out, nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
