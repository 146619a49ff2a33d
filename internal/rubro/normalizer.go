package rubro

import (
	"log/slog"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

//go:generate mockgen -destination=../mocks/rubro_mock.go -package=mocks github.com/joseph-ayodele/invoice-tracker/internal/rubro Normalizer

// Normalizer resolves raw line categories to catalog entries. The pipeline only
// depends on this interface so a fuzzier matcher can replace Service.
type Normalizer interface {
	NormalizeLines(raws []string) []entity.RubroNormalizationResult
}

// Service normalizes by exact, case-insensitive name match.
type Service struct {
	nomenclator *Nomenclator
	logger      *slog.Logger
}

// NewService wraps a nomenclator; a nil nomenclator never matches.
func NewService(n *Nomenclator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{nomenclator: n, logger: logger}
}

// NormalizeLines returns one result per input, in input order.
func (s *Service) NormalizeLines(raws []string) []entity.RubroNormalizationResult {
	out := make([]entity.RubroNormalizationResult, len(raws))
	matched := 0
	for i, raw := range raws {
		res := entity.RubroNormalizationResult{LineIndex: i, OriginalRubro: raw}
		if e, ok := s.nomenclator.Lookup(raw); ok {
			code, name := e.Code, e.Name
			res.NormalizedCode = &code
			res.NormalizedName = &name
			matched++
		}
		out[i] = res
	}
	s.logger.Debug("rubro.normalize.done", "lines", len(raws), "matched", matched)
	return out
}
