package entity

import "time"

// ConfidenceOverall is the key every provider uses for its headline score.
const ConfidenceOverall = "overall"

// ExtractionMetrics describes one extraction attempt.
type ExtractionMetrics struct {
	Provider       string             `json:"provider"`
	ProcessingTime float64            `json:"processing_time"` // seconds
	Success        bool               `json:"success"`
	Confidence     map[string]float64 `json:"confidence,omitempty"`
	ErrorMessage   string             `json:"error_message,omitempty"`
}

// Overall returns the overall confidence and whether it was reported.
func (m ExtractionMetrics) Overall() (float64, bool) {
	v, ok := m.Confidence[ConfidenceOverall]
	return v, ok
}

// ExtractionRecord is a stored metrics entry.
type ExtractionRecord struct {
	ExtractionMetrics
	Timestamp time.Time `json:"timestamp"`
	Filename  string    `json:"filename"`
}

// ProviderStats aggregates the records of one provider.
type ProviderStats struct {
	TotalExtractions      int     `json:"total_extractions"`
	SuccessfulExtractions int     `json:"successful_extractions"`
	FailedExtractions     int     `json:"failed_extractions"`
	AvgProcessingTime     float64 `json:"avg_processing_time"`
	AvgConfidence         float64 `json:"avg_confidence"`
	SuccessRate           float64 `json:"success_rate"`
}
