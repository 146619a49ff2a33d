package llm

import (
	"context"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

//go:generate mockgen -destination=../mocks/extractor_mock.go -package=mocks github.com/joseph-ayodele/invoice-tracker/internal/llm InvoiceExtractor

// ExtractRequest is what a provider receives. OCRText is empty when OCR was
// skipped; providers that need it must reject the request.
type ExtractRequest struct {
	Data     []byte
	Filename string
	OCRText  string
}

// InvoiceExtractor is implemented by every extraction provider.
type InvoiceExtractor interface {
	Extract(ctx context.Context, req ExtractRequest) (entity.RawExtraction, error)
	ProviderName() string
}

// ConfidenceEstimator is an optional hook: providers that can score their own
// output implement it. A nil map means no score.
type ConfidenceEstimator interface {
	EstimateConfidence(raw entity.RawExtraction) map[string]float64
}

// Chat-completions wire types.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Temperature    float32         `json:"temperature"`
	Messages       []ChatMessage   `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
