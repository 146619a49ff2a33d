package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm"
)

func (c *Client) ProviderName() string { return constants.ProviderOpenAI }

// Extract sends the OCR text through chat/completions and returns the flat
// invoice shape with defaults filled in.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (entity.RawExtraction, error) {
	if strings.TrimSpace(req.OCRText) == "" {
		return nil, common.InputError("chat-completion extractor requires OCR text")
	}

	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"filename", req.Filename,
		"text_len", len(req.OCRText),
	)

	body := llm.ChatCompletionRequest{
		Model:          c.cfg.Model,
		Temperature:    c.cfg.Temperature,
		Messages:       llm.BuildInvoiceMessages(req.OCRText),
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("llm.extract.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.UpstreamError("openai API call failed", err)
	}

	var cc llm.ChatCompletionResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, common.UpstreamError("unexpected openai API response format", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid, "raw_bytes", len(raw))
		return nil, common.UpstreamError("unexpected openai API response format: no choices", nil)
	}
	content := ""
	if cc.Choices[0].Message.Content != nil {
		content = strings.TrimSpace(*cc.Choices[0].Message.Content)
	}

	var parsed any
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	if err := dec.Decode(&parsed); err != nil || dec.More() {
		c.logger.Error("llm.extract.invalid_json", "req_id", rid, "error", err, "content_len", len(content))
		return nil, common.UpstreamError("openai response was not valid JSON", err)
	}
	doc, ok := parsed.(map[string]any)
	if !ok {
		c.logger.Error("llm.extract.not_object", "req_id", rid)
		return nil, common.UpstreamError("openai response JSON is not an object", nil)
	}

	if touched := llm.CoerceNumericStrings(doc); len(touched) > 0 {
		c.logger.Warn("llm.extract.lenient_coercion_applied", "req_id", rid, "fields", touched)
	}
	coerced, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode coerced response: %w", err)
	}
	if err := llm.ValidateJSON(c.schema, coerced); err != nil {
		c.logger.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", err)
		return nil, common.UpstreamError("openai response does not match the invoice schema", err)
	}

	out, err := json.Marshal(llm.NormalizeFlat(doc))
	if err != nil {
		return nil, fmt.Errorf("encode normalized response: %w", err)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"line_items", len(asSlice(doc["line_items"])),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// EstimateConfidence scores output completeness: 0.7 base, +0.1 each for a
// named provider with RUT, for total and subtotal, and for any line items.
func (c *Client) EstimateConfidence(raw entity.RawExtraction) map[string]float64 {
	var doc struct {
		Provider struct {
			Name string `json:"name"`
			RUT  string `json:"rut"`
		} `json:"provider"`
		LineItems []json.RawMessage `json:"line_items"`
		Totals    struct {
			Subtotal float64 `json:"subtotal"`
			Total    float64 `json:"total"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	score := 0.7
	if doc.Provider.Name != "" && doc.Provider.RUT != "" {
		score += 0.1
	}
	if doc.Totals.Total != 0 && doc.Totals.Subtotal != 0 {
		score += 0.1
	}
	if len(doc.LineItems) > 0 {
		score += 0.1
	}
	return map[string]float64{entity.ConfidenceOverall: llm.CapScore(score)}
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
