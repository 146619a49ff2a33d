package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm"
)

var (
	rutPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}\.\d{3}\.\d{3}-[0-9Kk]\b`),
		regexp.MustCompile(`\b\d{7,8}-[0-9Kk]\b`),
	}
	// Keywords are anchored at a word boundary so "Subtotal" is not read as "Total".
	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bTOTAL[:\s]*\$?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bTOTAL GENERAL[:\s]*\$?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bIMPORTE TOTAL[:\s]*\$?\s*(\d+(?:\.\d+)?)`),
	}
	subtotalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bSUBTOTAL[:\s]*\$?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bBASE IMPONIBLE[:\s]*\$?\s*(\d+(?:\.\d+)?)`),
	}
	ivaPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bIVA[:\s]*\$?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bIVA\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\bIVA\s*\$?\s*(\d+(?:\.\d+)?)`),
	}
	reLineItem = regexp.MustCompile(`(\d+)\s+[xX\s]*(.+)`)
	rePrice    = regexp.MustCompile(`\$?(\d+(?:\.\d+)?)`)

	nameHeaderWords = []string{"FACTURA", "INVOICE", "RUT:", "TOTAL"}
	lineHeaderWords = []string{"DESCRIPCIÓN", "CANTIDAD", "PRECIO", "TOTAL", "IVA"}
)

// OCRPattern extracts invoice fields from OCR text with regular expressions.
// It needs no credentials and is the fallback of last resort.
type OCRPattern struct{}

func NewOCRPattern() *OCRPattern { return &OCRPattern{} }

func (*OCRPattern) ProviderName() string { return constants.ProviderTesseractOCR }

func (*OCRPattern) Extract(_ context.Context, req llm.ExtractRequest) (entity.RawExtraction, error) {
	text := strings.TrimSpace(req.OCRText)
	if text == "" {
		return nil, common.InputError("OCR extractor requires OCR text")
	}

	out := flatExtraction{
		Provider: flatParty{
			Name: providerName(text),
			RUT:  firstMatch(rutPatterns, text),
		},
		LineItems: lineItems(text),
		Totals:    totals(text),
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode ocr extraction: %w", err)
	}
	return raw, nil
}

// EstimateConfidence: 0.5 base, +0.1 name, +0.1 RUT, +0.2 positive total, +0.1 any line items.
func (*OCRPattern) EstimateConfidence(raw entity.RawExtraction) map[string]float64 {
	var doc flatExtraction
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	score := 0.5
	if doc.Provider.Name != "" {
		score += 0.1
	}
	if doc.Provider.RUT != "" {
		score += 0.1
	}
	if doc.Totals.Total > 0 {
		score += 0.2
	}
	if len(doc.LineItems) > 0 {
		score += 0.1
	}
	return map[string]float64{entity.ConfidenceOverall: llm.CapScore(score)}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// providerName takes the first of the first five lines that is not a header,
// has at least two words and is longer than ten characters.
func providerName(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if containsAny(strings.ToUpper(line), nameHeaderWords) {
			continue
		}
		if len(strings.Fields(line)) >= 2 && utf8.RuneCountInString(line) > 10 {
			return line
		}
	}
	return ""
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

func firstAmount(patterns []*regexp.Regexp, text string) float64 {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v
			}
		}
	}
	return 0
}

func totals(text string) flatTotals {
	t := flatTotals{
		Total:    firstAmount(totalPatterns, text),
		Subtotal: firstAmount(subtotalPatterns, text),
		IVA:      firstAmount(ivaPatterns, text),
	}
	if t.Subtotal > 0 && t.IVA > 0 {
		t.IVARate, _ = decimal.NewFromFloat(t.IVA).Div(decimal.NewFromFloat(t.Subtotal)).Round(4).Float64()
	}
	return t
}

// lineItems reads "<qty> <description>" lines; the unit price is the first
// amount in the description, else the first amount on the next line.
func lineItems(text string) []flatLineItem {
	items := make([]flatLineItem, 0)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if containsAny(strings.ToUpper(line), lineHeaderWords) {
			continue
		}
		m := reLineItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		desc := strings.TrimSpace(m[2])

		var price float64
		if pm := rePrice.FindStringSubmatch(desc); pm != nil {
			price, _ = strconv.ParseFloat(pm[1], 64)
		} else if i+1 < len(lines) {
			if pm := rePrice.FindStringSubmatch(lines[i+1]); pm != nil {
				price, _ = strconv.ParseFloat(pm[1], 64)
			}
		}

		items = append(items, flatLineItem{
			RubroRaw:  desc,
			Quantity:  float64(qty),
			UnitPrice: price,
			Subtotal:  float64(qty) * price,
		})
	}
	return items
}
