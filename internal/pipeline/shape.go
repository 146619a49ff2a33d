package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm"
)

// Shape is a recognized provider payload. DecodeShape picks the variant from
// the top-level structure; each variant maps itself to the canonical invoice.
type Shape interface {
	Invoice() (entity.Invoice, error)
	shape()
}

// DecodeShape returns *CloudShape when the payload has a "data" object and
// *FlatShape when it carries any of provider, totals or line_items. Anything
// else is a mapping error.
func DecodeShape(raw entity.RawExtraction) (Shape, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, common.MappingError("extraction payload is not a JSON object", err)
	}
	if data, ok := top["data"]; ok && isObject(data) {
		return &CloudShape{Data: data}, nil
	}
	for _, k := range []string{"provider", "totals", "line_items"} {
		if _, ok := top[k]; ok {
			return &FlatShape{Fields: top}, nil
		}
	}
	return nil, common.MappingError("unrecognized extraction payload shape", nil)
}

func isObject(b json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(b, &m) == nil && m != nil
}

// CloudShape is the nested seller/buyer/financial_summary payload of the
// document-extraction provider.
type CloudShape struct {
	Data json.RawMessage
}

func (*CloudShape) shape() {}

type cloudParty struct {
	Name    string `json:"name"`
	RUT     string `json:"rut"`
	Address string `json:"address"`
}

type cloudLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
}

type cloudExtraction struct {
	Seller           cloudParty      `json:"seller"`
	Buyer            cloudParty      `json:"buyer"`
	LineItems        []cloudLineItem `json:"line_items"`
	FinancialSummary struct {
		SubTotal    float64 `json:"sub_total"`
		IVAAmount   float64 `json:"iva_amount"`
		TotalAmount float64 `json:"total_amount"`
	} `json:"financial_summary"`
}

func str() map[string]any { return map[string]any{"type": "string"} }
func num() map[string]any { return map[string]any{"type": "number"} }

func partySchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"name": str(), "rut": str(), "address": str()},
	}
}

// cloudSchema is the contract a cloud payload must satisfy before mapping.
// Sections are required; fields inside them are optional.
func cloudSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"seller", "buyer", "document_details", "financial_summary"},
		"properties": map[string]any{
			"seller": partySchema(),
			"buyer":  partySchema(),
			"document_details": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"series": str(), "number": str(), "issue_date": str(), "due_date": str(),
					"project_number": str(), "general_description": str(),
				},
			},
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item_number":     map[string]any{"type": []any{"string", "null"}},
						"description":     str(),
						"quantity":        num(),
						"unit_of_measure": str(),
						"order_number":    str(),
					},
				},
			},
			"financial_summary": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sub_total": num(), "iva_amount": num(), "total_amount": num(),
				},
			},
		},
	}
}

var cloudContract = mustCompile(cloudSchema())

func mustCompile(m map[string]any) *jsonschema.Schema {
	s, err := llm.CompileSchema(m)
	if err != nil {
		panic(fmt.Sprintf("compile cloud schema: %v", err))
	}
	return s
}

// Invoice maps seller to provider. The cloud payload has no unit prices,
// line subtotals or IVA rate; those stay 0.
func (c *CloudShape) Invoice() (entity.Invoice, error) {
	if err := llm.ValidateJSON(cloudContract, c.Data); err != nil {
		return entity.Invoice{}, common.MappingError("cloud payload does not match the extraction contract", err)
	}
	var ext cloudExtraction
	if err := json.Unmarshal(c.Data, &ext); err != nil {
		return entity.Invoice{}, common.MappingError("decode cloud payload", err)
	}

	lines := make([]entity.InvoiceLineItemWithTotals, 0, len(ext.LineItems))
	for _, li := range ext.LineItems {
		lines = append(lines, entity.InvoiceLineItemWithTotals{
			RubroRaw: li.Description,
			Quantity: li.Quantity,
		})
	}
	return entity.Invoice{
		Provider:  entity.InvoiceParty(ext.Seller),
		Buyer:     entity.InvoiceParty(ext.Buyer),
		LineItems: lines,
		Totals: entity.InvoiceTotals{
			Subtotal: ext.FinancialSummary.SubTotal,
			IVA:      ext.FinancialSummary.IVAAmount,
			Total:    ext.FinancialSummary.TotalAmount,
		},
	}, nil
}

// FlatShape is the provider/totals/line_items payload of the chat-completion,
// OCR-pattern and mock providers.
type FlatShape struct {
	Fields map[string]json.RawMessage
}

func (*FlatShape) shape() {}

type flatParty struct {
	Name    *string `json:"name"`
	RUT     *string `json:"rut"`
	Address *string `json:"address"`
}

type flatTotals struct {
	Subtotal *float64 `json:"subtotal"`
	IVA      *float64 `json:"iva"`
	IVARate  *float64 `json:"iva_rate"`
	Total    *float64 `json:"total"`
}

type flatLineItem struct {
	RubroCode *string  `json:"rubro_code"`
	RubroRaw  *string  `json:"rubro_raw"`
	Quantity  *float64 `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
	Subtotal  *float64 `json:"subtotal"`
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// decodeField leaves v untouched when the key is missing or null.
func (f *FlatShape) decodeField(key string, v any) error {
	b, ok := f.Fields[key]
	if !ok || string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return common.MappingError(fmt.Sprintf("decode %s", key), err)
	}
	return nil
}

// Invoice defaults missing strings to "" and missing numbers to 0. The buyer
// is always empty: flat providers do not report one.
func (f *FlatShape) Invoice() (entity.Invoice, error) {
	var (
		p     flatParty
		t     flatTotals
		items []flatLineItem
	)
	if err := f.decodeField("provider", &p); err != nil {
		return entity.Invoice{}, err
	}
	if err := f.decodeField("totals", &t); err != nil {
		return entity.Invoice{}, err
	}
	if err := f.decodeField("line_items", &items); err != nil {
		return entity.Invoice{}, err
	}

	lines := make([]entity.InvoiceLineItemWithTotals, 0, len(items))
	for i, li := range items {
		if li.RubroRaw == nil {
			return entity.Invoice{}, common.MappingError(fmt.Sprintf("line_items[%d]: rubro_raw is required", i), nil)
		}
		lines = append(lines, entity.InvoiceLineItemWithTotals{
			RubroCode: li.RubroCode,
			RubroRaw:  *li.RubroRaw,
			Quantity:  orZero(li.Quantity),
			UnitPrice: orZero(li.UnitPrice),
			Subtotal:  orZero(li.Subtotal),
		})
	}
	return entity.Invoice{
		Provider: entity.InvoiceParty{
			Name:    orEmpty(p.Name),
			RUT:     orEmpty(p.RUT),
			Address: orEmpty(p.Address),
		},
		LineItems: lines,
		Totals: entity.InvoiceTotals{
			Subtotal: orZero(t.Subtotal),
			IVA:      orZero(t.IVA),
			IVARate:  orZero(t.IVARate),
			Total:    orZero(t.Total),
		},
	}, nil
}

// MapToInvoice decodes and maps a raw payload in one step.
func MapToInvoice(raw entity.RawExtraction) (entity.Invoice, error) {
	s, err := DecodeShape(raw)
	if err != nil {
		return entity.Invoice{}, err
	}
	return s.Invoice()
}
