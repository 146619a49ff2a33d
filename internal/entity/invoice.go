package entity

import "encoding/json"

// RawExtraction is the untyped payload a provider returns. Its shape depends on
// the provider: flat (provider/line_items/totals) or nested cloud (data.seller...).
type RawExtraction = json.RawMessage

// InvoiceParty is a seller or buyer on an invoice.
type InvoiceParty struct {
	Name    string `json:"name"`
	RUT     string `json:"rut"`
	Address string `json:"address"`
}

// InvoiceLineItemWithTotals is one invoice line. RubroCode stays nil until the
// normalizer finds a match.
type InvoiceLineItemWithTotals struct {
	RubroCode *string `json:"rubro_code"`
	RubroRaw  string  `json:"rubro_raw"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// InvoiceTotals are the document-level amounts. IVARate is a fraction (0.19).
type InvoiceTotals struct {
	Subtotal float64 `json:"subtotal"`
	IVA      float64 `json:"iva"`
	IVARate  float64 `json:"iva_rate"`
	Total    float64 `json:"total"`
}

// Invoice is the canonical invoice every provider payload is mapped into.
type Invoice struct {
	Provider  InvoiceParty                `json:"provider"`
	Buyer     InvoiceParty                `json:"buyer"`
	LineItems []InvoiceLineItemWithTotals `json:"line_items"`
	Totals    InvoiceTotals               `json:"totals"`
}

// InvoiceValidationIssue is a single numeric-consistency finding.
type InvoiceValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// InvoiceValidationResult holds the findings; IsValid is true iff Issues is empty.
type InvoiceValidationResult struct {
	IsValid bool                     `json:"is_valid"`
	Issues  []InvoiceValidationIssue `json:"issues"`
}

// ProcessedInvoice is the pipeline output.
type ProcessedInvoice struct {
	Invoice    Invoice                 `json:"invoice"`
	Validation InvoiceValidationResult `json:"validation"`
}
