package llm

import "strings"

const invoiceSystemPrompt = "You are an assistant that extracts structured invoice data from OCR text. " +
	"Return ONLY valid JSON matching the specified schema, with no extra text. " +
	"If a value is missing or uncertain, use null for that field."

const invoiceSchemaPrompt = `Extract the following fields from the provided OCR text of an invoice.

Return ONLY a JSON object with this exact schema (no markdown, no comments):

{
  "provider": { "name": string | null, "rut": string | null },
  "line_items": [
    {
      "rubro_raw": string | null,
      "quantity": number | null,
      "unit_price": number | null,
      "subtotal": number | null
    }
  ],
  "totals": {
    "subtotal": number | null,
    "iva_rate": number | null,
    "iva": number | null,
    "total": number | null
  }
}

`

// BuildInvoiceMessages returns the system and user messages for invoice extraction.
func BuildInvoiceMessages(ocrText string) []ChatMessage {
	var b strings.Builder
	b.WriteString(invoiceSchemaPrompt)
	b.WriteString("OCR text:\n")
	b.WriteString(ocrText)
	return []ChatMessage{
		{Role: "system", Content: invoiceSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}
