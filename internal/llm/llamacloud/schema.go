package llamacloud

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func integer(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

// DataSchema is the extraction contract the agent is created with.
func DataSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"seller": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    str("Seller name"),
					"rut":     str("Seller RUT"),
					"address": str("Seller address"),
				},
			},
			"buyer": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    str("Buyer name"),
					"rut":     str("Buyer RUT"),
					"address": str("Buyer address"),
					"type":    str("Invoice type"),
				},
			},
			"document_details": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"series":              str("Invoice series"),
					"number":              str("Invoice number"),
					"issue_date":          str("Issue date"),
					"due_date":            str("Due date"),
					"project_number":      str("Project number"),
					"general_description": str("General description"),
				},
			},
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item_number":     map[string]any{"type": []any{"string", "null"}, "description": "Item number"},
						"description":     str("Item description"),
						"quantity":        integer("Quantity"),
						"unit_of_measure": str("Unit of measure"),
						"order_number":    str("Order number"),
					},
				},
			},
			"financial_summary": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sub_total":    integer("Subtotal"),
					"iva_amount":   integer("IVA amount"),
					"total_amount": integer("Total amount"),
				},
			},
		},
	}
}
