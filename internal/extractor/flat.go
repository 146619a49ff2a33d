package extractor

// Flat payload written by the OCR-pattern and mock providers.
type flatParty struct {
	Name    string `json:"name"`
	RUT     string `json:"rut"`
	Address string `json:"address"`
	Type    string `json:"type,omitempty"`
}

type flatLineItem struct {
	RubroRaw  string  `json:"rubro_raw"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type flatTotals struct {
	Subtotal float64 `json:"subtotal"`
	IVA      float64 `json:"iva"`
	IVARate  float64 `json:"iva_rate"`
	Total    float64 `json:"total"`
}

type flatExtraction struct {
	Provider  flatParty      `json:"provider"`
	Buyer     *flatParty     `json:"buyer,omitempty"`
	LineItems []flatLineItem `json:"line_items"`
	Totals    flatTotals     `json:"totals"`
}
