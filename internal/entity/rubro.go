package entity

// RubroNomenclatorEntry is one row of the rubro catalog.
type RubroNomenclatorEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RubroNormalizationResult reports the lookup outcome for one line.
type RubroNormalizationResult struct {
	LineIndex      int     `json:"line_index"`
	OriginalRubro  string  `json:"original_rubro"`
	NormalizedCode *string `json:"normalized_code"`
	NormalizedName *string `json:"normalized_name"`
}
