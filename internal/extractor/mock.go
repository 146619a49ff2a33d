package extractor

import (
	"context"
	"encoding/json"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm"
)

// Mock returns a fixed, internally consistent demo invoice.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (*Mock) ProviderName() string { return constants.ProviderMock }

func (*Mock) Extract(ctx context.Context, _ llm.ExtractRequest) (entity.RawExtraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.Marshal(flatExtraction{
		Provider: flatParty{Name: "Proveedor Demo", RUT: "12.345.678-9", Address: "Calle Demo 123"},
		Buyer:    &flatParty{Name: "Cliente Demo", RUT: "98.765.432-1", Address: "Avenida Cliente 456", Type: "C.FINAL"},
		LineItems: []flatLineItem{
			{RubroRaw: "Servicio de consultoría", Quantity: 10, UnitPrice: 100, Subtotal: 1000},
		},
		Totals: flatTotals{Subtotal: 1000, IVA: 190, IVARate: 0.19, Total: 1190},
	})
}

func (*Mock) EstimateConfidence(entity.RawExtraction) map[string]float64 {
	return map[string]float64{entity.ConfidenceOverall: 1.0}
}
