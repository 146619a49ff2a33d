package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

func consistentInvoice() entity.Invoice {
	return entity.Invoice{
		Provider: entity.InvoiceParty{Name: "Acme", RUT: "1-9"},
		LineItems: []entity.InvoiceLineItemWithTotals{
			{RubroRaw: "Consulting", Quantity: 10, UnitPrice: 100, Subtotal: 1000},
		},
		Totals: entity.InvoiceTotals{Subtotal: 1000, IVA: 190, IVARate: 0.19, Total: 1190},
	}
}

func codes(res entity.InvoiceValidationResult) []string {
	out := make([]string, 0, len(res.Issues))
	for _, is := range res.Issues {
		out = append(out, is.Code)
	}
	return out
}

func TestInvoiceNumericConsistency(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.Invoice)
		codes  []string
		fields []string
	}{
		{
			name:   "consistent",
			mutate: func(*entity.Invoice) {},
			codes:  []string{},
		},
		{
			name:   "total off",
			mutate: func(inv *entity.Invoice) { inv.Totals.Total = 1200 },
			codes:  []string{"total_mismatch"},
			fields: []string{"totals.total"},
		},
		{
			name:   "within tolerance",
			mutate: func(inv *entity.Invoice) { inv.Totals.Total = 1190.01 },
			codes:  []string{},
		},
		{
			name:   "just outside tolerance",
			mutate: func(inv *entity.Invoice) { inv.Totals.Total = 1190.02 },
			codes:  []string{"total_mismatch"},
		},
		{
			name: "line subtotal off also breaks the subtotal sum",
			mutate: func(inv *entity.Invoice) {
				inv.LineItems[0].Subtotal = 900
			},
			codes:  []string{"line_subtotal_mismatch", "subtotal_mismatch"},
			fields: []string{"line_items[0].subtotal", "totals.subtotal"},
		},
		{
			name:   "iva off",
			mutate: func(inv *entity.Invoice) { inv.Totals.IVA = 180; inv.Totals.Total = 1180 },
			codes:  []string{"iva_mismatch"},
			fields: []string{"totals.iva"},
		},
		{
			name: "all four",
			mutate: func(inv *entity.Invoice) {
				inv.LineItems[0].Subtotal = 999
				inv.Totals.Subtotal = 500
				inv.Totals.IVA = 10
				inv.Totals.Total = 1
			},
			codes: []string{"line_subtotal_mismatch", "subtotal_mismatch", "iva_mismatch", "total_mismatch"},
		},
		{
			name: "fractional prices round to cents",
			mutate: func(inv *entity.Invoice) {
				inv.LineItems = []entity.InvoiceLineItemWithTotals{
					{RubroRaw: "Tornillos", Quantity: 3, UnitPrice: 0.333, Subtotal: 1.00},
				}
				inv.Totals = entity.InvoiceTotals{Subtotal: 1.00, IVA: 0.19, IVARate: 0.19, Total: 1.19}
			},
			codes: []string{},
		},
		{
			name: "no line items",
			mutate: func(inv *entity.Invoice) {
				inv.LineItems = nil
				inv.Totals = entity.InvoiceTotals{}
			},
			codes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := consistentInvoice()
			tt.mutate(&inv)

			res := InvoiceNumericConsistency(inv)

			assert.Equal(t, tt.codes, codes(res))
			assert.Equal(t, len(tt.codes) == 0, res.IsValid)
			for i, f := range tt.fields {
				require.Less(t, i, len(res.Issues))
				assert.Equal(t, f, res.Issues[i].Field)
			}
		})
	}
}

func TestInvoiceNumericConsistencyDoesNotMutate(t *testing.T) {
	inv := consistentInvoice()
	inv.Totals.Total = 5
	before := inv.Totals

	_ = InvoiceNumericConsistency(inv)

	assert.Equal(t, before, inv.Totals)
}

func TestToleranceIsOneCent(t *testing.T) {
	inv := consistentInvoice()
	inv.LineItems[0].Subtotal = 1000.01
	assert.True(t, InvoiceNumericConsistency(inv).IsValid)

	inv.LineItems[0].Subtotal = 1000.02
	res := InvoiceNumericConsistency(inv)
	assert.False(t, res.IsValid)
	assert.Contains(t, codes(res), "line_subtotal_mismatch")
}
