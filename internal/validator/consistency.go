// Package validator checks that the amounts on an invoice agree with each other.
package validator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

// tolerance is the largest absolute difference accepted between a reported
// amount and its expected value.
var tolerance = decimal.New(1, -2)

// InvoiceNumericConsistency runs every check and reports all mismatches.
// Expected values are rounded to 2 decimals before comparison.
func InvoiceNumericConsistency(inv entity.Invoice) entity.InvoiceValidationResult {
	issues := make([]entity.InvoiceValidationIssue, 0)

	linesSum := decimal.Zero
	for i, li := range inv.LineItems {
		subtotal := decimal.NewFromFloat(li.Subtotal)
		expected := decimal.NewFromFloat(li.Quantity).Mul(decimal.NewFromFloat(li.UnitPrice)).Round(2)
		if mismatch(subtotal, expected) {
			issues = append(issues, entity.InvoiceValidationIssue{
				Code:    string(constants.IssueLineSubtotalMismatch),
				Message: fmt.Sprintf("line %d subtotal %s != quantity*unit_price %s", i, subtotal, expected),
				Field:   fmt.Sprintf("line_items[%d].subtotal", i),
			})
		}
		linesSum = linesSum.Add(subtotal)
	}

	subtotal := decimal.NewFromFloat(inv.Totals.Subtotal)
	if expected := linesSum.Round(2); mismatch(subtotal, expected) {
		issues = append(issues, entity.InvoiceValidationIssue{
			Code:    string(constants.IssueSubtotalMismatch),
			Message: fmt.Sprintf("invoice subtotal %s != sum of lines %s", subtotal, expected),
			Field:   "totals.subtotal",
		})
	}

	iva := decimal.NewFromFloat(inv.Totals.IVA)
	if expected := subtotal.Mul(decimal.NewFromFloat(inv.Totals.IVARate)).Round(2); mismatch(iva, expected) {
		issues = append(issues, entity.InvoiceValidationIssue{
			Code:    string(constants.IssueIVAMismatch),
			Message: fmt.Sprintf("iva %s != subtotal*iva_rate %s", iva, expected),
			Field:   "totals.iva",
		})
	}

	total := decimal.NewFromFloat(inv.Totals.Total)
	if expected := subtotal.Add(iva).Round(2); mismatch(total, expected) {
		issues = append(issues, entity.InvoiceValidationIssue{
			Code:    string(constants.IssueTotalMismatch),
			Message: fmt.Sprintf("total %s != subtotal+iva %s", total, expected),
			Field:   "totals.total",
		})
	}

	return entity.InvoiceValidationResult{IsValid: len(issues) == 0, Issues: issues}
}

func mismatch(actual, expected decimal.Decimal) bool {
	return actual.Sub(expected).Abs().GreaterThan(tolerance)
}
