package workflow

import (
	"bitbucket.org/mmdatafocus/office_backend/models"
	"bitbucket.org/mmdatafocus/office_backend/utils"
	"github.com/shopspring/decimal"
)

// Derived-total math for recurring invoices and bills. Kept free of DB access
// so it stays consistent with the rest of the ledger and testable on its own.

// ComputeLineAmounts returns the line total (qty x unit price) and its tax
// portion at the line's percentage rate.
func ComputeLineAmounts(item models.LineItemPayload) (lineAmount decimal.Decimal, taxAmount decimal.Decimal) {
	lineAmount = item.Quantity.Mul(item.UnitPrice)
	taxAmount = utils.CalculateLineTaxAmount(lineAmount, item.TaxRate)
	return lineAmount, taxAmount
}

// ComputeDocumentTotals sums line amounts into subtotal and total tax.
func ComputeDocumentTotals(items []models.LineItemPayload) (subtotal decimal.Decimal, taxTotal decimal.Decimal) {
	for _, item := range items {
		lineAmount, taxAmount := ComputeLineAmounts(item)
		subtotal = subtotal.Add(lineAmount)
		taxTotal = taxTotal.Add(taxAmount)
	}
	return subtotal, taxTotal
}

// ComputeDocumentTotal applies the document-level discount:
// total = subtotal + tax - discount. Bills pass a zero discount.
func ComputeDocumentTotal(subtotal, taxTotal, discountAmount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(taxTotal).Sub(discountAmount)
}
