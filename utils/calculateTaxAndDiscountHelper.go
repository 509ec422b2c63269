package utils

import (
	"github.com/shopspring/decimal"
)

// CalculateLineTaxAmount computes the tax portion for a line total at the
// given percentage rate: (lineAmount * taxRate) / 100, rounded to the four
// decimal places the money columns store.
func CalculateLineTaxAmount(lineAmount decimal.Decimal, taxRate decimal.Decimal) decimal.Decimal {
	if taxRate.IsZero() {
		return decimal.NewFromFloat(0)
	}
	return lineAmount.Mul(taxRate).DivRound(decimal.NewFromFloat(100), 4)
}

func CalculateDiscountAmount(subTotal decimal.Decimal, discount decimal.Decimal, discountType string) decimal.Decimal {

	var discountAmount decimal.Decimal

	decimalOneHundred := decimal.NewFromFloat(100)

	if discount.GreaterThan(decimal.NewFromFloat(0.0)) {
		if discountType == "P" {
			discountAmount = subTotal.Mul(discount).DivRound(decimalOneHundred, 4)
		} else {
			discountAmount = discount
		}
	} else {
		discountAmount = decimal.NewFromFloat(0.0)
	}

	return discountAmount
}
