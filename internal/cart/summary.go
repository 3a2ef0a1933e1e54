// Package cart derives cart totals. Totals are computed fresh from the
// joined lines on every read and never persisted, so a product price
// change is reflected immediately. Orders, by contrast, freeze prices
// at creation.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/mkravets/shopcore/internal/models"
)

type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// Summarize computes subtotal = Σ quantity×price over the lines and
// total = subtotal + fee.
func Summarize(lines []models.CartItem, fee decimal.Decimal) Summary {
	subtotal := decimal.Zero
	count := 0
	for _, line := range lines {
		price := decimal.NewFromFloat(line.Product.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		count += line.Quantity
	}
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
		ItemCount:   count,
	}
}
