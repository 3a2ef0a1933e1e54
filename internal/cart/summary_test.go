package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mkravets/shopcore/internal/models"
)

func line(price float64, qty int) models.CartItem {
	return models.CartItem{
		Quantity: qty,
		Product:  models.Product{Price: price},
	}
}

func TestSummarize(t *testing.T) {
	fee := decimal.NewFromInt(300)

	tests := []struct {
		name         string
		lines        []models.CartItem
		wantSubtotal string
		wantTotal    string
		wantCount    int
	}{
		{
			name:         "two products",
			lines:        []models.CartItem{line(100, 2), line(50, 1)},
			wantSubtotal: "250",
			wantTotal:    "550",
			wantCount:    3,
		},
		{
			name:         "single line",
			lines:        []models.CartItem{line(59990, 1)},
			wantSubtotal: "59990",
			wantTotal:    "60290",
			wantCount:    1,
		},
		{
			name:         "empty cart",
			lines:        nil,
			wantSubtotal: "0",
			wantTotal:    "300",
			wantCount:    0,
		},
		{
			name:         "fractional prices stay exact",
			lines:        []models.CartItem{line(0.1, 3)},
			wantSubtotal: "0.3",
			wantTotal:    "300.3",
			wantCount:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.lines, fee)
			assert.Equal(t, tt.wantSubtotal, got.Subtotal.String())
			assert.Equal(t, tt.wantTotal, got.Total.String())
			assert.Equal(t, tt.wantCount, got.ItemCount)
			assert.True(t, got.DeliveryFee.Equal(fee))
		})
	}
}

func TestSummarizeRecomputesFromLiveLines(t *testing.T) {
	fee := decimal.NewFromInt(300)
	lines := []models.CartItem{line(100, 2)}

	before := Summarize(lines, fee)
	assert.Equal(t, "500", before.Total.String())

	// A price change on the joined product shows up on the next read;
	// nothing is cached.
	lines[0].Product.Price = 10
	after := Summarize(lines, fee)
	assert.Equal(t, "320", after.Total.String())
}
