package repo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/shopcore/internal/config"
	"github.com/mkravets/shopcore/internal/models"
	"github.com/mkravets/shopcore/internal/store"
)

func newTestRepo(t *testing.T) (*GormRepo, context.Context) {
	t.Helper()

	ctx := context.Background()
	s, err := store.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	cfg := &config.Config{
		DeliveryFee:     decimal.NewFromInt(300),
		CartMaxQuantity: 99,
	}
	return New(s, cfg), ctx
}

func seedProduct(t *testing.T, r *GormRepo, id string, price float64) models.Product {
	t.Helper()

	p := models.Product{
		ID:          id,
		Name:        "product " + id,
		Description: "description " + id,
		Price:       price,
		Category:    "cat_1",
	}
	require.NoError(t, r.SaveProduct(context.Background(), &p))
	return p
}

func seedUser(t *testing.T, r *GormRepo, email string) models.User {
	t.Helper()

	u := models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         "user",
	}
	require.NoError(t, r.CreateUser(context.Background(), &u))
	return u
}

func seedAddress(t *testing.T, r *GormRepo, userID string, isDefault bool) models.Address {
	t.Helper()

	a := models.Address{
		UserID:     userID,
		Street:     "ул. Ленина, 1",
		City:       "Москва",
		PostalCode: "101000",
		Country:    "Россия",
		IsDefault:  isDefault,
	}
	require.NoError(t, r.SaveAddress(context.Background(), &a))
	return a
}
