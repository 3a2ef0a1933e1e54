package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/shopcore/internal/models"
)

func TestPlaceOrderSnapshotsCart(t *testing.T) {
	r, ctx := newTestRepo(t)
	seedProduct(t, r, "prod_1", 100)
	seedProduct(t, r, "prod_2", 50)
	user := seedUser(t, r, "a@x.com")
	addr := seedAddress(t, r, user.ID, true)

	_, err := r.AddToCart(ctx, user.ID, "prod_1", 2)
	require.NoError(t, err)
	_, err = r.AddToCart(ctx, user.ID, "prod_2", 1)
	require.NoError(t, err)

	order, err := r.PlaceOrder(ctx, user.ID, addr.ID)
	require.NoError(t, err)

	// 100*2 + 50*1 + 300 delivery
	assert.Equal(t, float64(550), order.TotalPrice)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, addr.ID, order.DeliveryAddressID)
	require.Len(t, order.Items, 2)

	lines, err := r.CartLines(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 0, "checkout must clear the cart")
}

func TestPlaceOrderFreezesPrices(t *testing.T) {
	r, ctx := newTestRepo(t)
	p1 := seedProduct(t, r, "prod_1", 100)
	seedProduct(t, r, "prod_2", 50)
	user := seedUser(t, r, "a@x.com")
	addr := seedAddress(t, r, user.ID, true)

	_, err := r.AddToCart(ctx, user.ID, "prod_1", 2)
	require.NoError(t, err)
	_, err = r.AddToCart(ctx, user.ID, "prod_2", 1)
	require.NoError(t, err)

	order, err := r.PlaceOrder(ctx, user.ID, addr.ID)
	require.NoError(t, err)
	require.Equal(t, float64(550), order.TotalPrice)

	p1.Price = 10
	require.NoError(t, r.UpdateProduct(ctx, &p1))

	got, err := r.OrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(550), got.TotalPrice, "order total must not follow product edits")

	for _, item := range got.Items {
		if item.ProductID == "prod_1" {
			assert.Equal(t, float64(100), item.UnitPrice, "item snapshot must keep the purchase-time price")
		}
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	r, ctx := newTestRepo(t)
	seedProduct(t, r, "prod_1", 100)
	user := seedUser(t, r, "a@x.com")
	addr := seedAddress(t, r, user.ID, true)

	_, err := r.PlaceOrder(ctx, user.ID, addr.ID)
	assert.ErrorIs(t, err, ErrValidation, "empty cart cannot check out")

	_, err = r.PlaceOrder(ctx, GuestScope, addr.ID)
	assert.ErrorIs(t, err, ErrValidation, "guest cart cannot check out")

	_, err = r.AddToCart(ctx, user.ID, "prod_1", 1)
	require.NoError(t, err)
	_, err = r.PlaceOrder(ctx, user.ID, "addr_nope")
	assert.ErrorIs(t, err, ErrNotFound)

	lines, err := r.CartLines(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1, "failed checkout must leave the cart untouched")
}

func TestOrdersNewestFirst(t *testing.T) {
	r, ctx := newTestRepo(t)
	seedProduct(t, r, "prod_1", 100)
	user := seedUser(t, r, "a@x.com")
	addr := seedAddress(t, r, user.ID, true)

	_, err := r.AddToCart(ctx, user.ID, "prod_1", 1)
	require.NoError(t, err)
	first, err := r.PlaceOrder(ctx, user.ID, addr.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = r.AddToCart(ctx, user.ID, "prod_1", 2)
	require.NoError(t, err)
	second, err := r.PlaceOrder(ctx, user.ID, addr.ID)
	require.NoError(t, err)

	orders, err := r.Orders(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	require.Len(t, orders[0].Items, 1, "items must be loaded with the order")
}

func TestOrderStatusTransitions(t *testing.T) {
	r, ctx := newTestRepo(t)
	seedProduct(t, r, "prod_1", 100)
	user := seedUser(t, r, "a@x.com")
	addr := seedAddress(t, r, user.ID, true)

	_, err := r.AddToCart(ctx, user.ID, "prod_1", 1)
	require.NoError(t, err)
	order, err := r.PlaceOrder(ctx, user.ID, addr.ID)
	require.NoError(t, err)

	got, err := r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)

	_, err = r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrTransition, "status must not move backwards")

	got, err = r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)

	_, err = r.CancelOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrTransition, "delivered orders cannot be cancelled")
}

func TestCancelOrder(t *testing.T) {
	r, ctx := newTestRepo(t)
	seedProduct(t, r, "prod_1", 100)
	user := seedUser(t, r, "a@x.com")
	addr := seedAddress(t, r, user.ID, true)

	_, err := r.AddToCart(ctx, user.ID, "prod_1", 1)
	require.NoError(t, err)
	order, err := r.PlaceOrder(ctx, user.ID, addr.ID)
	require.NoError(t, err)

	got, err := r.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	_, err = r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrTransition, "cancelled is terminal")
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	r, ctx := newTestRepo(t)

	_, err := r.UpdateOrderStatus(ctx, "order_nope", models.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrNotFound)
}
