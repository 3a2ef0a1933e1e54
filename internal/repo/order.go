package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mkravets/shopcore/internal/logging"
	"github.com/mkravets/shopcore/internal/models"
	"github.com/mkravets/shopcore/internal/store"
)

// PlaceOrder turns the user's current cart into an order in a single
// transaction: order row, item snapshots and the cart clear commit or
// roll back together, so an order without items can never be observed.
// Prices and names are copied into the snapshot; later product edits
// leave the order untouched.
func (r *GormRepo) PlaceOrder(ctx context.Context, userID, deliveryAddressID string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "repo.place_order", "user_id", userID)

	if userID == GuestScope {
		return nil, fmt.Errorf("guest cart cannot check out: %w", ErrValidation)
	}
	if deliveryAddressID == "" {
		return nil, fmt.Errorf("delivery address required: %w", ErrValidation)
	}

	var order models.Order
	err := r.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var addr models.Address
		if err := tx.Where("id = ? AND user_id = ?", deliveryAddressID, userID).First(&addr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("address %s: %w", deliveryAddressID, ErrNotFound)
			}
			return err
		}

		var lines []models.CartItem
		if err := tx.Preload("Product").Where("user_id = ?", userID).Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("cart is empty: %w", ErrValidation)
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			price := decimal.NewFromFloat(line.Product.Price)
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				UnitPrice:   line.Product.Price,
				Quantity:    line.Quantity,
			})
		}
		total := subtotal.Add(r.DeliveryFee)

		now := time.Now().UTC()
		order = models.Order{
			UserID:            userID,
			TotalPrice:        total.InexactFloat64(),
			Status:            models.OrderStatusPending,
			DeliveryAddressID: deliveryAddressID,
			CreatedAt:         now,
			UpdatedAt:         now,
			Items:             items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	l.Info("order placed", "order_id", order.ID, "total", order.TotalPrice, "items", len(order.Items))
	r.Store.Touch("orders", "order_items", "cart_items")
	return &order, nil
}

// Orders lists the user's orders, newest first, with item snapshots
// loaded.
func (r *GormRepo) Orders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.Store.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) WatchOrders(ctx context.Context, userID string) <-chan []models.Order {
	return store.Watch(ctx, r.Store, func(ctx context.Context) ([]models.Order, error) {
		return r.Orders(ctx, userID)
	}, "orders", "order_items")
}

func (r *GormRepo) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.Store.DB.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &order, nil
}

// statusRank orders the forward path; cancelled sits outside it.
var statusRank = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusProcessing: 1,
	models.OrderStatusShipped:    2,
	models.OrderStatusDelivered:  3,
}

func canTransition(from, to models.OrderStatus) bool {
	if from == models.OrderStatusCancelled || from == models.OrderStatusDelivered {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// UpdateOrderStatus moves an order along the forward path
// pending → processing → shipped → delivered; cancel is allowed from
// any non-terminal state. Anything else is ErrTransition.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := r.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %s: %w", id, ErrNotFound)
			}
			return err
		}
		if !canTransition(order.Status, next) {
			return fmt.Errorf("%s -> %s: %w", order.Status, next, ErrTransition)
		}
		if err := tx.Model(&order).Updates(map[string]any{
			"status":     next,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		return tx.Preload("Items").Where("id = ?", id).First(&order).Error
	})
	if err != nil {
		return nil, err
	}

	r.Store.Touch("orders")
	return &order, nil
}

func (r *GormRepo) CancelOrder(ctx context.Context, id string) (*models.Order, error) {
	return r.UpdateOrderStatus(ctx, id, models.OrderStatusCancelled)
}
