package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkravets/shopcore/internal/models"
	"github.com/mkravets/shopcore/internal/store"
)

// GuestScope is the cart scope of an anonymous session.
const GuestScope = ""

// CartLines returns the cart of the given scope with the live product
// joined into each line.
func (r *GormRepo) CartLines(ctx context.Context, scope string) ([]models.CartItem, error) {
	var lines []models.CartItem
	if err := r.Store.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", scope).
		Order("id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// WatchCart re-emits the joined cart whenever a cart line or a product
// changes; the join is recomputed per emission, never materialized.
func (r *GormRepo) WatchCart(ctx context.Context, scope string) <-chan []models.CartItem {
	return store.Watch(ctx, r.Store, func(ctx context.Context) ([]models.CartItem, error) {
		return r.CartLines(ctx, scope)
	}, "cart_items", "products")
}

// AddToCart adds qty more of a product to the scope's cart. An
// existing line for the same product is incremented instead of
// duplicated, so repeated calls keep adding; the call is intentionally
// not idempotent. The per-line quantity is capped at CartMaxQuantity.
func (r *GormRepo) AddToCart(ctx context.Context, scope, productID string, qty int) (*models.CartItem, error) {
	if productID == "" {
		return nil, fmt.Errorf("product id required: %w", ErrValidation)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be > 0: %w", ErrValidation)
	}

	var line models.CartItem
	err := r.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND product_id = ?", scope, productID).First(&line).Error
		if err == nil {
			next := line.Quantity + qty
			if next > r.CartMaxQuantity {
				return fmt.Errorf("quantity above %d: %w", r.CartMaxQuantity, ErrValidation)
			}
			if err := tx.Model(&line).Update("quantity", next).Error; err != nil {
				return err
			}
			return tx.Preload("Product").Where("id = ?", line.ID).First(&line).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if qty > r.CartMaxQuantity {
			return fmt.Errorf("quantity above %d: %w", r.CartMaxQuantity, ErrValidation)
		}
		var product models.Product
		if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %s does not exist: %w", productID, ErrConstraint)
			}
			return err
		}

		line = models.CartItem{
			ProductID: productID,
			UserID:    scope,
			Quantity:  qty,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		line.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.Store.Touch("cart_items")
	return &line, nil
}

// IncreaseQuantity adds one to a cart line.
func (r *GormRepo) IncreaseQuantity(ctx context.Context, lineID string) (*models.CartItem, error) {
	var line models.CartItem
	err := r.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", lineID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart line %s: %w", lineID, ErrNotFound)
			}
			return err
		}
		if line.Quantity+1 > r.CartMaxQuantity {
			return fmt.Errorf("quantity above %d: %w", r.CartMaxQuantity, ErrValidation)
		}
		if err := tx.Model(&line).Update("quantity", gorm.Expr("quantity + 1")).Error; err != nil {
			return err
		}
		return tx.Preload("Product").Where("id = ?", lineID).First(&line).Error
	})
	if err != nil {
		return nil, err
	}

	r.Store.Touch("cart_items")
	return &line, nil
}

// DecreaseQuantity subtracts one from a cart line. At quantity 1 the
// line is deleted instead; a quantity below 1 is never stored.
func (r *GormRepo) DecreaseQuantity(ctx context.Context, lineID string) (deleted bool, line *models.CartItem, err error) {
	var item models.CartItem
	err = r.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", lineID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart line %s: %w", lineID, ErrNotFound)
			}
			return err
		}
		if item.Quantity > 1 {
			if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
				return err
			}
			return tx.Preload("Product").Where("id = ?", lineID).First(&item).Error
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}

	r.Store.Touch("cart_items")
	if deleted {
		return true, nil, nil
	}
	return false, &item, nil
}

// SetQuantity pins a cart line to an exact quantity; zero or less
// removes the line.
func (r *GormRepo) SetQuantity(ctx context.Context, lineID string, qty int) error {
	if qty <= 0 {
		return r.RemoveLine(ctx, lineID)
	}
	if qty > r.CartMaxQuantity {
		return fmt.Errorf("quantity above %d: %w", r.CartMaxQuantity, ErrValidation)
	}

	res := r.Store.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", lineID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line %s: %w", lineID, ErrNotFound)
	}
	r.Store.Touch("cart_items")
	return nil
}

func (r *GormRepo) RemoveLine(ctx context.Context, lineID string) error {
	res := r.Store.DB.WithContext(ctx).Where("id = ?", lineID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line %s: %w", lineID, ErrNotFound)
	}
	r.Store.Touch("cart_items")
	return nil
}

// ClearCart drops every line of the scope. Clearing an already empty
// cart is a no-op, not an error.
func (r *GormRepo) ClearCart(ctx context.Context, scope string) error {
	if err := r.Store.DB.WithContext(ctx).
		Where("user_id = ?", scope).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	r.Store.Touch("cart_items")
	return nil
}
