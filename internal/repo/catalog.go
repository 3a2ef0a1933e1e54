package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkravets/shopcore/internal/models"
	"github.com/mkravets/shopcore/internal/store"
)

func (r *GormRepo) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.Store.DB.WithContext(ctx).Order("position ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) WatchCategories(ctx context.Context) <-chan []models.Category {
	return store.Watch(ctx, r.Store, r.Categories, "categories")
}

func (r *GormRepo) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.Store.DB.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) WatchProducts(ctx context.Context) <-chan []models.Product {
	return store.Watch(ctx, r.Store, r.Products, "products")
}

func (r *GormRepo) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.Store.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	var products []models.Product
	if err := r.Store.DB.WithContext(ctx).
		Where("category = ?", categoryID).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) WatchProductsByCategory(ctx context.Context, categoryID string) <-chan []models.Product {
	return store.Watch(ctx, r.Store, func(ctx context.Context) ([]models.Product, error) {
		return r.ProductsByCategory(ctx, categoryID)
	}, "products")
}

// SearchProducts matches query as a substring of name or description.
// sqlite LIKE is case-insensitive for ASCII, so "iphone" finds
// "iPhone"; non-ASCII matching stays case-sensitive.
func (r *GormRepo) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	pattern := "%" + query + "%"
	var products []models.Product
	if err := r.Store.DB.WithContext(ctx).
		Where("name LIKE ? OR description LIKE ?", pattern, pattern).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SaveProduct upserts by primary key, whole row at a time.
func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	if p.Price < 0 {
		return fmt.Errorf("price must be >= 0: %w", ErrValidation)
	}
	if err := r.Store.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(p).Error; err != nil {
		return err
	}
	r.Store.Touch("products")
	return nil
}

// UpdateProduct rewrites an existing row and reports ErrNotFound when
// the primary key is absent.
func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id required: %w", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("price must be >= 0: %w", ErrValidation)
	}
	res := r.Store.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", p.ID).
		Select("*").Omit("id").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
	}
	r.Store.Touch("products")
	return nil
}

// DeleteProduct removes the product; cart lines referencing it are
// cascade-deleted by the engine.
func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	res := r.Store.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	r.Store.Touch("products", "cart_items")
	return nil
}

// ReplaceCatalog swaps the whole seeded catalog in one transaction.
func (r *GormRepo) ReplaceCatalog(ctx context.Context, cats []models.Category, products []models.Product) error {
	err := r.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Category{}).Error; err != nil {
			return err
		}
		if len(cats) > 0 {
			if err := tx.Create(&cats).Error; err != nil {
				return err
			}
		}
		if len(products) > 0 {
			if err := tx.Create(&products).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.Store.Touch("categories", "products", "cart_items")
	return nil
}
