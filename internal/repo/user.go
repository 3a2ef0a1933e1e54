package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkravets/shopcore/internal/models"
	"github.com/mkravets/shopcore/internal/store"
)

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.Store.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.Store.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts u unless the email is already taken.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	tx := r.Store.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("email %s: %w", u.Email, ErrDuplicate)
	}
	r.Store.Touch("users")
	return nil
}

// UpdateUser rewrites the whole user row; absent primary key is
// ErrNotFound.
func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		return fmt.Errorf("user id required: %w", ErrValidation)
	}
	res := r.Store.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", u.ID).
		Select("*").Omit("id").
		Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", u.ID, ErrNotFound)
	}
	r.Store.Touch("users")
	return nil
}

// DeleteUser removes the user; addresses cascade with it.
func (r *GormRepo) DeleteUser(ctx context.Context, id string) error {
	res := r.Store.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	r.Store.Touch("users", "addresses")
	return nil
}

// SetSecurityCode stores a fresh challenge hash on the user, replacing
// any previous one and resetting the attempt counter, so at most one
// code is ever pending.
func (r *GormRepo) SetSecurityCode(ctx context.Context, userID, codeHash string, issuedAt time.Time) error {
	res := r.Store.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"security_code_hash": codeHash,
			"code_issued_at":     issuedAt,
			"code_attempts":      0,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	r.Store.Touch("users")
	return nil
}

func (r *GormRepo) ClearSecurityCode(ctx context.Context, userID string) error {
	res := r.Store.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"security_code_hash": nil,
			"code_issued_at":     nil,
			"code_attempts":      0,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	r.Store.Touch("users")
	return nil
}

func (r *GormRepo) IncrementCodeAttempts(ctx context.Context, userID string) error {
	res := r.Store.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("code_attempts", gorm.Expr("code_attempts + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	r.Store.Touch("users")
	return nil
}

func (r *GormRepo) Addresses(ctx context.Context, userID string) ([]models.Address, error) {
	var addrs []models.Address
	if err := r.Store.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

func (r *GormRepo) WatchAddresses(ctx context.Context, userID string) <-chan []models.Address {
	return store.Watch(ctx, r.Store, func(ctx context.Context) ([]models.Address, error) {
		return r.Addresses(ctx, userID)
	}, "addresses")
}

// SaveAddress creates or rewrites an address. When the address is
// flagged default, the user's previous default is cleared in the same
// transaction so the uniqueness of the default flag holds at every
// commit point.
func (r *GormRepo) SaveAddress(ctx context.Context, a *models.Address) error {
	if a.UserID == "" {
		return fmt.Errorf("user id required: %w", ErrValidation)
	}

	err := r.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", a.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %s does not exist: %w", a.UserID, ErrConstraint)
			}
			return err
		}
		if a.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND id <> ?", a.UserID, a.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(a).Error
	})
	if err != nil {
		return err
	}

	r.Store.Touch("addresses")
	return nil
}

// SetDefaultAddress makes addressID the user's only default via a
// clear-then-set transaction.
func (r *GormRepo) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	err := r.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("address %s: %w", addressID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.Store.Touch("addresses")
	return nil
}

func (r *GormRepo) DeleteAddress(ctx context.Context, userID, addressID string) error {
	res := r.Store.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address %s: %w", addressID, ErrNotFound)
	}
	r.Store.Touch("addresses")
	return nil
}
