package repo

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mkravets/shopcore/internal/config"
	"github.com/mkravets/shopcore/internal/store"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrConstraint = errors.New("constraint violation")
	ErrTransition = errors.New("invalid status transition")
)

// GormRepo is the one data-access API the rest of the application
// uses. It owns entity-to-domain mapping (row joins) and the merge
// semantics of cart and order mutations.
type GormRepo struct {
	Store           *store.Store
	DeliveryFee     decimal.Decimal
	CartMaxQuantity int
}

func New(s *store.Store, cfg *config.Config) *GormRepo {
	return &GormRepo{
		Store:           s,
		DeliveryFee:     cfg.DeliveryFee,
		CartMaxQuantity: cfg.CartMaxQuantity,
	}
}
