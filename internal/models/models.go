package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID             string            `gorm:"primaryKey;size:36"        json:"id"`
	Name           string            `gorm:"not null"                  json:"name"`
	Description    string            `gorm:"not null"                  json:"description"`
	Price          float64           `gorm:"not null;check:price >= 0" json:"price"`
	Category       string            `gorm:"index;not null"            json:"category"`
	ImageURL       *string           `json:"image_url"`
	Specifications map[string]string `gorm:"serializer:json"           json:"specifications"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (Product) TableName() string { return "products" }

type Category struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	Name     string  `gorm:"not null"           json:"name"`
	IconURL  *string `json:"icon_url"`
	Position int     `gorm:"not null"           json:"position"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (Category) TableName() string { return "categories" }

type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Email        string `gorm:"unique;not null"    json:"email"`
	PasswordHash string `gorm:"not null"           json:"-"`
	Role         string `gorm:"not null;default:user" json:"role"`

	// Second-factor challenge state, populated on login and cleared
	// once the code is verified.
	SecurityCodeHash *string    `json:"-"`
	CodeIssuedAt     *time.Time `json:"-"`
	CodeAttempts     int        `gorm:"not null;default:0" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (User) TableName() string { return "users" }

type Address struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	UserID     string `gorm:"size:36;index;not null" json:"user_id"`
	Street     string `gorm:"not null"           json:"street"`
	City       string `gorm:"not null"           json:"city"`
	PostalCode string `gorm:"not null"           json:"postal_code"`
	Country    string `gorm:"not null"           json:"country"`
	IsDefault  bool   `gorm:"not null;default:false" json:"is_default"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (Address) TableName() string { return "addresses" }

// CartItem is one cart line. UserID is the cart scope; the empty
// string is the guest cart. The scope is a plain column rather than a
// nullable FK so the (product_id, user_id) unique index also merges
// guest lines (sqlite treats NULLs in a unique index as distinct).
type CartItem struct {
	ID        string `gorm:"primaryKey;size:36"                                json:"id"`
	ProductID string `gorm:"size:36;uniqueIndex:idx_cart_product_scope;not null" json:"product_id"`
	UserID    string `gorm:"size:36;uniqueIndex:idx_cart_product_scope"        json:"user_id"`
	Quantity  int    `gorm:"not null;check:quantity >= 1"                      json:"quantity"`

	Product Product `gorm:"constraint:OnDelete:CASCADE" json:"product"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (CartItem) TableName() string { return "cart_items" }

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID                string      `gorm:"primaryKey;size:36" json:"id"`
	UserID            string      `gorm:"size:36;index;not null" json:"user_id"`
	TotalPrice        float64     `gorm:"not null"           json:"total_price"`
	Status            OrderStatus `gorm:"not null"           json:"status"`
	DeliveryAddressID string      `gorm:"size:36;not null"   json:"delivery_address_id"`
	CreatedAt         time.Time   `gorm:"not null"           json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null"           json:"updated_at"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots the product at purchase time. ProductID is kept
// for reference only; name and unit price are copied so later product
// edits never rewrite order history.
type OrderItem struct {
	ID          string  `gorm:"primaryKey;size:36"     json:"id"`
	OrderID     string  `gorm:"size:36;index;not null" json:"order_id"`
	ProductID   string  `gorm:"size:36;not null"       json:"product_id"`
	ProductName string  `gorm:"not null"               json:"product_name"`
	UnitPrice   float64 `gorm:"not null"               json:"unit_price"`
	Quantity    int     `gorm:"not null;check:quantity >= 1" json:"quantity"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

func (OrderItem) TableName() string { return "order_items" }

// Setting is one durable preference row.
type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `gorm:"not null"   json:"value"`
}

func (Setting) TableName() string { return "settings" }

func All() []any {
	return []any{
		&Product{},
		&Category{},
		&User{},
		&Address{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Setting{},
	}
}
