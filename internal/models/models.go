package models

import (
	"time"
)

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Title       string    `gorm:"not null"                        json:"title"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                        json:"price"`
	Image       string    `json:"image"`
	Category    string    `gorm:"index"                           json:"category"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	IsActive    bool      `gorm:"not null;default:true"           json:"is_active"`
	Popular     bool      `gorm:"not null;default:false"          json:"popular"`
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	IsActive     bool      `gorm:"not null;default:true"    json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	Token     string `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	Role      string `gorm:"not null"             json:"role"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}

// Order statuses. An order starts pending and is moved along by admin
// actions only.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const PaymentCashOnDelivery = "Cash on Delivery"

// ValidOrderStatus reports whether s is one of the order status values.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type ShippingInfo struct {
	FullName   string `json:"full_name"   form:"fullName"`
	Address    string `json:"address"     form:"address"`
	City       string `json:"city"        form:"city"`
	PostalCode string `json:"postal_code" form:"postalCode"`
	Country    string `json:"country"     form:"country"`
}

type Order struct {
	ID            uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string       `gorm:"uniqueIndex;not null"     json:"order_number"`
	UserID        uint         `gorm:"index;not null"           json:"user_id"`
	Items         []OrderItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingInfo  ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_info"`
	IsPaid        bool         `gorm:"not null;default:false"   json:"is_paid"`
	PaymentMethod string       `gorm:"not null"                 json:"payment_method"`
	Status        string       `gorm:"not null;default:pending" json:"status"`
	TotalAmount   float64      `gorm:"not null"                 json:"total_amount"`
	CreatedAt     time.Time    `gorm:"index"                    json:"created_at"`
}

// OrderItem is a frozen snapshot of a cart line; title, price and image are
// copied at checkout so later product edits never touch order history.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"             json:"id"`
	OrderID   uint    `gorm:"index;not null"         json:"order_id"`
	ProductID uint    `gorm:"not null"               json:"product_id"`
	Title     string  `gorm:"not null"               json:"title"`
	Price     float64 `gorm:"not null"               json:"price"`
	Qty       int     `gorm:"not null;check:qty > 0" json:"qty"`
	Image     string  `json:"image"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"                                   json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_review_user_product" json:"product_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_user_product" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"   json:"rating"`
	Comment   string    `json:"comment"`
	IsVisible bool      `gorm:"not null;default:true"                        json:"is_visible"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one browser session: the cart blob plus the signed-in user, if
// any. Payload holds the JSON-encoded cart.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint      `gorm:"index"              json:"user_id"`
	Payload   string    `gorm:"type:text"          json:"-"`
	ExpiresAt time.Time `gorm:"index"              json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
