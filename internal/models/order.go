package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. The lifecycle is pending -> confirmed/cancelled ->
// processing -> shipped -> delivered.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

// Order payment statuses.
const (
	OrderPaymentPending  = "pending"
	OrderPaymentPaid     = "paid"
	OrderPaymentRefunded = "refunded"
)

var orderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusConfirmed:  {},
	OrderStatusCancelled:  {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s string) bool {
	_, ok := orderStatuses[s]
	return ok
}

// ShippingAddress is stored denormalized on the order so later address
// edits never rewrite order history.
type ShippingAddress struct {
	RecipientName string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
}

// Order is a completed checkout. TotalAmount is a snapshot taken at
// checkout time and is never recomputed from line items afterwards.
type Order struct {
	BaseModel
	UserID          uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem snapshots a cart line at purchase time. UnitPrice is copied,
// not referenced, so later product price changes leave history intact.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid" json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`
}

// OrderStatusLog is the append-only timeline backing order tracking.
type OrderStatusLog struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Status  string    `json:"status"`
	Notes   string    `json:"notes"`
}
