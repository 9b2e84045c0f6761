package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods.
const (
	PaymentMethodCreditCard    = "credit_card"
	PaymentMethodVirtualWallet = "virtual_wallet"
	PaymentMethodBankTransfer  = "bank_transfer"
	PaymentMethodGiftCard      = "gift_card"
)

// Payment statuses. processing -> completed -> refunded.
const (
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusRefunded   = "refunded"
)

// Payment records one payment attempt against an order. TransactionID is
// assigned only when the payment completes.
type Payment struct {
	BaseModel
	OrderID       uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
}

// Refund reverses a completed payment, mirroring its amount.
type Refund struct {
	BaseModel
	PaymentID uuid.UUID       `gorm:"type:uuid;index" json:"payment_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Status    string          `json:"status"`
}

// PaymentMethod is a payment instrument a user saved for reuse. Details
// are encrypted at rest; listings expose only the method and the masked
// label.
type PaymentMethod struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Method    string    `json:"method"`
	Label     string    `json:"label"`
	Details   string    `json:"-"`
	IsDefault bool      `json:"is_default"`
}

// GiftCard backs gift-card payment validation; a card is usable while its
// balance stays positive.
type GiftCard struct {
	BaseModel
	Code    string          `gorm:"uniqueIndex" json:"code"`
	Balance decimal.Decimal `gorm:"type:decimal(12,2)" json:"balance"`
}
