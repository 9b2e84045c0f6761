package models

import "github.com/google/uuid"

// CartItem is a single pre-purchase line owned by one user. The
// (user_id, product_id) pair is unique; repeated adds accumulate quantity
// on the existing row instead of creating a second one.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
}
