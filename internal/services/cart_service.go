package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/shopsphere/internal/models"
)

// CartService owns the cart and the checkout conversion. Carts live in the
// relational store; the cache is never authoritative for them.
type CartService struct {
	db *gorm.DB
}

// NewCartService constructs a CartService.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// CartLine is one cart row joined with the current product.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Cart is the computed cart document: lines plus derived total.
type Cart struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// GetCart returns all cart lines for a user with the running total,
// rounded to two decimal places.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	return getCart(s.db.WithContext(ctx), userID)
}

func getCart(db *gorm.DB, userID uuid.UUID) (*Cart, error) {
	var items []models.CartItem
	if err := db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	cart := &Cart{Items: make([]CartLine, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		cart.Items = append(cart.Items, CartLine{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		cart.Total = cart.Total.Add(lineTotal)
	}
	cart.Total = cart.Total.Round(2)

	return cart, nil
}

// AddItem puts quantity units of a product into the user's cart. Repeated
// adds accumulate on the existing row. The product's current stock must
// cover the requested quantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if productID == uuid.Nil {
		return Invalid("invalid product")
	}
	if quantity <= 0 {
		return Invalid("quantity must be positive")
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if product.Stock < quantity {
		return ErrInsufficientStock
	}

	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
		}),
	}).Create(&item).Error
}

// RemoveItem deletes the matching cart row. Removing an absent row is not
// an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// Checkout converts the user's cart into an order as one atomic unit:
// order insert, line-item snapshots, stock decrements, cart delete. Any
// failure rolls back all four effects. Stock is decremented with a
// conditional update so concurrent checkouts cannot oversell.
func (s *CartService) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string, address models.ShippingAddress) (uuid.UUID, error) {
	if paymentMethod == "" {
		return uuid.Nil, Invalid("payment method is required")
	}
	if address.RecipientName == "" || address.Street == "" {
		return uuid.Nil, Invalid("shipping address is incomplete")
	}

	var orderID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := getCart(tx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		order := models.Order{
			UserID:          userID,
			TotalAmount:     cart.Total,
			PaymentMethod:   paymentMethod,
			ShippingAddress: address,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.OrderPaymentPending,
		}
		for _, line := range cart.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
			})
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, line := range cart.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return orderID, nil
}
