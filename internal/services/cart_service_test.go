package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopsphere/internal/models"
)

var testAddress = models.ShippingAddress{
	RecipientName: "Alice",
	Email:         "alice@example.com",
	Phone:         "555-0100",
	Street:        "1 Main St",
	City:          "Springfield",
	State:         "IL",
	Zip:           "62701",
}

func TestAddItemAccumulates(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedProduct(t, db, "Laptop Pro", "999.99", 10)

	require.NoError(t, svc.AddItem(ctx, userID, product.ID, 2))
	require.NoError(t, svc.AddItem(ctx, userID, product.ID, 3))

	var items []models.CartItem
	require.NoError(t, db.Where("user_id = ?", userID).Find(&items).Error)
	require.Len(t, items, 1, "repeat adds must accumulate on one row")
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItemValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Laptop Pro", "999.99", 10)

	assert.True(t, IsValidation(svc.AddItem(ctx, uuid.New(), product.ID, 0)))
	assert.True(t, IsValidation(svc.AddItem(ctx, uuid.New(), product.ID, -1)))
	assert.True(t, IsValidation(svc.AddItem(ctx, uuid.New(), uuid.Nil, 1)))
}

func TestAddItemUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddItemInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedProduct(t, db, "Action Camera", "799.99", 3)

	err := svc.AddItem(ctx, userID, product.ID, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetCartTotal(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	userID := uuid.New()
	laptop := seedProduct(t, db, "Laptop Pro", "999.99", 5)
	hub := seedProduct(t, db, "USB-C Hub", "49.99", 30)

	require.NoError(t, svc.AddItem(ctx, userID, laptop.ID, 2))
	require.NoError(t, svc.AddItem(ctx, userID, hub.ID, 1))

	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("2049.97")),
		"got total %s", cart.Total)
}

func TestRemoveItemIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedProduct(t, db, "Phone Case", "19.99", 50)

	require.NoError(t, svc.AddItem(ctx, userID, product.ID, 1))
	require.NoError(t, svc.RemoveItem(ctx, userID, product.ID))
	require.NoError(t, svc.RemoveItem(ctx, userID, product.ID))

	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	_, err := svc.Checkout(context.Background(), uuid.New(), "credit_card", testAddress)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "empty-cart checkout must write nothing")
}

func TestCheckoutValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, uuid.New(), "", testAddress)
	assert.True(t, IsValidation(err))

	_, err = svc.Checkout(ctx, uuid.New(), "credit_card", models.ShippingAddress{})
	assert.True(t, IsValidation(err))
}

func TestCheckoutSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedProduct(t, db, "Laptop Pro", "999.99", 5)
	require.NoError(t, svc.AddItem(ctx, userID, product.ID, 2))

	orderID, err := svc.Checkout(ctx, userID, "credit_card", testAddress)
	require.NoError(t, err)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, "id = ?", orderID).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("1999.98")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(product.Price))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 3, reloaded.Stock)

	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckoutPriceIsSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedProduct(t, db, "Smart Watch", "299.99", 15)
	require.NoError(t, svc.AddItem(ctx, userID, product.ID, 1))

	orderID, err := svc.Checkout(ctx, userID, "credit_card", testAddress)
	require.NoError(t, err)

	// a later price change must not rewrite order history
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("999.99")).Error)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, "id = ?", orderID).Error)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("299.99")))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("299.99")))
}

func TestCheckoutRollsBackOnStockShortfall(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedProduct(t, db, "Action Camera", "799.99", 3)
	require.NoError(t, svc.AddItem(ctx, userID, product.ID, 2))

	// stock drains between add and checkout
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("stock", 1).Error)

	_, err := svc.Checkout(ctx, userID, "credit_card", testAddress)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// the whole transaction must have rolled back
	var orders, orderItems int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&orderItems).Error)
	assert.Zero(t, orders)
	assert.Zero(t, orderItems)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 1, reloaded.Stock)

	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1, "cart must survive a failed checkout")
}
