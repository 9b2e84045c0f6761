package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/shopsphere/internal/config"
	"github.com/example/shopsphere/internal/database"
	"github.com/example/shopsphere/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive and shared
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		TokenExpires:      time.Hour,
		SessionTTL:        time.Hour,
		BcryptCost:        bcrypt.MinCost,
		PasswordMinLength: 8,
	}
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()

	product := models.Product{
		Name:        name,
		Description: name,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Category:    "Electronics",
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, total string) models.Order {
	t.Helper()

	order := models.Order{
		UserID:        userID,
		TotalAmount:   decimal.RequireFromString(total),
		PaymentMethod: models.PaymentMethodCreditCard,
		ShippingAddress: models.ShippingAddress{
			RecipientName: "Alice",
			Street:        "1 Main St",
			City:          "Springfield",
		},
		Status:        models.OrderStatusPending,
		PaymentStatus: models.OrderPaymentPending,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}
