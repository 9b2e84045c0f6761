package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopsphere/internal/cache"
	"github.com/example/shopsphere/internal/models"
	"github.com/example/shopsphere/internal/utils"
)

const paymentCacheTTL = 24 * time.Hour

// PaymentService records payments against orders, manages saved payment
// methods and handles refunds.
type PaymentService struct {
	db    *gorm.DB
	cache cache.Cache
	key   []byte
}

// NewPaymentService constructs a PaymentService. The secret is stretched
// into the AES key that seals saved payment details.
func NewPaymentService(db *gorm.DB, c cache.Cache, secret string) *PaymentService {
	key := sha256.Sum256([]byte(secret))
	return &PaymentService{db: db, cache: c, key: key[:]}
}

// PaymentResult is returned from a successful ProcessPayment call.
type PaymentResult struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	TransactionID string    `json:"transaction_id"`
}

// ProcessPayment validates the payment details for their method, then as
// one transaction inserts a payment row, assigns a transaction id, flips
// the payment to completed and the order to confirmed. Validation failures
// abort before any row is written; unexpected failures roll back, are
// logged with detail, and surface as a generic payment failure.
func (s *PaymentService) ProcessPayment(ctx context.Context, orderID, userID uuid.UUID, details PaymentDetails) (*PaymentResult, error) {
	if details == nil {
		return nil, Invalid("payment details are required")
	}

	var order models.Order
	if err := s.db.WithContext(ctx).
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := details.Validate(); err != nil {
		return nil, err
	}
	if gift, ok := details.(GiftCardDetails); ok {
		if err := s.checkGiftCard(ctx, gift.Code); err != nil {
			return nil, err
		}
	}

	payment := models.Payment{
		OrderID: order.ID,
		UserID:  userID,
		Method:  details.Method(),
		Amount:  order.TotalAmount,
		Status:  models.PaymentStatusProcessing,
	}
	transactionID := generateTransactionID()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"status":         models.PaymentStatusCompleted,
				"transaction_id": transactionID,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":         models.OrderStatusConfirmed,
				"payment_status": models.OrderPaymentPaid,
			}).Error
	})
	if err != nil {
		log.Printf("[Payment] processing order %s failed: %v", order.ID, err)
		return nil, ErrPaymentFailed
	}

	s.cacheCompletedPayment(ctx, payment.ID, transactionID)

	return &PaymentResult{PaymentID: payment.ID, TransactionID: transactionID}, nil
}

// RefundPayment reverses a completed payment: it inserts a refund row
// mirroring the payment amount and flips the payment to refunded, as one
// transaction. Payments in any other state are rejected.
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID uuid.UUID) (uuid.UUID, error) {
	var refundID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		if payment.Status != models.PaymentStatusCompleted {
			return ErrInvalidPaymentState
		}

		refund := models.Refund{
			PaymentID: payment.ID,
			Amount:    payment.Amount,
			Status:    models.PaymentStatusProcessing,
		}
		if err := tx.Create(&refund).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("status", models.PaymentStatusRefunded).Error; err != nil {
			return err
		}

		refundID = refund.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.cache.Delete(ctx, paymentCacheKey(paymentID))

	return refundID, nil
}

// SavePaymentMethod validates a payment instrument and stores it for
// reuse. Details are encrypted before they touch the database.
func (s *PaymentService) SavePaymentMethod(ctx context.Context, userID uuid.UUID, details PaymentDetails) (uuid.UUID, error) {
	if details == nil {
		return uuid.Nil, Invalid("payment details are required")
	}
	if err := details.Validate(); err != nil {
		return uuid.Nil, err
	}

	body, err := json.Marshal(details)
	if err != nil {
		return uuid.Nil, err
	}
	encrypted, err := utils.Encrypt(s.key, body)
	if err != nil {
		return uuid.Nil, err
	}

	method := models.PaymentMethod{
		UserID:  userID,
		Method:  details.Method(),
		Label:   maskLabel(details),
		Details: encrypted,
	}
	if err := s.db.WithContext(ctx).Create(&method).Error; err != nil {
		return uuid.Nil, err
	}

	return method.ID, nil
}

// GetPaymentMethods lists the user's saved instruments, newest first.
// Encrypted details never leave the service.
func (s *PaymentService) GetPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// maskLabel derives the client-facing name of a saved instrument without
// exposing the full detail.
func maskLabel(details PaymentDetails) string {
	switch d := details.(type) {
	case CreditCardDetails:
		number := utils.NormalizeCardNumber(d.CardNumber)
		return "card ending " + number[len(number)-4:]
	case WalletDetails:
		return "wallet " + d.WalletID
	case BankTransferDetails:
		if len(d.AccountNumber) > 4 {
			return "account ending " + d.AccountNumber[len(d.AccountNumber)-4:]
		}
		return "account ending " + d.AccountNumber
	case GiftCardDetails:
		return "gift card"
	default:
		return details.Method()
	}
}

func (s *PaymentService) checkGiftCard(ctx context.Context, code string) error {
	var card models.GiftCard
	if err := s.db.WithContext(ctx).First(&card, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Invalid("unknown gift card")
		}
		return err
	}
	if !card.Balance.IsPositive() {
		return Invalid("gift card has no balance")
	}
	return nil
}

func (s *PaymentService) cacheCompletedPayment(ctx context.Context, paymentID uuid.UUID, transactionID string) {
	body, err := json.Marshal(map[string]string{
		"transaction_id": transactionID,
		"status":         models.PaymentStatusCompleted,
	})
	if err != nil {
		return
	}
	s.cache.Set(ctx, paymentCacheKey(paymentID), string(body), paymentCacheTTL)
}

func paymentCacheKey(paymentID uuid.UUID) string {
	return "payment_" + paymentID.String()
}

// generateTransactionID builds a TXN-<timestamp>-<random hex> id.
// Uniqueness is probabilistic, not guaranteed.
func generateTransactionID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("TXN-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("TXN-%d-%s", time.Now().Unix(), hex.EncodeToString(buf))
}
