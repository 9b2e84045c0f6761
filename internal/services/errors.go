package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors returned by the core services. Handlers translate these
// into HTTP statuses in one place; anything not listed here is treated as
// a storage failure, logged with detail and reported generically.
var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidPaymentState = errors.New("only completed payments can be refunded")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrMFARequired         = errors.New("mfa code required")
	ErrInvalidMFACode      = errors.New("invalid mfa code")
	ErrInvalidOAuthToken   = errors.New("invalid oauth token")
	ErrAlreadyInWishlist   = errors.New("already in wishlist")
)

// ValidationError reports malformed or missing caller input. Its message
// is safe to surface to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError with the given message.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// isDuplicateKey matches unique-index violations across drivers, for
// writes that race past an existence check.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
