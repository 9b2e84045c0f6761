package services

import (
	"github.com/shopspring/decimal"

	"github.com/example/shopsphere/internal/models"
	"github.com/example/shopsphere/internal/utils"
)

// PaymentDetails is the tagged union of per-method payment inputs. Each
// variant carries only the fields its method requires and knows how to
// validate its own shape; the gift-card balance lookup happens in the
// payment service because it needs the store.
type PaymentDetails interface {
	Method() string
	Validate() error
}

// CreditCardDetails carries a card number for credit_card payments.
type CreditCardDetails struct {
	CardNumber string
}

// Method implements PaymentDetails.
func (CreditCardDetails) Method() string { return models.PaymentMethodCreditCard }

// Validate requires the number to normalize to exactly 16 digits passing
// the Luhn checksum.
func (d CreditCardDetails) Validate() error {
	number := utils.NormalizeCardNumber(d.CardNumber)
	if len(number) != 16 || !utils.LuhnValid(number) {
		return Invalid("invalid card number")
	}
	return nil
}

// WalletDetails carries a virtual wallet reference and the amount to draw.
type WalletDetails struct {
	WalletID string
	Amount   decimal.Decimal
}

// Method implements PaymentDetails.
func (WalletDetails) Method() string { return models.PaymentMethodVirtualWallet }

// Validate requires a wallet identifier and a positive amount.
func (d WalletDetails) Validate() error {
	if d.WalletID == "" {
		return Invalid("wallet id is required")
	}
	if !d.Amount.IsPositive() {
		return Invalid("wallet amount must be positive")
	}
	return nil
}

// BankTransferDetails carries account and routing identifiers.
type BankTransferDetails struct {
	AccountNumber string
	RoutingNumber string
}

// Method implements PaymentDetails.
func (BankTransferDetails) Method() string { return models.PaymentMethodBankTransfer }

// Validate requires both identifiers.
func (d BankTransferDetails) Validate() error {
	if d.AccountNumber == "" || d.RoutingNumber == "" {
		return Invalid("account and routing numbers are required")
	}
	return nil
}

// GiftCardDetails carries a gift-card code; the code must resolve to a
// card with positive balance, which the payment service checks.
type GiftCardDetails struct {
	Code string
}

// Method implements PaymentDetails.
func (GiftCardDetails) Method() string { return models.PaymentMethodGiftCard }

// Validate requires a code.
func (d GiftCardDetails) Validate() error {
	if d.Code == "" {
		return Invalid("gift card code is required")
	}
	return nil
}
