package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/shopsphere/internal/middleware"
	"github.com/example/shopsphere/internal/models"
	"github.com/example/shopsphere/internal/services"
)

// PaymentHandler exposes payment recording and refunds.
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type paymentDetailsRequest struct {
	CardNumber    string          `json:"card_number"`
	WalletID      string          `json:"wallet_id"`
	Amount        decimal.Decimal `json:"amount"`
	AccountNumber string          `json:"account_number"`
	RoutingNumber string          `json:"routing_number"`
	GiftCardCode  string          `json:"gift_card_code"`
}

type processPaymentRequest struct {
	OrderID string                `json:"order_id"`
	Method  string                `json:"method"`
	Details paymentDetailsRequest `json:"details"`
}

// ProcessPayment records a payment for an order owned by the caller.
func (h *PaymentHandler) ProcessPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req processPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	details, err := detailsForMethod(req.Method, req.Details)
	if err != nil {
		return serviceError(err)
	}

	result, err := h.payments.ProcessPayment(c.Context(), orderID, userID, details)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

type savePaymentMethodRequest struct {
	Method  string                `json:"method"`
	Details paymentDetailsRequest `json:"details"`
}

// SavePaymentMethod stores a payment instrument for later reuse.
func (h *PaymentHandler) SavePaymentMethod(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req savePaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	details, err := detailsForMethod(req.Method, req.Details)
	if err != nil {
		return serviceError(err)
	}

	methodID, err := h.payments.SavePaymentMethod(c.Context(), userID, details)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"method_id": methodID},
	})
}

// ListPaymentMethods returns the caller's saved instruments.
func (h *PaymentHandler) ListPaymentMethods(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	methods, err := h.payments.GetPaymentMethods(c.Context(), userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": methods})
}

// RefundPayment reverses a completed payment.
func (h *PaymentHandler) RefundPayment(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	refundID, err := h.payments.RefundPayment(c.Context(), paymentID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"refund_id": refundID},
	})
}

// detailsForMethod builds the typed payment-details variant for the wire
// payload's declared method.
func detailsForMethod(method string, req paymentDetailsRequest) (services.PaymentDetails, error) {
	switch method {
	case models.PaymentMethodCreditCard:
		return services.CreditCardDetails{CardNumber: req.CardNumber}, nil
	case models.PaymentMethodVirtualWallet:
		return services.WalletDetails{WalletID: req.WalletID, Amount: req.Amount}, nil
	case models.PaymentMethodBankTransfer:
		return services.BankTransferDetails{
			AccountNumber: req.AccountNumber,
			RoutingNumber: req.RoutingNumber,
		}, nil
	case models.PaymentMethodGiftCard:
		return services.GiftCardDetails{Code: req.GiftCardCode}, nil
	default:
		return nil, services.Invalid("invalid payment method")
	}
}
