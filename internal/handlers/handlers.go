package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/shopsphere/internal/services"
)

// ErrorHandler renders every error as the {success, message} JSON envelope.
// Unexpected errors are logged with detail and reported generically so raw
// driver messages never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code == fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
		message = "internal server error"
	}

	return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
}

// serviceError translates core service errors into HTTP errors. Anything
// unrecognized passes through to ErrorHandler as a 500.
func serviceError(err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return fiber.NewError(fiber.StatusBadRequest, validation.Message)
	}

	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyInWishlist),
		errors.Is(err, services.ErrInvalidPaymentState):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		// Not-found is reported generically so order and payment ids can't
		// be probed for other users' data.
		return fiber.NewError(fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrMFARequired),
		errors.Is(err, services.ErrInvalidMFACode),
		errors.Is(err, services.ErrInvalidOAuthToken):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrPaymentFailed):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return err
}
