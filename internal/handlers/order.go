package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopsphere/internal/middleware"
	"github.com/example/shopsphere/internal/services"
	"github.com/example/shopsphere/internal/utils"
)

// OrderHandler exposes order history and tracking endpoints.
type OrderHandler struct {
	tracking *services.TrackingService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(tracking *services.TrackingService) *OrderHandler {
	return &OrderHandler{tracking: tracking}
}

// ListOrders returns the authenticated user's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.tracking.GetUserOrders(c.Context(), userID, pg.Page, pg.Limit)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order with its items, only for its owner.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.tracking.GetOrder(c.Context(), orderID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// GetTracking returns the order's status timeline, oldest entry first.
// Ownership is checked before the timeline is read.
func (h *OrderHandler) GetTracking(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if _, err := h.tracking.GetOrder(c.Context(), orderID, userID); err != nil {
		return serviceError(err)
	}

	history, err := h.tracking.GetTrackingHistory(c.Context(), orderID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": history})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateStatus moves an order to a new status and logs the transition.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.tracking.UpdateOrderStatus(c.Context(), orderID, req.Status, req.Notes); err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true})
}
