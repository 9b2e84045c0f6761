package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopsphere/internal/cache"
	"github.com/example/shopsphere/internal/middleware"
	"github.com/example/shopsphere/internal/models"
	"github.com/example/shopsphere/internal/services"
)

// WishlistHandler manages per-user wishlists.
type WishlistHandler struct {
	db       *gorm.DB
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewWishlistHandler constructs a WishlistHandler.
func NewWishlistHandler(db *gorm.DB, c cache.Cache, cacheTTL time.Duration) *WishlistHandler {
	return &WishlistHandler{db: db, cache: c, cacheTTL: cacheTTL}
}

// ListWishlist returns the user's wishlist, newest first.
func (h *WishlistHandler) ListWishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	cacheKey := wishlistCacheKey(userID)
	if cached, ok := h.cache.Get(c.Context(), cacheKey); ok {
		return c.JSON(fiber.Map{"success": true, "data": json.RawMessage(cached)})
	}

	var items []models.WishlistItem
	if err := h.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	// cached pages embed product rows, so they must age out even when no
	// wishlist mutation invalidates them
	if body, err := json.Marshal(items); err == nil {
		h.cache.Set(c.Context(), cacheKey, string(body), h.cacheTTL)
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

type wishlistRequest struct {
	ProductID string `json:"product_id"`
}

// AddToWishlist marks a product as wished. Adding a product twice is a
// conflict.
func (h *WishlistHandler) AddToWishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req wishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var existing models.WishlistItem
	err = h.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return serviceError(services.ErrAlreadyInWishlist)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	item := models.WishlistItem{UserID: userID, ProductID: productID}
	if err := h.db.Create(&item).Error; err != nil {
		return err
	}

	h.cache.Delete(c.Context(), wishlistCacheKey(userID))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// RemoveFromWishlist unmarks a product; removing an absent entry succeeds.
func (h *WishlistHandler) RemoveFromWishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	if err := h.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		return err
	}

	h.cache.Delete(c.Context(), wishlistCacheKey(userID))

	return c.JSON(fiber.Map{"success": true})
}

// Contains reports whether a product is on the user's wishlist.
func (h *WishlistHandler) Contains(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var count int64
	if err := h.db.Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "in_wishlist": count > 0})
}

// WishlistCount returns how many products the user has wished.
func (h *WishlistHandler) WishlistCount(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var count int64
	if err := h.db.Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "count": count})
}

func wishlistCacheKey(userID uuid.UUID) string {
	return "wishlist_" + userID.String()
}
