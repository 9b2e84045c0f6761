package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/shopsphere/internal/cache"
	"github.com/example/shopsphere/internal/models"
	"github.com/example/shopsphere/internal/utils"
)

// ProductHandler manages the product catalog. Listings and details are
// served through the cache read-through; admin mutations invalidate it.
type ProductHandler struct {
	db       *gorm.DB
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(db *gorm.DB, c cache.Cache, cacheTTL time.Duration) *ProductHandler {
	return &ProductHandler{db: db, cache: c, cacheTTL: cacheTTL}
}

// ListProducts returns a paginated product page, cached per (page, limit).
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	cacheKey := fmt.Sprintf("products_page_%d_%d", pg.Page, pg.Limit)

	if cached, ok := h.cache.Get(c.Context(), cacheKey); ok {
		return c.JSON(fiber.Map{"success": true, "data": json.RawMessage(cached)})
	}

	var products []models.Product
	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	if body, err := json.Marshal(products); err == nil {
		h.cache.Set(c.Context(), cacheKey, string(body), h.cacheTTL)
	}

	return c.JSON(fiber.Map{"success": true, "data": products})
}

// GetProduct returns a single product by ID, cached.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	cacheKey := "product_" + id.String()
	if cached, ok := h.cache.Get(c.Context(), cacheKey); ok {
		return c.JSON(fiber.Map{"success": true, "data": json.RawMessage(cached)})
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if body, err := json.Marshal(product); err == nil {
		h.cache.Set(c.Context(), cacheKey, string(body), h.cacheTTL)
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// CreateProduct persists a new product and drops cached listings.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var payload models.Product
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if payload.Price.IsNegative() || payload.Stock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price and stock must not be negative")
	}

	if err := h.db.Create(&payload).Error; err != nil {
		return err
	}

	h.invalidateListings(c)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// updateProductRequest distinguishes absent fields from explicit zero
// values, so an admin can set stock to 0 or clear a description.
type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	ImageURL    *string          `json:"image_url"`
}

// UpdateProduct updates an existing product and drops its cache entries.
// Only the fields present in the payload are written.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req updateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "price and stock must not be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "price and stock must not be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) > 0 {
		if err := h.db.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
	}

	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		return err
	}

	h.cache.Delete(c.Context(), "product_"+id.String())
	h.invalidateListings(c)

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// invalidateListings drops the first cached listing pages. Deeper pages
// age out with their TTL.
func (h *ProductHandler) invalidateListings(c *fiber.Ctx) {
	for page := 1; page <= 5; page++ {
		h.cache.Delete(c.Context(), fmt.Sprintf("products_page_%d_%d", page, 20))
	}
}
