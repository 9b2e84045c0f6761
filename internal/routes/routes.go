package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/shopsphere/internal/cache"
	"github.com/example/shopsphere/internal/config"
	"github.com/example/shopsphere/internal/handlers"
	"github.com/example/shopsphere/internal/middleware"
	"github.com/example/shopsphere/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, store cache.Cache, cfg *config.Config) {
	authService := services.NewAuthService(db, store, cfg, services.NewHTTPIdentityProvider())
	cartService := services.NewCartService(db)
	paymentService := services.NewPaymentService(db, store, cfg.EncryptionKey)
	trackingService := services.NewTrackingService(db)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(db, store, cfg.ProductCacheTTL)
	cartHandler := handlers.NewCartHandler(cartService)
	wishlistHandler := handlers.NewWishlistHandler(db, store, cfg.ProductCacheTTL)
	orderHandler := handlers.NewOrderHandler(trackingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/oauth", authHandler.OAuthLogin)

	// Catalog routes
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", productHandler.CreateProduct)
	products.Put("/:id", productHandler.UpdateProduct)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Post("/auth/mfa/enable", authHandler.EnableMFA)

	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Delete("/cart/items/:productId", cartHandler.RemoveItem)
	protected.Post("/cart/checkout", cartHandler.Checkout)

	protected.Get("/wishlist", wishlistHandler.ListWishlist)
	protected.Get("/wishlist/count", wishlistHandler.WishlistCount)
	protected.Get("/wishlist/contains/:productId", wishlistHandler.Contains)
	protected.Post("/wishlist", wishlistHandler.AddToWishlist)
	protected.Delete("/wishlist/:productId", wishlistHandler.RemoveFromWishlist)

	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Get("/orders/:id/tracking", orderHandler.GetTracking)
	protected.Put("/orders/:id/status", orderHandler.UpdateStatus)

	protected.Post("/payments", paymentHandler.ProcessPayment)
	protected.Get("/payments/methods", paymentHandler.ListPaymentMethods)
	protected.Post("/payments/methods", paymentHandler.SavePaymentMethod)
	protected.Post("/payments/:id/refund", paymentHandler.RefundPayment)
}
