package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/shopsphere/internal/cache"
	"github.com/example/shopsphere/internal/config"
	"github.com/example/shopsphere/internal/database"
	"github.com/example/shopsphere/internal/handlers"
	"github.com/example/shopsphere/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	var store cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			// Caching is best-effort; the store stays authoritative.
			log.Printf("redis unavailable, continuing without cache: %v", err)
		} else {
			store = redisCache
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "ShopSphere Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, store, cfg)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
