package routes

import (
	"time"

	"github.com/breedfinder/breedfinder-backend/internal/config"
	"github.com/breedfinder/breedfinder-backend/internal/handlers"
	"github.com/breedfinder/breedfinder-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	scanHandler *handlers.ScanHandler,
	breedHandler *handlers.BreedHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Public auth endpoints get a stricter rate limit
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)

	// Scan lifecycle (JWT required)
	protected := api.Group("", middleware.JWTProtected(cfg))
	protected.Post("/scans", scanHandler.Create)
	protected.Post("/scans/upload", scanHandler.CreateWithUpload)
	protected.Get("/scans", scanHandler.List)
	protected.Get("/scans/:id", scanHandler.GetByID)
	protected.Post("/scans/:id/health", scanHandler.AttachHealth)
	protected.Post("/scans/:id/purchase", scanHandler.Purchase)
	protected.Delete("/scans/:id", scanHandler.Delete)

	// Marketplace
	protected.Get("/market/listings", scanHandler.ListMarket)
	protected.Get("/breeds/:breed/facts", breedHandler.Facts)
	protected.Get("/breeds/:breed/image", breedHandler.Image)
	protected.Post("/narrate", breedHandler.Narrate)

	// Admin panel (JWT + admin role)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/scans", adminHandler.ListScans)
	admin.Delete("/scans/:id", adminHandler.PurgeScan)
	admin.Get("/stats", adminHandler.Stats)
}
