// Package routes defines the API routing configuration.
// It builds the services, wires them into handlers and mounts every route
// with its authentication requirements.
package routes

import (
	"storeadmin/internal/config"
	"storeadmin/internal/events"
	"storeadmin/internal/gateway"
	"storeadmin/internal/handlers"
	"storeadmin/internal/middleware"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/repositories/cache"
	"storeadmin/internal/services/address"
	"storeadmin/internal/services/auth"
	"storeadmin/internal/services/blog"
	"storeadmin/internal/services/cart"
	"storeadmin/internal/services/catalog"
	"storeadmin/internal/services/dashboard"
	"storeadmin/internal/services/kyc"
	"storeadmin/internal/services/ledger"
	"storeadmin/internal/services/order"
	"storeadmin/internal/services/returns"
	"storeadmin/internal/services/review"
	"storeadmin/internal/services/support"
	"storeadmin/internal/services/user"
	"storeadmin/internal/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-wide resources the routes are built from.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Cache     *cache.CacheService // nil disables caching
	Assets    storage.AssetStore
	Publisher events.Publisher
	Gateway   gateway.RefundGateway
	Log       *zap.Logger
}

// SetupRoutes configures all application routes under /api/v1.
func SetupRoutes(app *fiber.App, d Deps) {
	cfg := d.Config
	store := repositories.New(d.DB)

	var c cache.Cache
	var pinger handlers.Pinger
	if d.Cache != nil {
		c = d.Cache
		pinger = d.Cache
	}

	authService := auth.NewService(store, cfg.JWT, c, d.Log)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWT)
	cartHandler := handlers.NewCartHandler(cart.NewService(store, d.Log))
	orderHandler := handlers.NewOrderHandler(order.NewService(store, cfg.Pricing, d.Publisher, d.Log))
	addressHandler := handlers.NewAddressHandler(address.NewService(store, d.Log))
	kycHandler := handlers.NewKYCHandler(kyc.NewService(store, d.Assets, d.Publisher, d.Log))
	transactionHandler := handlers.NewTransactionHandler(ledger.NewService(store, d.Gateway, d.Publisher, d.Log))
	returnHandler := handlers.NewReturnHandler(returns.NewService(store, d.Log))
	reviewHandler := handlers.NewReviewHandler(review.NewService(store, d.Log))
	supportHandler := handlers.NewSupportHandler(support.NewService(store, d.Log))
	productHandler := handlers.NewProductHandler(catalog.NewService(store, d.Assets, c, cfg.ProductTTL, d.Log))
	blogHandler := handlers.NewBlogHandler(blog.NewService(store, d.Log))
	userHandler := handlers.NewUserHandler(user.NewService(store, c, d.Log))
	dashboardHandler := handlers.NewDashboardHandler(dashboard.NewService(store, c, cfg.DashboardTTL, d.Log))
	healthHandler := handlers.NewHealthHandler(d.DB, pinger)

	authMiddleware := middleware.NewAuth(cfg.JWT, authService, d.Log)
	authed := authMiddleware.Handler
	optional := authMiddleware.Optional
	admin := []fiber.Handler{authed, middleware.AdminOnly}

	app.Get("/health", healthHandler.Check)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the storeadmin API",
			"version": "1.0.0",
			"docs":    "/api/v1",
		})
	})

	v1 := app.Group("/api/v1")

	// Auth
	authGroup := v1.Group("/auth")
	authGroup.Post("/admin/login", authHandler.AdminLogin)
	authGroup.Post("/customer/login", authHandler.CustomerLogin)
	authGroup.Post("/customer/register", authHandler.Register)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Get("/me", authed, authHandler.Me)
	authGroup.Post("/logout", authed, authHandler.Logout)

	setupProductRoutes(v1, productHandler, optional, admin)
	setupCartRoutes(v1.Group("/cart", authed, middleware.HasPermission(models.PermissionCartWrite)), cartHandler)
	setupOrderRoutes(v1.Group("/orders", authed), orderHandler)
	setupAddressRoutes(v1.Group("/addresses", authed), addressHandler)
	setupKYCRoutes(v1.Group("/kyc", authed), kycHandler)
	setupTransactionRoutes(v1.Group("/transactions", authed), transactionHandler)

	// Return orders
	returnsGroup := v1.Group("/return-orders", admin...)
	returnsGroup.Get("/", returnHandler.List)
	returnsGroup.Get("/stats", returnHandler.Stats)
	returnsGroup.Get("/:id", returnHandler.Get)
	returnsGroup.Post("/", returnHandler.Create)
	returnsGroup.Put("/:id/status", returnHandler.UpdateStatus)

	// Reviews
	reviews := v1.Group("/reviews")
	reviews.Get("/", optional, reviewHandler.List)
	reviews.Get("/stats", append(admin, reviewHandler.Stats)...)
	reviews.Get("/:id", reviewHandler.Get)
	reviews.Post("/", authed, middleware.HasPermission(models.PermissionReviewWrite), reviewHandler.Create)
	reviews.Put("/:id/status", append(admin, reviewHandler.UpdateStatus)...)
	reviews.Delete("/:id", append(admin, reviewHandler.Delete)...)

	// Support
	supportGroup := v1.Group("/support", authed)
	supportGroup.Get("/", supportHandler.List)
	supportGroup.Get("/stats", middleware.AdminOnly, supportHandler.Stats)
	supportGroup.Get("/:id", supportHandler.Get)
	supportGroup.Post("/", middleware.HasPermission(models.PermissionSupportWrite), supportHandler.Create)
	supportGroup.Put("/:id", middleware.AdminOnly, supportHandler.Update)
	supportGroup.Post("/:id/rating", middleware.HasPermission(models.PermissionSupportWrite), supportHandler.Rate)

	// Customers
	users := v1.Group("/users", admin...)
	users.Get("/customers", userHandler.ListCustomers)
	users.Get("/customers/stats", userHandler.Stats)
	users.Post("/customers", userHandler.CreateCustomer)
	users.Get("/customers/:id", userHandler.GetCustomer)
	users.Put("/customers/:id/status", userHandler.UpdateStatus)

	// Blogs
	blogs := v1.Group("/blogs")
	blogs.Get("/", optional, blogHandler.List)
	blogs.Get("/stats", append(admin, blogHandler.Stats)...)
	blogs.Get("/slug/:slug", blogHandler.View)
	blogs.Get("/:id", append(admin, blogHandler.Get)...)
	blogs.Post("/", append(admin, blogHandler.Create)...)
	blogs.Put("/:id", append(admin, blogHandler.Update)...)
	blogs.Delete("/:id", append(admin, blogHandler.Delete)...)

	v1.Get("/dashboard/stats", append(admin, dashboardHandler.GetStats)...)

	settings := v1.Group("/settings", authed)
	settings.Put("/password", middleware.HasPermission(models.PermissionChangePassword), authHandler.ChangePassword)
	settings.Put("/profile", middleware.HasPermission(models.PermissionProfileWrite), authHandler.UpdateProfile)
	settings.Put("/email", middleware.HasPermission(models.PermissionProfileWrite), authHandler.ChangeEmail)
}

func setupProductRoutes(v1 fiber.Router, h *handlers.ProductHandler, optional fiber.Handler, admin []fiber.Handler) {
	products := v1.Group("/products")
	products.Get("/", optional, h.List)
	products.Get("/categories", optional, h.ListCategories)
	products.Post("/categories", append(admin, h.CreateCategory)...)
	products.Get("/export", append(admin, h.Export)...)
	products.Post("/import", append(admin, h.Import)...)
	products.Get("/:id", optional, h.Get)
	products.Post("/", append(admin, h.Create)...)
	products.Put("/:id", append(admin, h.Update)...)
	products.Delete("/:id", append(admin, h.Delete)...)
	products.Put("/:id/attributes", append(admin, h.SetAttributes)...)
	products.Post("/:id/variants", append(admin, h.AddVariant)...)
	products.Delete("/:id/variants/:variantId", append(admin, h.DeleteVariant)...)

	images := v1.Group("/products/:productId/images")
	images.Get("/", h.ListImages)
	images.Post("/", append(admin, h.UploadImages)...)
	images.Put("/reorder", append(admin, h.ReorderImages)...)
	images.Put("/:imageId/primary", append(admin, h.SetPrimaryImage)...)
	images.Delete("/:imageId", append(admin, h.DeleteImage)...)
}

func setupCartRoutes(cartGroup fiber.Router, h *handlers.CartHandler) {
	cartGroup.Get("/", h.Get)
	cartGroup.Post("/", h.AddItem)
	cartGroup.Post("/sync", h.Sync)
	cartGroup.Put("/:id", h.UpdateItem)
	cartGroup.Delete("/:id", h.RemoveItem)
	cartGroup.Delete("/", h.Clear)
}

func setupOrderRoutes(orders fiber.Router, h *handlers.OrderHandler) {
	orders.Get("/", middleware.AdminOnly, h.List)
	orders.Get("/stats", middleware.AdminOnly, h.Stats)
	orders.Get("/customer/:customerId", middleware.HasPermission(models.PermissionOrderRead), h.ListByCustomer)
	orders.Get("/:id", middleware.HasPermission(models.PermissionOrderRead), h.Get)
	orders.Post("/", middleware.HasPermission(models.PermissionOrderCreate), h.Create)
	orders.Put("/:id/status", middleware.AdminOnly, h.UpdateStatus)
}

func setupAddressRoutes(addresses fiber.Router, h *handlers.AddressHandler) {
	addresses.Get("/stats", middleware.AdminOnly, h.Stats)
	addresses.Get("/", middleware.AdminOnly, h.List)
	addresses.Get("/customer/:customerId", h.ListByCustomer)
	addresses.Get("/:id", h.Get)
	addresses.Post("/", middleware.HasPermission(models.PermissionAddressWrite), h.Create)
	addresses.Put("/:id", middleware.HasPermission(models.PermissionAddressWrite), h.Update)
	addresses.Patch("/:id/set-default", middleware.HasPermission(models.PermissionAddressWrite), h.SetDefault)
	addresses.Delete("/:id", middleware.HasPermission(models.PermissionAddressWrite), h.Delete)
}

func setupKYCRoutes(kycGroup fiber.Router, h *handlers.KYCHandler) {
	kycGroup.Post("/submit", middleware.HasPermission(models.PermissionKYCSubmit), h.Submit)
	kycGroup.Get("/me", h.GetStatus)

	kycGroup.Get("/", middleware.AdminOnly, h.List)
	kycGroup.Get("/stats", middleware.AdminOnly, h.Stats)
	kycGroup.Post("/", middleware.AdminOnly, h.CreateForUser)
	kycGroup.Get("/:id", middleware.AdminOnly, h.Get)
	kycGroup.Put("/:id/status", middleware.AdminOnly, h.UpdateStatus)
}

func setupTransactionRoutes(transactions fiber.Router, h *handlers.TransactionHandler) {
	transactions.Get("/stats", middleware.AdminOnly, h.Stats)
	transactions.Get("/", middleware.AdminOnly, h.List)
	transactions.Get("/customer/:customerId", middleware.HasPermission(models.PermissionTransactionRead), h.ListByCustomer)
	transactions.Get("/:id", middleware.HasPermission(models.PermissionTransactionRead), h.Get)
	transactions.Post("/", middleware.HasPermission(models.PermissionTransactionWrite), h.Create)
	transactions.Put("/:id/status", middleware.HasPermission(models.PermissionTransactionWrite), h.UpdateStatus)
	transactions.Post("/refund", middleware.HasPermission(models.PermissionTransactionWrite), h.Refund)
}
