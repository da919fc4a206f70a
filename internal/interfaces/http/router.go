package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/catalog"
	"github.com/jhoicas/storefront-api/internal/application/ordering"
	"github.com/jhoicas/storefront-api/internal/application/payment"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// RouterDeps dependencias para el router. SyncUC es opcional.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	ProductUC *usecase.ProductUseCase
	SyncUC    *catalog.SyncUseCase
	OrderUC   *ordering.OrderUseCase
	WebhookUC *payment.WebhookUseCase
	JWTSecret string
}

// Router registra las rutas de la API bajo /api.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/profile", requireAuth, authHandler.GetProfile)
	authGroup.Put("/profile", requireAuth, authHandler.UpdateProfile)

	// Products: lectura pública (el token solo amplía la visibilidad), escritura admin
	productHandler := NewProductHandler(deps.ProductUC, deps.SyncUC)
	products := api.Group("/products")
	products.Get("/", OptionalAuth(deps.JWTSecret), productHandler.List)
	products.Post("/sync/shopify", requireAuth, adminOnly, productHandler.Sync)
	products.Get("/:id", OptionalAuth(deps.JWTSecret), productHandler.GetByID)
	products.Post("/", requireAuth, adminOnly, productHandler.Create)
	products.Put("/:id", requireAuth, adminOnly, productHandler.Update)
	products.Delete("/:id", requireAuth, adminOnly, productHandler.Archive)

	// Orders (protegido). /all va antes de /:id.
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders := api.Group("/orders", requireAuth)
	orders.Post("/", orderHandler.Place)
	orders.Get("/", orderHandler.ListMine)
	orders.Get("/all", adminOnly, orderHandler.ListAll)
	orders.Get("/:id", orderHandler.Get)
	orders.Put("/:id", adminOnly, orderHandler.UpdateFulfillment)
	orders.Post("/:id/payment", orderHandler.RetryPayment)
	orders.Get("/:id/payment", orderHandler.PaymentDetails)
	orders.Post("/:id/refund", adminOnly, orderHandler.Refund)
	orders.Get("/:id/receipt", orderHandler.Receipt)

	// Webhooks: autenticados por firma, no por token
	webhookHandler := NewWebhookHandler(deps.WebhookUC)
	api.Post("/webhooks/stripe", webhookHandler.Stripe)
}
