package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jaguarlabs/jaguar/app/controllers"
	"github.com/jaguarlabs/jaguar/app/repository"
	"github.com/jaguarlabs/jaguar/internal/pkg/billing"
	"github.com/jaguarlabs/jaguar/internal/pkg/database"
	"github.com/jaguarlabs/jaguar/internal/pkg/korapay"
	"github.com/jaguarlabs/jaguar/internal/pkg/middleware"
	"github.com/jaguarlabs/jaguar/internal/pkg/paystack"
	"github.com/jaguarlabs/jaguar/internal/pkg/session"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init the global repository factory
	repository.InitializeFactory(database.GetDB())

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Wire the payment controllers against the shared billing service
	svc := billing.NewServiceFromDB(database.GetDB())
	controllers.InitializeCheckoutController(korapay.NewClientFromEnv(), svc)
	controllers.InitializePaystackController(paystack.NewClientFromEnv(), svc)
	controllers.InitializeWebhookController(svc)

	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "jaguar api",
		})
	})

	// Auth
	api.Post("/auth/register", controllers.HandleRegister)
	api.Post("/auth/login", controllers.HandleLogin)
	api.Post("/auth/logout", controllers.HandleLogout)

	// Pricing
	api.Get("/tiers", controllers.HandleTiers)

	// Checkout (Korapay)
	api.Post("/korapay/init", controllers.HandleKorapayInit)
	api.Get("/korapay/verify", controllers.HandleKorapayVerify)
	api.Post("/korapay/verify", controllers.HandleKorapayVerify)

	// Legacy checkout (Paystack)
	api.Post("/paystack/init", controllers.HandlePaystackInit)
	api.Get("/paystack/verify", controllers.HandlePaystackVerify)

	// Gateway webhooks; unthrottled aliases live under /webhooks
	api.Post("/korapay/webhook", controllers.HandleKorapayWebhook)
	api.Post("/paystack/webhook", controllers.HandlePaystackWebhook)

	// Profile
	api.Post("/get-role", middleware.RequireAuth, controllers.HandleGetRole)
	api.Get("/user/role", middleware.RequireAuth, controllers.HandleGetRole)
	api.Post("/profile/complete", middleware.RequireAuth, controllers.HandleCompleteProfile)
	api.Get("/user/subscriptions", middleware.RequireAuth, controllers.HandleMySubscriptions)
	api.Post("/user/mt5-credentials", middleware.RequireAuth, controllers.HandleSubmitMT5Credentials)
	api.Get("/user/mt5-credentials", middleware.RequireAuth, controllers.HandleMyMT5Credentials)

	// Gated member content
	api.Get("/content/items", middleware.RequireAuth, controllers.HandleContentList)
	api.Get("/content/:id", middleware.RequireAuth, controllers.HandleContentItem)
	api.Get("/live-session", middleware.RequireAuth, controllers.HandleLiveSession)
	api.Get("/messages", middleware.RequireAuth, controllers.HandleMessages)

	h.registerAdminRoutes(api)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
