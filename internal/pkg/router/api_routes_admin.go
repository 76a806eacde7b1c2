package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jaguarlabs/jaguar/app/controllers"
	"github.com/jaguarlabs/jaguar/internal/pkg/middleware"
)

func (h ApiRouter) registerAdminRoutes(api fiber.Router) {
	adminGroup := api.Group("/admin", middleware.RequireAdmin)

	// Content management
	adminGroup.Get("/content", controllers.HandleAdminContentList)
	adminGroup.Post("/content", controllers.HandleAdminContentCreate)
	adminGroup.Put("/content/:id", controllers.HandleAdminContentUpdate)
	adminGroup.Delete("/content/:id", controllers.HandleAdminContentDelete)

	// Live session
	adminGroup.Get("/live-session", controllers.HandleAdminLiveSessionGet)
	adminGroup.Post("/live-session", controllers.HandleAdminLiveSessionSet)
	adminGroup.Post("/live-session/end", controllers.HandleAdminLiveSessionEnd)

	// Broadcast messages
	adminGroup.Get("/messages", controllers.HandleAdminMessageList)
	adminGroup.Post("/messages", controllers.HandleAdminMessageCreate)
	adminGroup.Put("/messages/:id", controllers.HandleAdminMessageUpdate)
	adminGroup.Delete("/messages/:id", controllers.HandleAdminMessageDelete)

	// MT5 submissions
	adminGroup.Get("/bot-credentials", controllers.HandleAdminBotCredentialList)
	adminGroup.Post("/bot-credentials/:uuid/review", controllers.HandleAdminBotCredentialReview)

	// Accounts and billing
	adminGroup.Get("/users", controllers.HandleAdminUserList)
	adminGroup.Post("/users/grant-role", controllers.HandleAdminGrantRole)
	adminGroup.Get("/subscriptions", controllers.HandleAdminSubscriptionList)
	adminGroup.Get("/payments", controllers.HandleAdminPaymentList)
}
