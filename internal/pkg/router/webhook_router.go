package router

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/jaguarlabs/jaguar/app/controllers"
	"github.com/jaguarlabs/jaguar/internal/pkg/korapay"
)

type WebhookRouter struct {
}

// InstallRouter mounts the gateway notification endpoints. They sit outside
// the /api rate limiter: the gateways retry on non-2xx and a throttled
// webhook would turn into a redelivery storm.
func (h WebhookRouter) InstallRouter(app *fiber.App) {
	if korapay.WebhookSecretFromEnv() == "" {
		log.Println("KORAPAY_WEBHOOK_SECRET not set, webhook signatures will not be verified")
	}
	app.Post("/webhooks/korapay", controllers.HandleKorapayWebhook)
	app.Post("/webhooks/paystack", controllers.HandlePaystackWebhook)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
