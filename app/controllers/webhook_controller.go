package controllers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jaguarlabs/jaguar/internal/pkg/billing"
	"github.com/jaguarlabs/jaguar/internal/pkg/korapay"
	"github.com/jaguarlabs/jaguar/internal/pkg/paystack"
)

var webhookBilling *billing.Service

// InitializeWebhookController wires the billing service used by the webhook
// handlers.
func InitializeWebhookController(svc *billing.Service) {
	webhookBilling = svc
}

// HandleKorapayWebhook ingests gateway event notifications. Every accepted
// payload lands in the payment ledger before any reconciliation runs, so an
// entitlement bug never loses the evidence that money moved.
func HandleKorapayWebhook(c *fiber.Ctx) error {
	// Copy the raw body before any parser touches it; the signature is
	// computed over the exact bytes on the wire.
	rawBody := append([]byte(nil), c.BodyRaw()...)

	secret := korapay.WebhookSecretFromEnv()
	if secret != "" {
		signature := firstHeaderValue(c, "X-Korapay-Signature", "X-Kora-Signature")
		if !korapay.VerifySignature(rawBody, signature, secret) {
			return jsonError(c, fiber.StatusUnauthorized, "Invalid signature")
		}
	}

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}

	body := rawBody
	if len(envelope.Data) > 0 {
		body = envelope.Data
	}
	result := korapay.Normalize(body, "")

	event := envelope.Event
	if event == "" {
		event = "korapay.webhook"
	}

	ev := billing.ChargeEvent{
		Event:      event,
		Plan:       korapay.PlanFromMetadata(result.Metadata),
		UserID:     korapay.UserIDFromMetadata(result.Metadata),
		BuyerEmail: result.Email,
		Amount:     result.Amount,
		Currency:   result.Currency,
		Status:     result.Status,
		Reference:  result.Reference,
		RawPayload: string(rawBody),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := webhookBilling.RecordPayment(ctx, ev); err != nil {
		log.Printf("webhook ledger insert failed for reference=%s: %v", ev.Reference, err)
	}

	if korapay.IsSuccessStatus(ev.Status) && ev.Plan != "" {
		if err := webhookBilling.ReconcileCharge(ctx, ev); err != nil {
			// The gateway retries on non-2xx; a reconciliation bug must not
			// trigger a redelivery storm, so log and acknowledge anyway.
			log.Printf("webhook reconciliation failed for reference=%s: %v", ev.Reference, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandlePaystackWebhook keeps the legacy gateway's notifications flowing into
// the same ledger and reconciler during the migration window.
func HandlePaystackWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	secret := paystack.SecretFromEnv()
	if secret != "" {
		signature := firstHeaderValue(c, "X-Paystack-Signature")
		if !paystack.VerifySignature(rawBody, signature, secret) {
			return jsonError(c, fiber.StatusUnauthorized, "Invalid signature")
		}
	}

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}

	body := rawBody
	if len(envelope.Data) > 0 {
		body = envelope.Data
	}
	result := korapay.Normalize(body, "")

	event := envelope.Event
	if event == "" {
		event = "paystack.webhook"
	}

	ev := billing.ChargeEvent{
		Event:      event,
		Plan:       korapay.PlanFromMetadata(result.Metadata),
		UserID:     korapay.UserIDFromMetadata(result.Metadata),
		BuyerEmail: result.Email,
		Amount:     result.Amount,
		Currency:   result.Currency,
		Status:     result.Status,
		Reference:  result.Reference,
		RawPayload: string(rawBody),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := webhookBilling.RecordPayment(ctx, ev); err != nil {
		log.Printf("paystack ledger insert failed for reference=%s: %v", ev.Reference, err)
	}

	if event == "charge.success" || korapay.IsSuccessStatus(ev.Status) {
		if ev.Plan != "" {
			if err := webhookBilling.ReconcileCharge(ctx, ev); err != nil {
				log.Printf("paystack reconciliation failed for reference=%s: %v", ev.Reference, err)
			}
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
