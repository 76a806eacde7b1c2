package controllers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jaguarlabs/jaguar/internal/pkg/billing"
	"github.com/jaguarlabs/jaguar/internal/pkg/korapay"
	"github.com/jaguarlabs/jaguar/internal/pkg/paystack"
	"github.com/jaguarlabs/jaguar/internal/pkg/tiers"
)

// Legacy gateway endpoints, kept alive for charges initiated before the
// Korapay migration. New checkouts should use the Korapay routes.
var (
	paystackGateway *paystack.Client
	paystackBilling *billing.Service
)

// InitializePaystackController wires the legacy gateway client and billing
// service.
func InitializePaystackController(gateway *paystack.Client, svc *billing.Service) {
	paystackGateway = gateway
	paystackBilling = svc
}

// HandlePaystackInit starts a hosted checkout on the legacy gateway.
func HandlePaystackInit(c *fiber.Ctx) error {
	var body initChargeBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tier, ok := tiers.ByID(body.Plan)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Invalid plan")
	}
	email := strings.TrimSpace(body.Email)
	if email == "" {
		return jsonError(c, fiber.StatusBadRequest, "Buyer email required")
	}
	if tier.IsFree() {
		return jsonError(c, fiber.StatusBadRequest, "Selected plan is free")
	}

	callbackURL := fmt.Sprintf("%s/checkout/success?plan=%s", publicBaseURL(), url.QueryEscape(tier.ID))

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	result, err := paystackGateway.InitTransaction(ctx, email, tier.Price, callbackURL, map[string]any{
		"plan":   tier.ID,
		"email":  email,
		"userId": body.UserID,
	})
	if err != nil {
		if err == paystack.ErrNotConfigured {
			return jsonError(c, fiber.StatusInternalServerError, "Missing PAYSTACK_SECRET_KEY on server")
		}
		log.Printf("paystack init failed for plan=%s: %v", tier.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Paystack initialization failed")
	}
	if !result.OK {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   result.Error,
			"details": result.Raw,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"checkout_url": result.CheckoutURL,
		"reference":    result.Reference,
	})
}

// HandlePaystackVerify verifies a legacy transaction and reconciles it
// through the same billing path as Korapay charges.
func HandlePaystackVerify(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		reference = strings.TrimSpace(c.Query("ref"))
	}
	if reference == "" {
		return jsonError(c, fiber.StatusBadRequest, "Missing reference parameter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	result, err := paystackGateway.VerifyTransaction(ctx, reference)
	if err != nil {
		if err == paystack.ErrNotConfigured {
			return jsonError(c, fiber.StatusInternalServerError, "Missing PAYSTACK_SECRET_KEY on server")
		}
		log.Printf("paystack verify failed for reference=%s: %v", reference, err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error while verifying payment")
	}
	if !result.OK {
		msg := result.Error
		if msg == "" {
			msg = "Paystack verification failed"
		}
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	plan := korapay.PlanFromMetadata(result.Metadata)
	if plan == "" {
		plan = "user"
	}

	ev := billing.ChargeEvent{
		Event:                  "paystack.verify",
		Plan:                   plan,
		UserID:                 korapay.UserIDFromMetadata(result.Metadata),
		BuyerEmail:             result.Email,
		Amount:                 result.Amount,
		Currency:               result.Currency,
		Status:                 result.Status,
		Reference:              result.Reference,
		RawPayload:             string(result.Raw),
		CreateProfileIfMissing: true,
	}

	if err := paystackBilling.RecordPayment(ctx, ev); err != nil {
		log.Printf("payment insert failed for reference=%s: %v", reference, err)
	}
	if err := paystackBilling.ReconcileCharge(ctx, ev); err != nil {
		log.Printf("reconciliation failed for reference=%s: %v", reference, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"reference": result.Reference,
		"plan":      plan,
		"status":    result.Status,
	})
}
