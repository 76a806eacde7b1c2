package controllers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jaguarlabs/jaguar/internal/pkg/billing"
	"github.com/jaguarlabs/jaguar/internal/pkg/korapay"
	"github.com/jaguarlabs/jaguar/internal/pkg/session"
	"github.com/jaguarlabs/jaguar/internal/pkg/tiers"
)

// checkout controller dependencies, injected at router setup so tests can
// swap in fakes and an httptest-backed gateway client.
var (
	checkoutGateway *korapay.Client
	checkoutBilling *billing.Service
)

// InitializeCheckoutController wires the gateway client and billing service.
func InitializeCheckoutController(gateway *korapay.Client, svc *billing.Service) {
	checkoutGateway = gateway
	checkoutBilling = svc
}

type initChargeBody struct {
	Plan   string `json:"plan"`
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

// HandleKorapayInit starts a hosted checkout for a paid tier. Nothing is
// persisted locally; the generated reference becomes durable only once the
// webhook or verify path observes it.
func HandleKorapayInit(c *fiber.Ctx) error {
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

	reference := korapay.NewReference(tier.ID)
	redirectURL := fmt.Sprintf("%s/checkout/success?plan=%s&reference=%s",
		publicBaseURL(), url.QueryEscape(tier.ID), url.QueryEscape(reference))

	// Remember the selection so the success page can recover the plan even
	// when the gateway strips query params from the redirect.
	if err := session.SetSessionValue(c, "checkout_plan", tier.ID); err != nil {
		log.Printf("checkout plan session write failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	result, err := checkoutGateway.InitCharge(ctx, korapay.InitChargeRequest{
		Amount:      tier.Price,
		Currency:    tier.Currency,
		Email:       email,
		Reference:   reference,
		RedirectURL: redirectURL,
		Metadata: map[string]any{
			"plan":      tier.ID,
			"planName":  tier.DisplayName,
			"planPrice": tier.Price,
			"email":     email,
			"userId":    body.UserID,
		},
	})
	if err != nil {
		if err == korapay.ErrNotConfigured {
			return jsonError(c, fiber.StatusInternalServerError, "Missing KORAPAY_SECRET_KEY on server")
		}
		log.Printf("korapay init failed for plan=%s: %v", tier.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Korapay initialization failed")
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

// HandleKorapayVerify verifies a charge synchronously after the gateway
// redirects the buyer back. Both this path and the webhook funnel into the
// same reconciler; the writes are idempotent so double delivery is harmless.
func HandleKorapayVerify(c *fiber.Ctx) error {
	reference := verifyReference(c)
	if reference == "" {
		return jsonError(c, fiber.StatusBadRequest, "Missing reference parameter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	result, err := checkoutGateway.VerifyCharge(ctx, reference)
	if err != nil {
		if err == korapay.ErrNotConfigured {
			return jsonError(c, fiber.StatusInternalServerError, "Missing KORAPAY_SECRET_KEY on server")
		}
		log.Printf("korapay verify failed for reference=%s: %v", reference, err)
		return jsonError(c, fiber.StatusInternalServerError, "Server error while verifying payment")
	}
	if !result.OK {
		msg := result.Error
		if msg == "" {
			msg = "Korapay verification failed"
		}
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	plan := korapay.PlanFromMetadata(result.Metadata)
	if plan == "" {
		plan = strings.ToLower(strings.TrimSpace(c.Query("plan")))
	}
	if plan == "" {
		plan = strings.ToLower(session.GetSessionValue(c, "checkout_plan"))
	}
	if plan == "" {
		plan = "user"
	}

	ev := billing.ChargeEvent{
		Event:                  "korapay.verify",
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

	// Ledger first, reconciliation second; neither failure blocks the
	// response, the buyer already paid.
	if err := checkoutBilling.RecordPayment(ctx, ev); err != nil {
		log.Printf("payment insert failed for reference=%s: %v", reference, err)
	}
	if err := checkoutBilling.ReconcileCharge(ctx, ev); err != nil {
		log.Printf("reconciliation failed for reference=%s: %v", reference, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"reference": result.Reference,
		"plan":      plan,
		"status":    result.Status,
	})
}

// verifyReference pulls the charge reference out of query or body, tolerating
// the "ref" alias and gateway-mangled concatenated values.
func verifyReference(c *fiber.Ctx) string {
	candidates := []string{
		c.Query("reference"),
		c.Query("ref"),
		c.Query("transaction_reference"),
	}
	if len(c.Body()) > 0 {
		var body struct {
			Reference string `json:"reference"`
			Ref       string `json:"ref"`
		}
		if err := c.BodyParser(&body); err == nil {
			candidates = append(candidates, body.Reference, body.Ref)
		}
	}
	for _, raw := range candidates {
		if ref := korapay.ExtractReference(raw); ref != "" {
			return ref
		}
	}
	return ""
}

// HandleTiers lists the tier catalog sorted for the pricing page.
func HandleTiers(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tiers": tiers.Sorted()})
}

// parsePositiveInt is shared by admin list endpoints for paging params.
func parsePositiveInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
