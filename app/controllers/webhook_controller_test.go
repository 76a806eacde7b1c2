package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jaguarlabs/jaguar/app/models"
	"github.com/jaguarlabs/jaguar/internal/pkg/billing"
)

// fakeBillingRepo records every write the webhook path performs.
type fakeBillingRepo struct {
	users        map[string]*models.User
	subs         map[string]*models.Subscription
	payments     []*models.Payment
	failPayments bool
	failSubs     bool
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{
		users: map[string]*models.User{},
		subs:  map[string]*models.Subscription{},
	}
}

func (f *fakeBillingRepo) GetUserByID(id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBillingRepo) GetUserByEmail(email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBillingRepo) CreateUser(user *models.User) error {
	user.ID = uint(len(f.users) + 1)
	f.users[user.Email] = user
	return nil
}

func (f *fakeBillingRepo) UpdateUserRole(id uint, role string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeBillingRepo) UpsertSubscription(sub *models.Subscription) error {
	if f.failSubs {
		return errors.New("subscription table is down")
	}
	f.subs[sub.Email+"|"+sub.Plan] = sub
	return nil
}

func (f *fakeBillingRepo) GetSubscription(email, plan string) (*models.Subscription, error) {
	if sub, ok := f.subs[email+"|"+plan]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBillingRepo) CreatePayment(payment *models.Payment) error {
	if f.failPayments {
		return errors.New("ledger table is down")
	}
	f.payments = append(f.payments, payment)
	return nil
}

func (f *fakeBillingRepo) ListPaymentsByReference(reference string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.Reference == reference {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeBillingRepo) ListPaymentsByBuyer(email, plan string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.CustomerEmail == email && p.Plan == plan {
			out = append(out, *p)
		}
	}
	return out, nil
}

func newWebhookTestApp(repo *fakeBillingRepo) *fiber.App {
	InitializeWebhookController(billing.NewService(repo))
	app := fiber.New()
	app.Post("/webhooks/korapay", HandleKorapayWebhook)
	app.Post("/webhooks/paystack", HandlePaystackWebhook)
	return app
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

const successWebhookBody = `{
	"event": "charge.success",
	"data": {
		"reference": "KBS_vip_1700000000000_A1B2C3",
		"status": "success",
		"amount": 5000000,
		"customer": {"email": "buyer@example.com"},
		"metadata": {"plan": "vip"}
	}
}`

func postWebhook(t *testing.T, app *fiber.App, path, body string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestKorapayWebhookNoSecretConfigured(t *testing.T) {
	repo := newFakeBillingRepo()
	app := newWebhookTestApp(repo)

	resp := postWebhook(t, app, "/webhooks/korapay", successWebhookBody, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rows, _ := repo.ListPaymentsByReference("KBS_vip_1700000000000_A1B2C3")
	require.Len(t, rows, 1)
	assert.Equal(t, "charge.success", rows[0].Event)

	_, err := repo.GetSubscription("buyer@example.com", "vip")
	assert.NoError(t, err, "successful charge must create the subscription")
}

func TestKorapayWebhookValidSignature(t *testing.T) {
	t.Setenv("KORAPAY_WEBHOOK_SECRET", "whsec_test")
	repo := newFakeBillingRepo()
	app := newWebhookTestApp(repo)

	resp := postWebhook(t, app, "/webhooks/korapay", successWebhookBody, map[string]string{
		"X-Korapay-Signature": signBody([]byte(successWebhookBody), "whsec_test"),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, repo.payments, 1)
}

func TestKorapayWebhookInvalidSignatureBlocksAllWrites(t *testing.T) {
	t.Setenv("KORAPAY_WEBHOOK_SECRET", "whsec_test")
	repo := newFakeBillingRepo()
	app := newWebhookTestApp(repo)

	resp := postWebhook(t, app, "/webhooks/korapay", successWebhookBody, map[string]string{
		"X-Korapay-Signature": "deadbeef",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, repo.payments, "rejected webhook must not touch the ledger")
	assert.Empty(t, repo.subs)
}

func TestKorapayWebhookAlternateSignatureHeader(t *testing.T) {
	t.Setenv("KORAPAY_WEBHOOK_SECRET", "whsec_test")
	repo := newFakeBillingRepo()
	app := newWebhookTestApp(repo)

	resp := postWebhook(t, app, "/webhooks/korapay", successWebhookBody, map[string]string{
		"X-Kora-Signature": signBody([]byte(successWebhookBody), "whsec_test"),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestKorapayWebhookBadJSON(t *testing.T) {
	repo := newFakeBillingRepo()
	app := newWebhookTestApp(repo)

	resp := postWebhook(t, app, "/webhooks/korapay", "not-json", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, repo.payments)
}

func TestKorapayWebhookFailedChargeStillLands(t *testing.T) {
	repo := newFakeBillingRepo()
	app := newWebhookTestApp(repo)

	body := `{"event":"charge.failed","data":{"reference":"KBS_vip_1_DDDDDD","status":"failed","metadata":{"plan":"vip"}}}`
	resp := postWebhook(t, app, "/webhooks/korapay", body, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rows, _ := repo.ListPaymentsByReference("KBS_vip_1_DDDDDD")
	require.Len(t, rows, 1, "failed charges still land in the ledger")
	assert.Empty(t, repo.subs, "failed charges must not grant entitlements")
}

func TestKorapayWebhookReconcileFailureStillAcknowledged(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.failSubs = true
	app := newWebhookTestApp(repo)

	resp := postWebhook(t, app, "/webhooks/korapay", successWebhookBody, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reconciliation failures must not trigger gateway redelivery")
	assert.Len(t, repo.payments, 1)
}

func TestKorapayWebhookDuplicateDelivery(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.users["buyer@example.com"] = &models.User{ID: 1, Email: "buyer@example.com", Role: models.ROLE_FREE}
	app := newWebhookTestApp(repo)

	for i := 0; i < 2; i++ {
		resp := postWebhook(t, app, "/webhooks/korapay", successWebhookBody, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	rows, _ := repo.ListPaymentsByReference("KBS_vip_1700000000000_A1B2C3")
	assert.Len(t, rows, 2, "each delivery keeps its own ledger row")
	assert.Len(t, repo.subs, 1, "reconciliation stays idempotent")
	assert.Equal(t, "vip", repo.users["buyer@example.com"].Role)
}

func TestPaystackWebhookSignature(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test")
	repo := newFakeBillingRepo()
	app := newWebhookTestApp(repo)

	resp := postWebhook(t, app, "/webhooks/paystack", successWebhookBody, map[string]string{
		"X-Paystack-Signature": "bogus",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, repo.payments)
}
