package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaguarlabs/jaguar/app/models"
	"github.com/jaguarlabs/jaguar/internal/pkg/billing"
	"github.com/jaguarlabs/jaguar/internal/pkg/korapay"
)

func newCheckoutTestApp(repo *fakeBillingRepo, gatewayURL string) *fiber.App {
	client := &korapay.Client{
		SecretKey:  "sk_test",
		APIBaseURL: gatewayURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	InitializeCheckoutController(client, billing.NewService(repo))

	app := fiber.New()
	app.Post("/api/korapay/init", HandleKorapayInit)
	app.Get("/api/korapay/verify", HandleKorapayVerify)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestKorapayInitSuccess(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/charges/initialize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"status":true,"data":{"checkout_url":"https://checkout.korapay.com/xyz"}}`)
	}))
	defer srv.Close()

	app := newCheckoutTestApp(newFakeBillingRepo(), srv.URL)
	resp := postJSON(t, app, "/api/korapay/init", map[string]any{
		"plan":  "vip",
		"email": "buyer@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON(t, resp)
	assert.Equal(t, "https://checkout.korapay.com/xyz", out["checkout_url"])

	reference, _ := out["reference"].(string)
	assert.True(t, strings.HasPrefix(reference, "KBS_vip_"), "reference %q must encode the plan", reference)

	redirect, _ := gotPayload["redirect_url"].(string)
	assert.Contains(t, redirect, "/checkout/success?plan=vip&reference=KBS_vip_")

	metadata, _ := gotPayload["metadata"].(map[string]any)
	assert.Equal(t, "vip", metadata["plan"])
	assert.Equal(t, "buyer@example.com", metadata["email"])
}

func TestKorapayInitRejections(t *testing.T) {
	app := newCheckoutTestApp(newFakeBillingRepo(), "http://localhost:0")

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{name: "unknown plan", payload: map[string]any{"plan": "platinum", "email": "a@b.com"}},
		{name: "free plan", payload: map[string]any{"plan": "free", "email": "a@b.com"}},
		{name: "missing email", payload: map[string]any{"plan": "vip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/korapay/init", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestKorapayInitMissingSecret(t *testing.T) {
	InitializeCheckoutController(&korapay.Client{HTTPClient: http.DefaultClient}, billing.NewService(newFakeBillingRepo()))
	app := fiber.New()
	app.Post("/api/korapay/init", HandleKorapayInit)

	resp := postJSON(t, app, "/api/korapay/init", map[string]any{"plan": "vip", "email": "a@b.com"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestKorapayVerifySuccessCreatesStubProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"data": {
				"reference": "KBS_vip_1700000000000_A1B2C3",
				"status": "success",
				"amount": 5000000,
				"customer": {"email": "buyer@example.com"},
				"metadata": {"plan": "vip"}
			}
		}`)
	}))
	defer srv.Close()

	repo := newFakeBillingRepo()
	app := newCheckoutTestApp(repo, srv.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/korapay/verify?reference=KBS_vip_1700000000000_A1B2C3", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON(t, resp)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "vip", out["plan"])

	// The verify path materializes a profile stub for unknown buyers.
	stub, ok := repo.users["buyer@example.com"]
	require.True(t, ok, "verify path must create the stub profile")
	assert.Equal(t, "vip", stub.Role)
	assert.Equal(t, models.STATUS_INACTIVE, stub.Status)

	rows, _ := repo.ListPaymentsByReference("KBS_vip_1700000000000_A1B2C3")
	assert.Len(t, rows, 1)
	assert.Equal(t, "korapay.verify", rows[0].Event)
}

func TestKorapayVerifyRefAliasAndNoisyValue(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"data":{"status":"success","metadata":{"plan":"pro"}}}`)
	}))
	defer srv.Close()

	app := newCheckoutTestApp(newFakeBillingRepo(), srv.URL)

	noisy := "KBS_pro_1700000000001_D4E5F6,KBS_pro_1700000000002_G7H8I9"
	req := httptest.NewRequest(http.MethodGet, "/api/korapay/verify?ref="+noisy, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "/charges/KBS_pro_1700000000001_D4E5F6", gotPath, "the first clean token must be used")
}

func TestKorapayVerifyMissingReference(t *testing.T) {
	app := newCheckoutTestApp(newFakeBillingRepo(), "http://localhost:0")

	req := httptest.NewRequest(http.MethodGet, "/api/korapay/verify", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestKorapayVerifyFailedCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"status":"failed","reference":"KBS_vip_1_EEEEEE"}}`)
	}))
	defer srv.Close()

	repo := newFakeBillingRepo()
	app := newCheckoutTestApp(repo, srv.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/korapay/verify?reference=KBS_vip_1_EEEEEE", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, repo.subs, "failed verification must not grant entitlements")
}
