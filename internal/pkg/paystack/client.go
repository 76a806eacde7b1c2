package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jaguarlabs/jaguar/internal/pkg/env"
	"github.com/jaguarlabs/jaguar/internal/pkg/korapay"
)

const defaultAPIBaseURL = "https://api.paystack.co"

// ErrNotConfigured is returned when the legacy Paystack secret key is absent.
// The Paystack path is kept for verifying charges made before the Korapay
// migration; new checkouts go through Korapay.
var ErrNotConfigured = errors.New("paystack secret key is not configured")

// Client calls the legacy Paystack transaction API.
type Client struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		SecretKey:  strings.TrimSpace(env.GetEnv("PAYSTACK_SECRET_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("PAYSTACK_API_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// SecretFromEnv returns the key Paystack signs webhooks with; it is the same
// secret used for API calls.
func SecretFromEnv() string {
	return strings.TrimSpace(env.GetEnv("PAYSTACK_SECRET_KEY", ""))
}

// VerifySignature checks a Paystack webhook signature. Unlike Korapay,
// Paystack has always used HMAC-SHA512 only.
func VerifySignature(payload []byte, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	key := strings.TrimSpace(secret)
	if sig == "" || key == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(sig)))
}

// InitTransaction starts a hosted checkout. Paystack expects the amount in
// kobo and returns an authorization_url.
func (c *Client) InitTransaction(ctx context.Context, email string, amount int64, callbackURL string, metadata map[string]any) (*korapay.InitChargeResult, error) {
	if c.SecretKey == "" {
		return nil, ErrNotConfigured
	}

	payload := map[string]any{
		"email":        email,
		"amount":       amount,
		"metadata":     metadata,
		"callback_url": callbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	status, respBody, err := c.do(ctx, http.MethodPost, c.APIBaseURL+"/transaction/initialize", body)
	if err != nil {
		return nil, fmt.Errorf("paystack init request failed: %w", err)
	}
	if status < 200 || status >= 300 {
		return &korapay.InitChargeResult{
			OK:    false,
			Error: "Paystack initialization failed",
			Raw:   json.RawMessage(respBody),
		}, nil
	}

	var envelope struct {
		Data struct {
			AuthorizationURL string `json:"authorization_url"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil || envelope.Data.AuthorizationURL == "" {
		return &korapay.InitChargeResult{
			OK:    false,
			Error: "No authorization URL returned by Paystack",
			Raw:   json.RawMessage(respBody),
		}, nil
	}

	return &korapay.InitChargeResult{
		OK:          true,
		CheckoutURL: envelope.Data.AuthorizationURL,
		Reference:   envelope.Data.Reference,
		Raw:         json.RawMessage(respBody),
	}, nil
}

// VerifyTransaction fetches a transaction by reference and normalizes it into
// the shared charge-result shape.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*korapay.ChargeResult, error) {
	if c.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(reference) == "" {
		return nil, errors.New("transaction reference is required")
	}

	endpoint := c.APIBaseURL + "/transaction/verify/" + url.PathEscape(reference)
	status, respBody, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("paystack verify request failed: %w", err)
	}
	if status < 200 || status >= 300 {
		return &korapay.ChargeResult{
			OK:        false,
			Status:    "unknown",
			Reference: reference,
			Currency:  "NGN",
			Raw:       json.RawMessage(respBody),
			Error:     "Paystack verification failed",
		}, nil
	}
	return korapay.Normalize(respBody, reference), nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, respBody, nil
}
