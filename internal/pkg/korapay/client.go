package korapay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jaguarlabs/jaguar/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.korapay.com/merchant/api/v1"

// ErrNotConfigured is returned when the gateway secret key is missing.
var ErrNotConfigured = errors.New("korapay secret key is not configured")

// Client calls the Korapay merchant API. Endpoint overrides exist because the
// gateway's verification API differs between deployments.
type Client struct {
	SecretKey      string
	APIBaseURL     string
	InitEndpoint   string
	VerifyEndpoint string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from process configuration. A missing
// secret key degrades to ErrNotConfigured on use rather than panicking.
func NewClientFromEnv() *Client {
	return &Client{
		SecretKey:      env.GetFirst("", "KORAPAY_SECRET_KEY", "KORAPAY_SECRET"),
		APIBaseURL:     strings.TrimRight(env.GetEnv("KORAPAY_API_URL", defaultAPIBaseURL), "/"),
		InitEndpoint:   strings.TrimSpace(env.GetEnv("KORAPAY_INIT_ENDPOINT", "")),
		VerifyEndpoint: strings.TrimSpace(env.GetEnv("KORAPAY_VERIFY_ENDPOINT", "")),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// WebhookSecretFromEnv returns the webhook secret, falling back to the API
// secret key. Empty means webhook signature checking is skipped.
func WebhookSecretFromEnv() string {
	return env.GetFirst("", "KORAPAY_WEBHOOK_SECRET", "KORAPAY_SECRET_KEY", "KORAPAY_SECRET")
}

// InitChargeRequest describes one checkout attempt.
type InitChargeRequest struct {
	Amount      int64
	Currency    string
	Email       string
	Reference   string
	RedirectURL string
	Metadata    map[string]any
}

// InitChargeResult carries the hosted checkout URL, or the gateway's raw
// error payload when initialization failed.
type InitChargeResult struct {
	OK          bool
	CheckoutURL string
	Reference   string
	Error       string
	Raw         json.RawMessage
}

// checkoutURLFields covers the field-name drift seen on charge initialize
// responses across gateway versions.
var checkoutURLFields = []string{"checkout_url", "checkoutUrl", "authorization_url", "authorizationUrl"}

// InitCharge calls the gateway's charge-initialize endpoint. Nothing is
// persisted locally; the reference only becomes durable once a webhook or
// verify call observes it.
func (c *Client) InitCharge(ctx context.Context, req InitChargeRequest) (*InitChargeResult, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, ErrNotConfigured
	}

	endpoint := c.InitEndpoint
	if endpoint == "" {
		endpoint = c.APIBaseURL + "/charges/initialize"
	}

	currency := req.Currency
	if currency == "" {
		currency = "NGN"
	}
	payload := map[string]any{
		"amount":       req.Amount,
		"currency":     currency,
		"reference":    req.Reference,
		"redirect_url": req.RedirectURL,
		"customer":     map[string]any{"email": req.Email},
		"metadata":     req.Metadata,
	}

	status, body, err := c.post(ctx, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("korapay init request failed: %w", err)
	}

	if status < 200 || status >= 300 {
		return &InitChargeResult{
			OK:    false,
			Error: gatewayMessage(body, "Korapay init failed"),
			Raw:   json.RawMessage(body),
		}, nil
	}

	var envelope map[string]any
	_ = json.Unmarshal(body, &envelope)
	data, _ := envelope["data"].(map[string]any)

	checkoutURL := ""
	for _, f := range checkoutURLFields {
		if checkoutURL = stringField(data, f); checkoutURL != "" {
			break
		}
	}
	if checkoutURL == "" {
		checkoutURL = stringField(envelope, "authorization_url")
	}
	if checkoutURL == "" {
		return &InitChargeResult{
			OK:    false,
			Error: "No checkout URL returned by Korapay",
			Raw:   json.RawMessage(body),
		}, nil
	}

	reference := stringField(data, "reference")
	if reference == "" {
		reference = req.Reference
	}

	return &InitChargeResult{
		OK:          true,
		CheckoutURL: checkoutURL,
		Reference:   reference,
		Raw:         json.RawMessage(body),
	}, nil
}

type verifyEndpoint struct {
	url    string
	method string
	body   []byte
}

// verifyCandidates lists verification endpoints in fixed priority order. The
// gateway has exposed at least four shapes for this call; the first
// transport-level 2xx wins and business status is decided by normalization.
func (c *Client) verifyCandidates(reference string) []verifyEndpoint {
	escaped := url.PathEscape(reference)
	var endpoints []verifyEndpoint

	if c.VerifyEndpoint != "" {
		endpoints = append(endpoints, verifyEndpoint{
			url:    strings.ReplaceAll(c.VerifyEndpoint, "{reference}", escaped),
			method: http.MethodGet,
		})
	}

	endpoints = append(endpoints,
		verifyEndpoint{url: c.APIBaseURL + "/charges/" + escaped, method: http.MethodGet},
		verifyEndpoint{url: c.APIBaseURL + "/charges/verify/" + escaped, method: http.MethodGet},
		verifyEndpoint{
			url:    c.APIBaseURL + "/charges/verify",
			method: http.MethodPost,
			body:   []byte(fmt.Sprintf(`{"reference":%q}`, reference)),
		},
	)
	return endpoints
}

// VerifyCharge queries the gateway for the state of a charge, iterating the
// endpoint candidates until one answers at the transport level. If every
// candidate fails, the last observed payload is preserved for diagnostics.
func (c *Client) VerifyCharge(ctx context.Context, reference string) (*ChargeResult, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(reference) == "" {
		return nil, errors.New("charge reference is required")
	}

	var lastBody []byte
	for _, endpoint := range c.verifyCandidates(reference) {
		status, body, err := c.do(ctx, endpoint.method, endpoint.url, endpoint.body)
		if err != nil {
			// Transport error: try the next endpoint shape.
			continue
		}
		lastBody = body
		if status >= 200 && status < 300 {
			return Normalize(body, reference), nil
		}
	}

	return &ChargeResult{
		OK:        false,
		Status:    "unknown",
		Reference: reference,
		Currency:  "NGN",
		Raw:       json.RawMessage(lastBody),
		Error:     gatewayMessage(lastBody, "Korapay verification failed"),
	}, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	return c.do(ctx, http.MethodPost, endpoint, body)
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
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, respBody, nil
}

func gatewayMessage(body []byte, fallback string) string {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := stringField(envelope, "message"); msg != "" {
			return msg
		}
	}
	return fallback
}
