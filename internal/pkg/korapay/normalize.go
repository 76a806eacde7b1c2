package korapay

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ChargeResult is the canonical shape every gateway response is coerced into,
// regardless of which endpoint or API version produced it.
type ChargeResult struct {
	OK        bool
	Status    string
	Reference string
	Amount    int64
	Currency  string
	Email     string
	Metadata  map[string]any
	Raw       json.RawMessage
	Error     string
}

// successStatuses is the fixed set of business-level success values observed
// across gateway versions, matched case-insensitively.
var successStatuses = map[string]struct{}{
	"success":    {},
	"successful": {},
	"completed":  {},
	"paid":       {},
	"approved":   {},
}

// Field-name candidates per logical field, tried in order. Schema drift across
// gateway deployments is handled here; a new quirk is a one-line addition.
var (
	statusFields   = []string{"status", "charge_status", "transaction_status", "state"}
	amountFields   = []string{"amount", "amount_paid", "amount_in_kobo", "amount_in_base"}
	metadataFields = []string{"metadata", "meta"}
)

// IsSuccessStatus reports whether a raw status string is a recognized
// business-level success value.
func IsSuccessStatus(status string) bool {
	_, ok := successStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Normalize coerces a heterogeneous gateway response body into a ChargeResult.
// The fallback reference is used when the payload omits its own.
func Normalize(body []byte, reference string) *ChargeResult {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &ChargeResult{
			Status:    "unknown",
			Reference: reference,
			Currency:  "NGN",
			Raw:       json.RawMessage(body),
			Error:     "unparseable gateway response",
		}
	}

	payload := envelope
	if data, ok := envelope["data"].(map[string]any); ok {
		payload = data
	}

	var rawStatus any
	for _, f := range statusFields {
		if v, ok := payload[f]; ok && v != nil {
			rawStatus = v
			break
		}
	}
	if rawStatus == nil {
		rawStatus = envelope["status"]
	}

	status := "unknown"
	ok := false
	switch v := rawStatus.(type) {
	case string:
		status = strings.ToLower(v)
		ok = IsSuccessStatus(status)
	case bool:
		// Some deployments encode success as a bare boolean.
		ok = v
		if v {
			status = "success"
		} else {
			status = "failed"
		}
	}

	metadata := map[string]any{}
	for _, f := range metadataFields {
		if m, found := payload[f].(map[string]any); found {
			metadata = m
			break
		}
	}

	ref := stringField(payload, "reference")
	if ref == "" {
		ref = reference
	}

	currency := stringField(payload, "currency")
	if currency == "" {
		currency = "NGN"
	}

	email := ""
	if customer, found := payload["customer"].(map[string]any); found {
		email = stringField(customer, "email")
	}
	if email == "" {
		email = stringField(payload, "customer_email")
	}
	if email == "" {
		email = stringField(metadata, "email")
	}

	return &ChargeResult{
		OK:        ok,
		Status:    status,
		Reference: ref,
		Amount:    amountField(payload),
		Currency:  currency,
		Email:     email,
		Metadata:  metadata,
		Raw:       json.RawMessage(body),
	}
}

// PlanFromMetadata resolves the plan id from charge metadata, trying the
// known key variants in priority order.
func PlanFromMetadata(metadata map[string]any) string {
	for _, key := range []string{"plan", "product", "tier"} {
		if v := stringField(metadata, key); v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

// UserIDFromMetadata resolves the buyer's user id from charge metadata.
func UserIDFromMetadata(metadata map[string]any) string {
	for _, key := range []string{"userId", "user_id"} {
		switch v := metadata[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			if v > 0 {
				return strconv.FormatInt(int64(v), 10)
			}
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func amountField(payload map[string]any) int64 {
	for _, f := range amountFields {
		switch v := payload[f].(type) {
		case float64:
			if v != 0 {
				return int64(v)
			}
		case string:
			// Amounts occasionally arrive as strings; ignore unparseable ones.
			if n, err := json.Number(strings.TrimSpace(v)).Int64(); err == nil && n != 0 {
				return n
			}
		}
	}
	return 0
}
