package korapay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSuccessStatus(t *testing.T) {
	for _, status := range []string{"success", "SUCCESS", "Successful", "completed", "paid", "approved", " paid "} {
		if !IsSuccessStatus(status) {
			t.Fatalf("expected status %q to be a success", status)
		}
	}
	for _, status := range []string{"failed", "pending", "processing", "abandoned", ""} {
		if IsSuccessStatus(status) {
			t.Fatalf("expected status %q to be a non-success", status)
		}
	}
}

func TestNormalizeNestedData(t *testing.T) {
	body := []byte(`{
		"status": true,
		"data": {
			"reference": "KBS_vip_1700000000000_A1B2C3",
			"status": "success",
			"amount": 5000000,
			"currency": "NGN",
			"customer": {"email": "buyer@example.com"},
			"metadata": {"plan": "vip", "userId": "42"}
		}
	}`)

	result := Normalize(body, "")
	require.True(t, result.OK)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "KBS_vip_1700000000000_A1B2C3", result.Reference)
	assert.Equal(t, int64(5000000), result.Amount)
	assert.Equal(t, "NGN", result.Currency)
	assert.Equal(t, "buyer@example.com", result.Email)
	assert.Equal(t, "vip", PlanFromMetadata(result.Metadata))
	assert.Equal(t, "42", UserIDFromMetadata(result.Metadata))
}

func TestNormalizeFieldAliases(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ChargeResult
	}{
		{
			name: "charge_status and amount_paid",
			body: `{"data":{"charge_status":"Paid","amount_paid":"2500000","reference":"KBS_premium_1_ABCDEF"}}`,
			want: ChargeResult{OK: true, Status: "paid", Amount: 2500000, Reference: "KBS_premium_1_ABCDEF"},
		},
		{
			name: "transaction_status and amount_in_kobo",
			body: `{"data":{"transaction_status":"completed","amount_in_kobo":100000}}`,
			want: ChargeResult{OK: true, Status: "completed", Amount: 100000},
		},
		{
			name: "state field",
			body: `{"data":{"state":"approved"}}`,
			want: ChargeResult{OK: true, Status: "approved"},
		},
		{
			name: "flat payload without data wrapper",
			body: `{"status":"successful","amount":750000}`,
			want: ChargeResult{OK: true, Status: "successful", Amount: 750000},
		},
		{
			name: "boolean success",
			body: `{"data":{"status":true}}`,
			want: ChargeResult{OK: true, Status: "success"},
		},
		{
			name: "boolean failure",
			body: `{"data":{"status":false}}`,
			want: ChargeResult{OK: false, Status: "failed"},
		},
		{
			name: "failed charge",
			body: `{"data":{"status":"failed","amount":5000000}}`,
			want: ChargeResult{OK: false, Status: "failed", Amount: 5000000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]byte(tt.body), "")
			assert.Equal(t, tt.want.OK, got.OK)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.Amount, got.Amount)
			if tt.want.Reference != "" {
				assert.Equal(t, tt.want.Reference, got.Reference)
			}
		})
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	result := Normalize([]byte(`{"data":{"status":"success"}}`), "KBS_pro_1_XYZXYZ")
	assert.Equal(t, "KBS_pro_1_XYZXYZ", result.Reference)
	assert.Equal(t, "NGN", result.Currency)

	result = Normalize([]byte(`{"data":{"status":"success","customer_email":"alt@example.com"}}`), "")
	assert.Equal(t, "alt@example.com", result.Email)

	result = Normalize([]byte(`{"data":{"status":"success","meta":{"email":"meta@example.com","tier":"PRO"}}}`), "")
	assert.Equal(t, "meta@example.com", result.Email)
	assert.Equal(t, "pro", PlanFromMetadata(result.Metadata))
}

func TestNormalizeUnparseable(t *testing.T) {
	result := Normalize([]byte("<html>bad gateway</html>"), "KBS_vip_1_AAAAAA")
	require.False(t, result.OK)
	assert.Equal(t, "unknown", result.Status)
	assert.Equal(t, "KBS_vip_1_AAAAAA", result.Reference)
	assert.NotEmpty(t, result.Error)
}

func TestUserIDFromMetadataVariants(t *testing.T) {
	assert.Equal(t, "7", UserIDFromMetadata(map[string]any{"user_id": "7"}))
	assert.Equal(t, "7", UserIDFromMetadata(map[string]any{"userId": float64(7)}))
	assert.Equal(t, "", UserIDFromMetadata(map[string]any{"userId": float64(0)}))
	assert.Equal(t, "", UserIDFromMetadata(nil))
}
