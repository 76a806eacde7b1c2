package billing

// ChargeEvent is the normalized input the reconciler works from, regardless of
// whether the charge was observed via webhook, success-page verify, or the
// legacy Paystack path.
type ChargeEvent struct {
	Event      string
	Plan       string
	UserID     string // gateway metadata carries ids as strings; may be empty
	BuyerEmail string
	Amount     int64
	Currency   string
	Status     string
	Reference  string
	RawPayload string

	// CreateProfileIfMissing makes an unknown buyer email materialize a
	// profile stub. Enabled on the synchronous verify path only; webhooks
	// never create accounts.
	CreateProfileIfMissing bool
}
