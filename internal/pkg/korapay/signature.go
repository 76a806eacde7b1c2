package korapay

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"
)

// VerifySignature checks an inbound webhook signature against the shared
// secret. Korapay's documented digest algorithm has changed across gateway
// versions, so both HMAC-SHA256 and HMAC-SHA512 hex digests are accepted.
// An empty secret or signature fails immediately without any comparison.
func VerifySignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	if verifyHMACHex(payload, sig, []byte(secret), sha256.New) {
		return true
	}
	return verifyHMACHex(payload, sig, []byte(secret), sha512.New)
}

func verifyHMACHex(payload []byte, providedHex string, secret []byte, hashFunc func() hash.Hash) bool {
	mac := hmac.New(hashFunc, secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(providedHex)))
}
