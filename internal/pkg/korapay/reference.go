package korapay

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ReferencePrefix correlates one checkout attempt across init, webhook and
// verify. Format: KBS_<plan>_<epochMillis>_<RAND6>.
const ReferencePrefix = "KBS_"

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var referencePattern = regexp.MustCompile(`KBS_[A-Za-z0-9_]+`)

// NewReference generates a collision-resistant charge reference for a plan.
func NewReference(planID string) string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand failing is unrecoverable for payment correlation.
		panic(err)
	}
	for i, b := range suffix {
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return fmt.Sprintf("%s%s_%d_%s", ReferencePrefix, planID, time.Now().UnixMilli(), suffix)
}

// ExtractReference recovers the first well-formed reference token from a
// noisy redirect value. Gateways are known to concatenate multiple
// reference-like tokens with commas or back to back.
func ExtractReference(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if idx := strings.Index(trimmed, ","); idx >= 0 {
		trimmed = strings.TrimSpace(trimmed[:idx])
	}

	first := strings.Index(trimmed, ReferencePrefix)
	if first == 0 {
		// Two KBS_ tokens glued together: cut at the second occurrence.
		if second := strings.Index(trimmed[len(ReferencePrefix):], ReferencePrefix); second >= 0 {
			return trimmed[:second+len(ReferencePrefix)]
		}
	}

	if match := referencePattern.FindString(trimmed); match != "" {
		return match
	}
	return trimmed
}
