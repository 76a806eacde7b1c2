package entitlements

import "strings"

// roleRank is the fixed tier hierarchy used for segment gating. "pro" sits
// above "vip" to match the live product configuration; see DESIGN.md before
// reordering.
var roleRank = map[string]int{
	"free":     0,
	"user":     0,
	"all":      0,
	"premium":  1,
	"vip":      2,
	"pro":      3,
	"lifetime": 4,
	"admin":    99,
}

// Rank maps a role or segment name to its position in the tier hierarchy.
// Unknown names rank lowest.
func Rank(name string) int {
	return roleRank[strings.ToLower(strings.TrimSpace(name))]
}

// CanAccess reports whether a viewer with the given role may see content
// gated to the given segment.
func CanAccess(role, segment string) bool {
	return Rank(role) >= Rank(segment)
}
