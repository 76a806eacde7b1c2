package tiers

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jaguarlabs/jaguar/internal/pkg/env"
)

const (
	BillingCycleMonthly  = "monthly"
	BillingCycleLifetime = "lifetime"
)

// Features describes what a tier unlocks for the trading bot and signals feed.
type Features struct {
	BotAccess           bool   `json:"botAccess"`
	MaxSignalsPerDay    int    `json:"maxSignalsPerDay"` // 0 means unlimited
	MaxConcurrentTrades int    `json:"maxConcurrentTrades"`
	SignalQuality       string `json:"signalQuality"`
	Mentorship          bool   `json:"mentorship"`
}

// Tier is a static subscription level. The catalog is immutable at runtime;
// only prices can be overridden from the environment (TIER_<ID>_PRICE).
type Tier struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"displayName"`
	Description  string   `json:"description"`
	Price        int64    `json:"price"` // minor units (kobo)
	Currency     string   `json:"currency"`
	BillingCycle string   `json:"billingCycle"` // monthly, lifetime, or "" for free
	Features     Features `json:"features"`
}

// IsFree reports whether the tier needs no checkout.
func (t Tier) IsFree() bool {
	return t.Price <= 0
}

func catalog() []Tier {
	return []Tier{
		{
			ID:          "free",
			DisplayName: "Free",
			Description: "Market overview and community access",
			Price:       0,
			Currency:    "NGN",
			Features: Features{
				MaxSignalsPerDay:    1,
				MaxConcurrentTrades: 1,
				SignalQuality:       "basic",
			},
		},
		{
			ID:           "premium",
			DisplayName:  "Premium",
			Description:  "Daily signals with standard quality",
			Price:        priceFromEnv("premium", 25_000_00),
			Currency:     "NGN",
			BillingCycle: BillingCycleMonthly,
			Features: Features{
				MaxSignalsPerDay:    5,
				MaxConcurrentTrades: 2,
				SignalQuality:       "standard",
			},
		},
		{
			ID:           "vip",
			DisplayName:  "VIP",
			Description:  "High quality signals plus bot access",
			Price:        priceFromEnv("vip", 50_000_00),
			Currency:     "NGN",
			BillingCycle: BillingCycleMonthly,
			Features: Features{
				BotAccess:           true,
				MaxSignalsPerDay:    15,
				MaxConcurrentTrades: 5,
				SignalQuality:       "high",
			},
		},
		{
			ID:           "pro",
			DisplayName:  "Pro",
			Description:  "Full signal feed, bot access and mentorship",
			Price:        priceFromEnv("pro", 100_000_00),
			Currency:     "NGN",
			BillingCycle: BillingCycleMonthly,
			Features: Features{
				BotAccess:           true,
				MaxSignalsPerDay:    0,
				MaxConcurrentTrades: 10,
				SignalQuality:       "premium",
				Mentorship:          true,
			},
		},
		{
			ID:           "lifetime",
			DisplayName:  "Lifetime",
			Description:  "Permanent access to everything, one-time payment",
			Price:        priceFromEnv("lifetime", 500_000_00),
			Currency:     "NGN",
			BillingCycle: BillingCycleLifetime,
			Features: Features{
				BotAccess:           true,
				MaxSignalsPerDay:    0,
				MaxConcurrentTrades: 0,
				SignalQuality:       "premium",
				Mentorship:          true,
			},
		},
	}
}

func priceFromEnv(id string, def int64) int64 {
	raw := env.GetEnv("TIER_"+strings.ToUpper(id)+"_PRICE", "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// ByID resolves a tier by its id, case-insensitively.
func ByID(id string) (Tier, bool) {
	want := strings.ToLower(strings.TrimSpace(id))
	if want == "" {
		return Tier{}, false
	}
	for _, t := range catalog() {
		if t.ID == want {
			return t, true
		}
	}
	return Tier{}, false
}

// Sorted returns the catalog ordered by price, free tier first regardless of
// its configured price value.
func Sorted() []Tier {
	ts := catalog()
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].IsFree() != ts[j].IsFree() {
			return ts[i].IsFree()
		}
		return ts[i].Price < ts[j].Price
	})
	return ts
}
