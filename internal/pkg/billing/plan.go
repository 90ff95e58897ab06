package billing

import (
	"strings"

	"github.com/postpilot/postpilot/internal/pkg/entitlements"
	"github.com/postpilot/postpilot/internal/pkg/env"
)

// PriceMapping binds one provider price identifier to an internal plan tier.
type PriceMapping struct {
	PriceID  string
	Plan     entitlements.Plan
	Interval string
}

// PriceTable is an ordered mapping table. Lookup is first-match-wins, so if
// two tiers are misconfigured to share a price ID the earlier-declared tier
// applies.
type PriceTable []PriceMapping

// LoadPriceTable reads the configured price IDs in fixed declaration order:
// pro/month, pro/year, max/month, max/year. Entries with no configured ID
// are omitted.
func LoadPriceTable() PriceTable {
	candidates := []struct {
		envKey   string
		plan     entitlements.Plan
		interval string
	}{
		{"BILLING_PRICE_PRO_MONTH", entitlements.PlanPro, "month"},
		{"BILLING_PRICE_PRO_YEAR", entitlements.PlanPro, "year"},
		{"BILLING_PRICE_MAX_MONTH", entitlements.PlanMax, "month"},
		{"BILLING_PRICE_MAX_YEAR", entitlements.PlanMax, "year"},
	}

	table := make(PriceTable, 0, len(candidates))
	for _, c := range candidates {
		id := strings.TrimSpace(env.GetEnv(c.envKey, ""))
		if id == "" {
			continue
		}
		table = append(table, PriceMapping{PriceID: id, Plan: c.plan, Interval: c.interval})
	}
	return table
}

// MapPrice resolves a provider price identifier to a plan tier. Unknown or
// empty identifiers map to the free tier.
func (t PriceTable) MapPrice(priceID string) entitlements.Plan {
	id := strings.TrimSpace(priceID)
	if id == "" {
		return entitlements.PlanFree
	}
	for _, m := range t {
		if m.PriceID == id {
			return m.Plan
		}
	}
	return entitlements.PlanFree
}
