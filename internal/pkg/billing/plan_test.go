package billing

import (
	"testing"

	"github.com/postpilot/postpilot/internal/pkg/entitlements"
)

func TestLoadPriceTable(t *testing.T) {
	t.Setenv("BILLING_PRICE_PRO_MONTH", "price_pro_m")
	t.Setenv("BILLING_PRICE_PRO_YEAR", "price_pro_y")
	t.Setenv("BILLING_PRICE_MAX_MONTH", "price_max_m")
	// BILLING_PRICE_MAX_YEAR intentionally unset

	table := LoadPriceTable()
	if len(table) != 3 {
		t.Fatalf("expected 3 mappings, got %d", len(table))
	}
	if table[0].PriceID != "price_pro_m" || table[0].Plan != entitlements.PlanPro {
		t.Errorf("unexpected first mapping: %+v", table[0])
	}
	if table[2].PriceID != "price_max_m" || table[2].Interval != "month" {
		t.Errorf("unexpected last mapping: %+v", table[2])
	}
}

func TestMapPrice(t *testing.T) {
	table := PriceTable{
		{PriceID: "price_pro_m", Plan: entitlements.PlanPro, Interval: "month"},
		{PriceID: "price_max_y", Plan: entitlements.PlanMax, Interval: "year"},
	}

	if got := table.MapPrice("price_pro_m"); got != entitlements.PlanPro {
		t.Errorf("expected pro, got %s", got)
	}
	if got := table.MapPrice("price_max_y"); got != entitlements.PlanMax {
		t.Errorf("expected max, got %s", got)
	}
	if got := table.MapPrice("price_unknown"); got != entitlements.PlanFree {
		t.Errorf("unknown price: expected free, got %s", got)
	}
	if got := table.MapPrice(""); got != entitlements.PlanFree {
		t.Errorf("empty price: expected free, got %s", got)
	}
	if got := table.MapPrice("  price_pro_m  "); got != entitlements.PlanPro {
		t.Errorf("untrimmed price: expected pro, got %s", got)
	}
}

func TestMapPriceFirstMatchWins(t *testing.T) {
	table := PriceTable{
		{PriceID: "price_shared", Plan: entitlements.PlanPro, Interval: "month"},
		{PriceID: "price_shared", Plan: entitlements.PlanMax, Interval: "month"},
	}
	if got := table.MapPrice("price_shared"); got != entitlements.PlanPro {
		t.Errorf("expected earlier-declared pro to win, got %s", got)
	}
}
