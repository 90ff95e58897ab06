package entitlements

import "strings"

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanMax  Plan = "max"
)

// Normalize maps arbitrary plan strings to a known tier, defaulting to free.
func Normalize(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPro):
		return PlanPro
	case string(PlanMax):
		return PlanMax
	default:
		return PlanFree
	}
}

// Rank orders tiers for comparisons (max > pro > free).
func Rank(plan Plan) int {
	switch Normalize(string(plan)) {
	case PlanMax:
		return 2
	case PlanPro:
		return 1
	default:
		return 0
	}
}

// MonthlyGenerationLimit returns how many drafts a plan may generate per
// month. The generation pipeline itself lives outside this service; the
// limit is exposed here so the API can report it alongside the plan.
func MonthlyGenerationLimit(plan Plan) int {
	switch Normalize(string(plan)) {
	case PlanMax:
		return 1000
	case PlanPro:
		return 200
	default:
		return 10
	}
}
