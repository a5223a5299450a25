package recurring

import (
	"strings"
	"time"

	"github.com/spendlens/backend/internal/merchant"
	"github.com/spendlens/backend/internal/model"
)

// DetectionResult is the output of one detection pass: the surviving
// discovered patterns, any newly synthesized subscriptions, and the new
// settings snapshot for the caller to commit. The input settings value is
// never modified.
type DetectionResult struct {
	Patterns         []Pattern            `json:"patterns"`
	NewSubscriptions []model.Subscription `json:"newSubscriptions"`
	Settings         model.Settings       `json:"settings"`
}

// RunDetection is the explicit, caller-invoked entry point for a full
// detection pass. Pattern analysis always runs; known-service matching and
// auto-confirmation run only when auto-detection is enabled. Re-running on
// an unchanged snapshot is idempotent: confirmed subscriptions and ignored
// patterns are filtered out, so nothing is re-surfaced or re-created.
func RunDetection(txs []model.Transaction, settings model.Settings, now time.Time) DetectionResult {
	result := DetectionResult{Settings: settings.Clone()}

	patterns := AnalyzePatterns(txs, settings)
	result.Patterns = filterClaimedPatterns(patterns, settings)

	if !settings.EnableAutoDetection {
		return result
	}

	candidates := DetectKnownServices(txs, settings.Subscriptions, settings.IgnoredPatterns, settings, now)
	for i := range candidates {
		if candidates[i].Confidence >= settings.ConfidenceThreshold {
			candidates[i].Status = model.StatusActive
		}
	}
	result.NewSubscriptions = candidates
	result.Settings.Subscriptions = append(result.Settings.Subscriptions, candidates...)

	// Known-service candidates supersede their raw pattern entries.
	result.Patterns = filterClaimedPatterns(result.Patterns, result.Settings)
	return result
}

// filterClaimedPatterns drops patterns already claimed by a subscription's
// merchant pattern or listed in the ignore list.
func filterClaimedPatterns(patterns []Pattern, settings model.Settings) []Pattern {
	claimed := make(map[string]bool)
	for _, sub := range settings.Subscriptions {
		claimed[merchant.Canonicalize(sub.MerchantPattern)] = true
	}
	ignored := make(map[string]bool)
	for _, p := range settings.IgnoredPatterns {
		ignored[merchant.Canonicalize(p)] = true
	}

	out := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		if claimed[p.NormalizedPattern] || ignored[p.NormalizedPattern] {
			continue
		}
		if claimedBySubstring(p.NormalizedPattern, settings.Subscriptions) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// claimedBySubstring tolerates subscriptions whose stored merchant pattern
// is a looser substring of the normalized identity (or vice versa).
func claimedBySubstring(pattern string, subs []model.Subscription) bool {
	lower := strings.ToLower(pattern)
	for _, sub := range subs {
		sp := strings.ToLower(sub.MerchantPattern)
		if sp == "" {
			continue
		}
		if strings.Contains(lower, sp) || strings.Contains(sp, lower) {
			return true
		}
	}
	return false
}
