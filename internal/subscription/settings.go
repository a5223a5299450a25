package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/recurring"
)

// Mutating operations on the subscription list are value transformations:
// each takes the current settings snapshot and returns a new one. The
// caller owns the single mutable reference and applies the replacement
// atomically; nothing here mutates shared state.

// Confirm transitions a pending subscription to active. The second return
// is false when no subscription with the id exists or the transition is
// not allowed from its current status.
func Confirm(settings model.Settings, subID string, now time.Time) (model.Settings, bool) {
	out := settings.Clone()
	for i := range out.Subscriptions {
		if out.Subscriptions[i].ID != subID {
			continue
		}
		if out.Subscriptions[i].Status != model.StatusPending {
			return settings, false
		}
		out.Subscriptions[i].Status = model.StatusActive
		out.Subscriptions[i].UpdatedAt = now
		return out, true
	}
	return settings, false
}

// ConfirmPattern creates an active subscription from a discovered pattern.
// Subsequent detection runs will no longer surface the pattern.
func ConfirmPattern(settings model.Settings, pattern recurring.Pattern, name string, now time.Time) model.Settings {
	out := settings.Clone()
	if name == "" {
		name = pattern.NormalizedPattern
	}
	last := pattern.LastSeen
	next := recurring.NextChargeDate(last, pattern.Frequency)
	out.Subscriptions = append(out.Subscriptions, model.Subscription{
		ID:              uuid.New().String(),
		Name:            name,
		MerchantPattern: pattern.NormalizedPattern,
		Frequency:       pattern.Frequency,
		Amount:          pattern.AverageAmount,
		AmountVariance:  pattern.AmountStdDev,
		Currency:        "USD",
		BillingDay:      int32(pattern.BillingDay),
		NextChargeDate:  &next,
		LastChargeDate:  &last,
		Status:          model.StatusActive,
		DetectionMethod: model.MethodPatternAnalysis,
		Confidence:      pattern.FrequencyConfidence,
		TransactionIDs:  append([]string(nil), pattern.TransactionIDs...),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	return out
}

// DismissPattern adds a pattern to the ignore list so detection stops
// surfacing it.
func DismissPattern(settings model.Settings, normalizedPattern string) model.Settings {
	out := settings.Clone()
	for _, p := range out.IgnoredPatterns {
		if p == normalizedPattern {
			return out
		}
	}
	out.IgnoredPatterns = append(out.IgnoredPatterns, normalizedPattern)
	return out
}

// Cancel soft-terminates a subscription. History is retained and no
// transition out of cancelled is provided; re-subscribing creates a new
// entity.
func Cancel(settings model.Settings, subID string, now time.Time) (model.Settings, bool) {
	out := settings.Clone()
	for i := range out.Subscriptions {
		if out.Subscriptions[i].ID != subID {
			continue
		}
		status := out.Subscriptions[i].Status
		if status != model.StatusActive && status != model.StatusPaused {
			return settings, false
		}
		out.Subscriptions[i].Status = model.StatusCancelled
		out.Subscriptions[i].UpdatedAt = now
		return out, true
	}
	return settings, false
}

// Update replaces the stored subscription with the given value, keeping
// identity and creation time.
func Update(settings model.Settings, sub model.Subscription, now time.Time) (model.Settings, bool) {
	out := settings.Clone()
	for i := range out.Subscriptions {
		if out.Subscriptions[i].ID != sub.ID {
			continue
		}
		updated := sub.Clone()
		updated.CreatedAt = out.Subscriptions[i].CreatedAt
		updated.UpdatedAt = now
		out.Subscriptions[i] = updated
		return out, true
	}
	return settings, false
}

// Remove deletes a subscription from the snapshot entirely.
func Remove(settings model.Settings, subID string) (model.Settings, bool) {
	out := settings.Clone()
	for i := range out.Subscriptions {
		if out.Subscriptions[i].ID == subID {
			out.Subscriptions = append(out.Subscriptions[:i], out.Subscriptions[i+1:]...)
			return out, true
		}
	}
	return settings, false
}
