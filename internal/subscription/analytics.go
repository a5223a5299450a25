// Package subscription reconciles detected patterns and known-service
// matches against the user's confirmed subscription list, and computes
// renewal forecasts, price-change history, and lifetime summaries. All
// entry points are pure functions over snapshots.
package subscription

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/stats"
)

// Analytics is the lifetime financial summary for one subscription.
type Analytics struct {
	SubscriptionID string     `json:"subscriptionId"`
	TotalSpent     float64    `json:"totalSpent"`
	AverageAmount  float64    `json:"averageAmount"`
	AmountStdDev   float64    `json:"amountStdDev"`
	MonthlyRate    float64    `json:"monthlyRate"`
	AnnualRate     float64    `json:"annualRate"`
	ChargeCount    int        `json:"chargeCount"`
	ActiveDays     int        `json:"activeDays"`
	PriceStability float64    `json:"priceStability"`
	FirstCharge    *time.Time `json:"firstCharge,omitempty"`
	LastCharge     *time.Time `json:"lastCharge,omitempty"`
}

// PriceChange is one qualifying transition between consecutive charges.
type PriceChange struct {
	Date          time.Time `json:"date"`
	PreviousDate  time.Time `json:"previousDate"`
	OldAmount     float64   `json:"oldAmount"`
	NewAmount     float64   `json:"newAmount"`
	PercentChange float64   `json:"percentChange"`
}

// Renewal is one upcoming expected charge.
type Renewal struct {
	SubscriptionID string    `json:"subscriptionId"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	Date           time.Time `json:"date"`
	DaysUntil      int       `json:"daysUntil"`
}

// MatchTransactions returns the charges belonging to a subscription,
// matched by explicit id membership or by case-insensitive substring of
// the merchant pattern, deduplicated and sorted newest-first. The dual
// match tolerates subscriptions created before some transactions existed.
func MatchTransactions(sub model.Subscription, txs []model.Transaction) []model.Transaction {
	idSet := make(map[string]bool, len(sub.TransactionIDs))
	for _, id := range sub.TransactionIDs {
		idSet[id] = true
	}
	pattern := strings.ToLower(sub.MerchantPattern)

	var matched []model.Transaction
	seen := make(map[string]bool)
	for _, tx := range txs {
		if seen[tx.ID] {
			continue
		}
		if idSet[tx.ID] || (pattern != "" && strings.Contains(strings.ToLower(tx.Merchant), pattern)) {
			matched = append(matched, tx)
			seen[tx.ID] = true
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})
	return matched
}

// CalculateAnalytics computes the lifetime summary for a subscription.
// With no matching charges it short-circuits to a default-stable,
// zero-spend summary projected from the subscription's nominal amount.
func CalculateAnalytics(sub model.Subscription, txs []model.Transaction) Analytics {
	charges := MatchTransactions(sub, txs)
	if len(charges) == 0 {
		monthly := NormalizeToMonthly(sub.Amount, sub.Frequency)
		return Analytics{
			SubscriptionID: sub.ID,
			MonthlyRate:    monthly,
			AnnualRate:     monthly * 12,
			PriceStability: 1,
		}
	}

	amounts := make([]float64, len(charges))
	var total float64
	for i, tx := range charges {
		amounts[i] = tx.Amount
		total += tx.Amount
	}
	avg := stats.Mean(amounts)
	stdDev := stats.StdDev(amounts)

	// charges are newest-first
	last := charges[0].Date
	first := charges[len(charges)-1].Date
	monthly := NormalizeToMonthly(avg, sub.Frequency)

	return Analytics{
		SubscriptionID: sub.ID,
		TotalSpent:     total,
		AverageAmount:  avg,
		AmountStdDev:   stdDev,
		MonthlyRate:    monthly,
		AnnualRate:     monthly * 12,
		ChargeCount:    len(charges),
		ActiveDays:     int(last.Sub(first).Hours() / 24),
		PriceStability: priceStability(avg, stdDev),
		FirstCharge:    &first,
		LastCharge:     &last,
	}
}

// priceStability is clamp(1 - stdDev/mean, 0, 1); a zero mean amount is
// treated as perfectly stable.
func priceStability(mean, stdDev float64) float64 {
	if mean == 0 {
		return 1
	}
	return math.Max(0, math.Min(1, 1-stdDev/mean))
}

// DetectPriceChanges walks the chronologically sorted charge history and
// flags every consecutive pair whose percent change meets the threshold.
// Each qualifying transition yields one entry; drift is not accumulated.
// Requires at least two charges.
func DetectPriceChanges(sub model.Subscription, txs []model.Transaction, thresholdPercent float64) []PriceChange {
	charges := MatchTransactions(sub, txs)
	if len(charges) < 2 {
		return nil
	}
	// oldest-first for the walk
	sort.Slice(charges, func(i, j int) bool {
		return charges[i].Date.Before(charges[j].Date)
	})

	var changes []PriceChange
	for i := 1; i < len(charges); i++ {
		prev, curr := charges[i-1], charges[i]
		if prev.Amount == 0 {
			continue
		}
		pct := (curr.Amount - prev.Amount) / prev.Amount * 100
		if math.Abs(pct) >= thresholdPercent {
			changes = append(changes, PriceChange{
				Date:          curr.Date,
				PreviousDate:  prev.Date,
				OldAmount:     prev.Amount,
				NewAmount:     curr.Amount,
				PercentChange: pct,
			})
		}
	}
	return changes
}

// UpcomingRenewals returns the renewal forecast for active subscriptions
// whose next expected charge falls within horizonDays of now, sorted by
// date ascending.
func UpcomingRenewals(subs []model.Subscription, horizonDays int, now time.Time) []Renewal {
	var renewals []Renewal
	for _, sub := range subs {
		if sub.Status != model.StatusActive || sub.NextChargeDate == nil {
			continue
		}
		days := DaysUntilRenewal(*sub.NextChargeDate, now)
		if days < 0 || days > horizonDays {
			continue
		}
		renewals = append(renewals, Renewal{
			SubscriptionID: sub.ID,
			Name:           sub.Name,
			Amount:         sub.Amount,
			Date:           *sub.NextChargeDate,
			DaysUntil:      days,
		})
	}
	sort.Slice(renewals, func(i, j int) bool {
		if !renewals[i].Date.Equal(renewals[j].Date) {
			return renewals[i].Date.Before(renewals[j].Date)
		}
		return renewals[i].Name < renewals[j].Name
	})
	return renewals
}

// DaysUntilRenewal is ceil((next - now) / 1 day).
func DaysUntilRenewal(next, now time.Time) int {
	return int(math.Ceil(next.Sub(now).Hours() / 24))
}

// NormalizeToMonthly converts an amount at the given billing frequency to
// its monthly-equivalent rate. Irregular frequencies pass through.
func NormalizeToMonthly(amount float64, freq model.Frequency) float64 {
	switch freq {
	case model.FrequencyWeekly:
		return amount * 4.33
	case model.FrequencyBiweekly:
		return amount * 2.17
	case model.FrequencyMonthly:
		return amount
	case model.FrequencyQuarterly:
		return amount / 3
	case model.FrequencySemiAnnual:
		return amount / 6
	case model.FrequencyAnnual:
		return amount / 12
	default:
		return amount
	}
}

// FormatFrequency renders a billing frequency for display.
func FormatFrequency(freq model.Frequency) string {
	switch freq {
	case model.FrequencyWeekly:
		return "Weekly"
	case model.FrequencyBiweekly:
		return "Every 2 weeks"
	case model.FrequencyMonthly:
		return "Monthly"
	case model.FrequencyQuarterly:
		return "Quarterly"
	case model.FrequencySemiAnnual:
		return "Every 6 months"
	case model.FrequencyAnnual:
		return "Yearly"
	default:
		return "Irregular"
	}
}

// FormatDuration renders a day span in the largest sensible unit.
func FormatDuration(days int) string {
	switch {
	case days < 0:
		return "0 days"
	case days == 1:
		return "1 day"
	case days < 60:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		months := days / 30
		if months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	default:
		years := days / 365
		if years == 1 {
			return "1 year"
		}
		return fmt.Sprintf("%d years", years)
	}
}
