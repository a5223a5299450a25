// Package recurring discovers subscription-like charge patterns in a
// transaction set without being told which merchants are subscriptions.
// Detection is a pure computation: every run derives fresh Pattern values
// from the current snapshot and nothing is mutated in place.
package recurring

import (
	"math"
	"sort"
	"time"

	"github.com/spendlens/backend/internal/merchant"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/stats"
)

// Pattern is one discovered recurring charge group. Recomputed on every
// detection pass and never persisted.
type Pattern struct {
	NormalizedPattern   string          `json:"normalizedPattern"`
	TransactionIDs      []string        `json:"transactionIds"`
	AverageAmount       float64         `json:"averageAmount"`
	AmountStdDev        float64         `json:"amountStdDev"`
	Frequency           model.Frequency `json:"frequency"`
	FrequencyConfidence float64         `json:"frequencyConfidence"`
	BillingDay          int             `json:"billingDay,omitempty"` // modal day-of-month, monthly-or-coarser only
	IntervalMeanDays    float64         `json:"intervalMeanDays"`
	IntervalStdDevDays  float64         `json:"intervalStdDevDays"`
	FirstSeen           time.Time       `json:"firstSeen"`
	LastSeen            time.Time       `json:"lastSeen"`
	Occurrences         int             `json:"occurrences"`
}

// frequencyBand matches a mean inter-charge interval to a recurrence class.
type frequencyBand struct {
	freq       model.Frequency
	min, max   float64
	targetDays float64
}

var frequencyBands = []frequencyBand{
	{model.FrequencyWeekly, 5, 9, 7},
	{model.FrequencyBiweekly, 12, 16, 14},
	{model.FrequencyMonthly, 27, 34, 30.44},
	{model.FrequencyQuarterly, 82, 100, 91.3},
	{model.FrequencySemiAnnual, 170, 195, 182.6},
	{model.FrequencyAnnual, 350, 380, 365.25},
}

// Interval dispersion above this coefficient of variation classifies a
// group as irregular regardless of its mean interval.
const irregularCVThreshold = 0.5

// AnalyzePatterns groups transactions by normalized merchant identity and
// infers a billing frequency and confidence for every group that clears
// settings.MinimumOccurrences. Output order is deterministic: confidence
// descending, then normalized pattern ascending.
func AnalyzePatterns(txs []model.Transaction, settings model.Settings) []Pattern {
	minOccurrences := settings.MinimumOccurrences
	if minOccurrences < 1 {
		minOccurrences = 2
	}

	groups := make(map[string][]model.Transaction)
	for _, tx := range txs {
		key := merchant.Canonicalize(tx.Merchant)
		groups[key] = append(groups[key], tx)
	}

	var patterns []Pattern
	for key, group := range groups {
		if len(group) < minOccurrences {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		var intervals []float64
		for i := 1; i < len(group); i++ {
			days := group[i].Date.Sub(group[i-1].Date).Hours() / 24
			if days > 0 {
				intervals = append(intervals, days)
			}
		}
		if len(intervals) == 0 {
			continue
		}

		amounts := make([]float64, len(group))
		ids := make([]string, len(group))
		for i, tx := range group {
			amounts[i] = tx.Amount
			ids[i] = tx.ID
		}

		intervalMean := stats.Mean(intervals)
		intervalStdDev := stats.StdDev(intervals)
		avgAmount := stats.Mean(amounts)
		amountStdDev := stats.StdDev(amounts)

		freq, confidence := classifyFrequency(intervals, intervalMean, intervalStdDev, avgAmount, amountStdDev)

		p := Pattern{
			NormalizedPattern:   key,
			TransactionIDs:      ids,
			AverageAmount:       avgAmount,
			AmountStdDev:        amountStdDev,
			Frequency:           freq,
			FrequencyConfidence: confidence,
			IntervalMeanDays:    intervalMean,
			IntervalStdDevDays:  intervalStdDev,
			FirstSeen:           group[0].Date,
			LastSeen:            group[len(group)-1].Date,
			Occurrences:         len(group),
		}
		if isMonthlyOrCoarser(freq) {
			p.BillingDay = modalDayOfMonth(group)
		}
		patterns = append(patterns, p)
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].FrequencyConfidence != patterns[j].FrequencyConfidence {
			return patterns[i].FrequencyConfidence > patterns[j].FrequencyConfidence
		}
		return patterns[i].NormalizedPattern < patterns[j].NormalizedPattern
	})
	return patterns
}

// classifyFrequency matches the mean interval against the reference bands
// and scores how cleanly the observed intervals and amounts fit the match.
func classifyFrequency(intervals []float64, intervalMean, intervalStdDev, avgAmount, amountStdDev float64) (model.Frequency, float64) {
	amountScore := amountStability(avgAmount, amountStdDev)

	// A single observed gap carries maximal uncertainty.
	gapFactor := 1.0
	if len(intervals) == 1 {
		gapFactor = 0.75
	}

	if intervalMean > 0 && intervalStdDev/intervalMean > irregularCVThreshold {
		return model.FrequencyIrregular, clamp01(0.25 * amountScore * gapFactor)
	}

	for _, band := range frequencyBands {
		if intervalMean < band.min || intervalMean > band.max {
			continue
		}
		inBand := 0
		for _, d := range intervals {
			if d >= band.min && d <= band.max {
				inBand++
			}
		}
		matchRatio := float64(inBand) / float64(len(intervals))
		tolerance := (band.max - band.min) / 2
		intervalScore := (1 - 0.5*math.Min(intervalStdDev/tolerance, 1)) * (0.5 + 0.5*matchRatio)
		return band.freq, clamp01(intervalScore * amountScore * gapFactor)
	}

	return model.FrequencyIrregular, clamp01(0.25 * amountScore * gapFactor)
}

// amountStability steps down with the amount coefficient of variation,
// mirroring the tiers used for interval dispersion. A zero mean amount is
// legal and treated as perfectly stable to avoid dividing by zero.
func amountStability(mean, stdDev float64) float64 {
	if mean == 0 {
		return 1
	}
	cv := stdDev / mean
	switch {
	case cv > 0.25:
		return 0.3
	case cv > 0.10:
		return 0.7
	default:
		return 1
	}
}

func isMonthlyOrCoarser(freq model.Frequency) bool {
	switch freq {
	case model.FrequencyMonthly, model.FrequencyQuarterly, model.FrequencySemiAnnual, model.FrequencyAnnual:
		return true
	}
	return false
}

// modalDayOfMonth returns the most frequent calendar day across the group,
// preferring the earliest day on ties.
func modalDayOfMonth(txs []model.Transaction) int {
	counts := make(map[int]int)
	for _, tx := range txs {
		counts[tx.Date.Day()]++
	}
	best, bestCount := 0, 0
	for day, count := range counts {
		if count > bestCount || (count == bestCount && day < best) {
			best, bestCount = day, count
		}
	}
	return best
}

// NextChargeDate projects the expected next charge from the last observed
// one. Irregular patterns default to a monthly projection.
func NextChargeDate(last time.Time, freq model.Frequency) time.Time {
	switch freq {
	case model.FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case model.FrequencyBiweekly:
		return last.AddDate(0, 0, 14)
	case model.FrequencyMonthly:
		return last.AddDate(0, 1, 0)
	case model.FrequencyQuarterly:
		return last.AddDate(0, 3, 0)
	case model.FrequencySemiAnnual:
		return last.AddDate(0, 6, 0)
	case model.FrequencyAnnual:
		return last.AddDate(1, 0, 0)
	default:
		return last.AddDate(0, 1, 0)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
