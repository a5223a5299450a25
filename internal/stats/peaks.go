package stats

import (
	"github.com/spendlens/backend/internal/model"
)

// PeakPeriod is one extreme period with its deviation from the overall
// monthly mean, as (amount - mean) / mean * 100. PercentFromAverage is 0
// when the mean is 0.
type PeakPeriod struct {
	Period             string  `json:"period"`
	Amount             float64 `json:"amount"`
	PercentFromAverage float64 `json:"percentFromAverage"`
}

// PeakSummary holds the highest-spend month, the lowest non-zero month,
// and the highest single calendar day.
type PeakSummary struct {
	HighestMonth *PeakPeriod `json:"highestMonth,omitempty"`
	LowestMonth  *PeakPeriod `json:"lowestMonth,omitempty"`
	HighestDay   *PeakPeriod `json:"highestDay,omitempty"`
}

// FindPeakPeriods scans transactions for the extreme month and day totals.
// Returns an empty summary for an empty transaction set.
func FindPeakPeriods(txs []model.Transaction) PeakSummary {
	if len(txs) == 0 {
		return PeakSummary{}
	}

	monthTotals := make(map[string]float64)
	dayTotals := make(map[string]float64)
	for _, tx := range txs {
		monthTotals[tx.Date.Format("2006-01")] += tx.Amount
		dayTotals[tx.Date.Format("2006-01-02")] += tx.Amount
	}

	monthlyAmounts := make([]float64, 0, len(monthTotals))
	for _, total := range monthTotals {
		monthlyAmounts = append(monthlyAmounts, total)
	}
	monthlyMean := Mean(monthlyAmounts)

	var summary PeakSummary
	for month, total := range monthTotals {
		if summary.HighestMonth == nil || total > summary.HighestMonth.Amount ||
			(total == summary.HighestMonth.Amount && month < summary.HighestMonth.Period) {
			summary.HighestMonth = &PeakPeriod{Period: month, Amount: total}
		}
		if total > 0 && (summary.LowestMonth == nil || total < summary.LowestMonth.Amount ||
			(total == summary.LowestMonth.Amount && month < summary.LowestMonth.Period)) {
			summary.LowestMonth = &PeakPeriod{Period: month, Amount: total}
		}
	}
	for day, total := range dayTotals {
		if summary.HighestDay == nil || total > summary.HighestDay.Amount ||
			(total == summary.HighestDay.Amount && day < summary.HighestDay.Period) {
			summary.HighestDay = &PeakPeriod{Period: day, Amount: total}
		}
	}

	if monthlyMean > 0 {
		if summary.HighestMonth != nil {
			summary.HighestMonth.PercentFromAverage = (summary.HighestMonth.Amount - monthlyMean) / monthlyMean * 100
		}
		if summary.LowestMonth != nil {
			summary.LowestMonth.PercentFromAverage = (summary.LowestMonth.Amount - monthlyMean) / monthlyMean * 100
		}
	}

	return summary
}
