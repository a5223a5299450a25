package analytics

import (
	"sort"

	"github.com/spendlens/backend/internal/merchant"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/stats"
)

// CategoryTotal is one category's share of overall spending.
type CategoryTotal struct {
	CategoryID     string  `json:"categoryId"`
	Total          float64 `json:"total"`
	PercentOfTotal float64 `json:"percentOfTotal"`
	MonthlyAverage float64 `json:"monthlyAverage"`
}

// MerchantTotal is one normalized merchant's overall spending.
type MerchantTotal struct {
	Merchant string  `json:"merchant"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// Summary is the single read-only object the facade hands to presentation
// layers. All ids are copies; nothing references back into the input set.
type Summary struct {
	TotalSpending         float64           `json:"totalSpending"`
	TransactionCount      int               `json:"transactionCount"`
	DateRange             DateRange         `json:"dateRange"`
	MonthlyMean           float64           `json:"monthlyMean"`
	MonthlyMedian         float64           `json:"monthlyMedian"`
	MonthlyStdDev         float64           `json:"monthlyStdDev"`
	AveragePerTransaction float64           `json:"averagePerTransaction"`
	TrendSlope            float64           `json:"trendSlope"`
	TrendRSquared         float64           `json:"trendRSquared"`
	Peaks                 stats.PeakSummary `json:"peaks"`
	MonthlyBuckets        []MonthlyBucket   `json:"monthlyBuckets"`
	YearlyBuckets         []YearlyBucket    `json:"yearlyBuckets"`
	Categories            []CategoryTotal   `json:"categories"`
	Merchants             []MerchantTotal   `json:"merchants"`
}

// Summarize combines the bucketed aggregates, peak periods, and
// category/merchant rollups into one summary. An empty transaction set
// yields an all-zero summary, never an error.
func Summarize(txs []model.Transaction) Summary {
	summary := Summary{
		MonthlyBuckets: MonthlyBuckets(txs),
		YearlyBuckets:  YearlyBuckets(txs),
		DateRange:      GetDateRange(txs),
		Peaks:          stats.FindPeakPeriods(txs),
	}

	for _, tx := range txs {
		summary.TotalSpending += tx.Amount
	}
	summary.TransactionCount = len(txs)
	if len(txs) > 0 {
		summary.AveragePerTransaction = summary.TotalSpending / float64(len(txs))
	}

	monthlyTotals := make([]float64, len(summary.MonthlyBuckets))
	for i, b := range summary.MonthlyBuckets {
		monthlyTotals[i] = b.Total
	}
	summary.MonthlyMean = stats.Mean(monthlyTotals)
	summary.MonthlyMedian = stats.Median(monthlyTotals)
	summary.MonthlyStdDev = stats.StdDev(monthlyTotals)
	summary.TrendSlope, summary.TrendRSquared = stats.LinearRegression(monthlyTotals)

	summary.Categories = categoryRollup(txs, summary.TotalSpending, summary.DateRange.Months)
	summary.Merchants = merchantRollup(txs)
	return summary
}

func categoryRollup(txs []model.Transaction, total float64, months int) []CategoryTotal {
	byCat := make(map[string]float64)
	for _, tx := range txs {
		byCat[tx.CategoryID] += tx.Amount
	}
	out := make([]CategoryTotal, 0, len(byCat))
	for cat, amount := range byCat {
		ct := CategoryTotal{CategoryID: cat, Total: amount}
		if total > 0 {
			ct.PercentOfTotal = amount / total * 100
		}
		if months > 0 {
			ct.MonthlyAverage = amount / float64(months)
		}
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

func merchantRollup(txs []model.Transaction) []MerchantTotal {
	type entry struct {
		total float64
		count int
	}
	byMerchant := make(map[string]*entry)
	for _, tx := range txs {
		key := merchant.Canonicalize(tx.Merchant)
		e, ok := byMerchant[key]
		if !ok {
			e = &entry{}
			byMerchant[key] = e
		}
		e.total += tx.Amount
		e.count++
	}
	out := make([]MerchantTotal, 0, len(byMerchant))
	for name, e := range byMerchant {
		out = append(out, MerchantTotal{Merchant: name, Total: e.total, Count: e.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Merchant < out[j].Merchant
	})
	return out
}
