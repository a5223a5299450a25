// Package analytics groups transactions into calendar buckets and rolls
// them up into the read-only overall summary consumed by presentation
// layers. Every function allocates its result; inputs are never mutated.
package analytics

import (
	"sort"
	"time"

	"github.com/spendlens/backend/internal/model"
)

// MonthlyBucket aggregates one calendar month that contains at least one
// transaction. Months with no transactions are not synthesized.
type MonthlyBucket struct {
	Month      string             `json:"month"` // "2006-01"
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"byCategory"`
	Count      int                `json:"count"`
}

// YearlyBucket aggregates one calendar year present in the data.
type YearlyBucket struct {
	Year           int     `json:"year"`
	Total          float64 `json:"total"`
	Count          int     `json:"count"`
	MonthlyAverage float64 `json:"monthlyAverage"`
}

// DateRange describes the span of a transaction set. Months counts the
// distinct (year, month) pairs touched, so partial months each count as
// one rather than using calendar arithmetic.
type DateRange struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Days   int       `json:"days"`
	Months int       `json:"months"`
}

// MonthlyBuckets partitions transactions into chronological monthly
// buckets with per-category subtotals.
func MonthlyBuckets(txs []model.Transaction) []MonthlyBucket {
	byMonth := make(map[string]*MonthlyBucket)
	for _, tx := range txs {
		key := tx.Date.Format("2006-01")
		bucket, ok := byMonth[key]
		if !ok {
			bucket = &MonthlyBucket{Month: key, ByCategory: make(map[string]float64)}
			byMonth[key] = bucket
		}
		bucket.Total += tx.Amount
		bucket.Count++
		bucket.ByCategory[tx.CategoryID] += tx.Amount
	}

	buckets := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}

// YearlyBuckets partitions transactions into chronological yearly buckets.
// MonthlyAverage divides the year total by the distinct months with data
// in that year, not by 12.
func YearlyBuckets(txs []model.Transaction) []YearlyBucket {
	totals := make(map[int]*YearlyBucket)
	monthsSeen := make(map[int]map[time.Month]bool)
	for _, tx := range txs {
		year := tx.Date.Year()
		bucket, ok := totals[year]
		if !ok {
			bucket = &YearlyBucket{Year: year}
			totals[year] = bucket
			monthsSeen[year] = make(map[time.Month]bool)
		}
		bucket.Total += tx.Amount
		bucket.Count++
		monthsSeen[year][tx.Date.Month()] = true
	}

	buckets := make([]YearlyBucket, 0, len(totals))
	for year, b := range totals {
		if n := len(monthsSeen[year]); n > 0 {
			b.MonthlyAverage = b.Total / float64(n)
		}
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Year < buckets[j].Year
	})
	return buckets
}

// GetDateRange returns the earliest and latest transaction dates, the
// inclusive day span, and the distinct-month count. Zero value for an
// empty set.
func GetDateRange(txs []model.Transaction) DateRange {
	if len(txs) == 0 {
		return DateRange{}
	}
	start, end := txs[0].Date, txs[0].Date
	months := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.Date.Before(start) {
			start = tx.Date
		}
		if tx.Date.After(end) {
			end = tx.Date
		}
		months[tx.Date.Format("2006-01")] = true
	}
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	days := int(endDay.Sub(startDay).Hours()/24) + 1
	return DateRange{Start: start, End: end, Days: days, Months: len(months)}
}
