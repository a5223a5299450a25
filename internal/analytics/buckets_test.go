package analytics

import (
	"testing"
	"time"

	"github.com/spendlens/backend/internal/model"
)

func tx(id string, date time.Time, category string, amount float64) model.Transaction {
	return model.Transaction{ID: id, Date: date, Merchant: "m", CategoryID: category, Amount: amount}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyBuckets(t *testing.T) {
	txs := []model.Transaction{
		tx("a", day(2024, 1, 5), "food", 50),
		tx("b", day(2024, 1, 20), "fun", 30),
		tx("c", day(2024, 2, 3), "food", 20),
	}

	buckets := MonthlyBuckets(txs)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	jan := buckets[0]
	if jan.Month != "2024-01" || jan.Total != 80 || jan.Count != 2 {
		t.Errorf("january bucket = %+v", jan)
	}
	if jan.ByCategory["food"] != 50 || jan.ByCategory["fun"] != 30 {
		t.Errorf("january byCategory = %+v", jan.ByCategory)
	}
	feb := buckets[1]
	if feb.Month != "2024-02" || feb.Total != 20 || feb.Count != 1 {
		t.Errorf("february bucket = %+v", feb)
	}
}

// Every transaction lands in exactly one bucket, so bucket totals and
// counts always partition the input.
func TestMonthlyBuckets_Partition(t *testing.T) {
	txs := []model.Transaction{
		tx("a", day(2023, 12, 31), "x", 11.5),
		tx("b", day(2024, 1, 1), "y", 3.25),
		tx("c", day(2024, 1, 31), "x", 7),
		tx("d", day(2024, 6, 15), "z", 100),
	}
	var wantTotal float64
	for _, tr := range txs {
		wantTotal += tr.Amount
	}

	var gotTotal float64
	gotCount := 0
	for _, b := range MonthlyBuckets(txs) {
		gotTotal += b.Total
		gotCount += b.Count
	}
	if gotTotal != wantTotal {
		t.Errorf("bucket totals sum to %v, want %v", gotTotal, wantTotal)
	}
	if gotCount != len(txs) {
		t.Errorf("bucket counts sum to %d, want %d", gotCount, len(txs))
	}
}

func TestYearlyBuckets(t *testing.T) {
	txs := []model.Transaction{
		tx("a", day(2023, 7, 1), "x", 100),
		tx("b", day(2024, 1, 5), "x", 80),
		tx("c", day(2024, 2, 5), "x", 20),
	}

	buckets := YearlyBuckets(txs)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Year != 2023 || buckets[0].Total != 100 {
		t.Errorf("2023 bucket = %+v", buckets[0])
	}
	// Averages divide by months with data, not by 12.
	if buckets[0].MonthlyAverage != 100 {
		t.Errorf("2023 monthly average = %v, want 100", buckets[0].MonthlyAverage)
	}
	if buckets[1].Year != 2024 || buckets[1].Total != 100 || buckets[1].MonthlyAverage != 50 {
		t.Errorf("2024 bucket = %+v", buckets[1])
	}
}

func TestGetDateRange(t *testing.T) {
	txs := []model.Transaction{
		tx("a", day(2024, 2, 20), "x", 1),
		tx("b", day(2024, 1, 15), "x", 1),
	}
	r := GetDateRange(txs)
	if !r.Start.Equal(day(2024, 1, 15)) || !r.End.Equal(day(2024, 2, 20)) {
		t.Errorf("range = %v..%v", r.Start, r.End)
	}
	if r.Days != 37 {
		t.Errorf("days = %d, want 37", r.Days)
	}
	if r.Months != 2 {
		t.Errorf("months = %d, want 2", r.Months)
	}
}

func TestGetDateRange_Empty(t *testing.T) {
	r := GetDateRange(nil)
	if r.Days != 0 || r.Months != 0 || !r.Start.IsZero() {
		t.Errorf("empty range = %+v", r)
	}
}
