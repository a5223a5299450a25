package stats

import (
	"testing"
	"time"

	"github.com/spendlens/backend/internal/model"
)

func tx(id string, date time.Time, amount float64) model.Transaction {
	return model.Transaction{ID: id, Date: date, Merchant: "m", Amount: amount}
}

func TestFindPeakPeriods(t *testing.T) {
	txs := []model.Transaction{
		tx("a", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 100),
		tx("b", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 300),
		tx("c", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 120),
		tx("d", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), 80),
	}

	summary := FindPeakPeriods(txs)

	if summary.HighestMonth == nil || summary.HighestMonth.Period != "2024-02" {
		t.Fatalf("highest month = %+v, want 2024-02", summary.HighestMonth)
	}
	if summary.HighestMonth.Amount != 300 {
		t.Errorf("highest month amount = %v, want 300", summary.HighestMonth.Amount)
	}
	// Monthly mean is (100+300+200)/3 = 200, so February is +50%.
	if !almostEqual(summary.HighestMonth.PercentFromAverage, 50) {
		t.Errorf("highest month percent = %v, want 50", summary.HighestMonth.PercentFromAverage)
	}

	if summary.LowestMonth == nil || summary.LowestMonth.Period != "2024-01" {
		t.Fatalf("lowest month = %+v, want 2024-01", summary.LowestMonth)
	}
	if !almostEqual(summary.LowestMonth.PercentFromAverage, -50) {
		t.Errorf("lowest month percent = %v, want -50", summary.LowestMonth.PercentFromAverage)
	}

	if summary.HighestDay == nil || summary.HighestDay.Period != "2024-02-10" {
		t.Fatalf("highest day = %+v, want 2024-02-10", summary.HighestDay)
	}
	if summary.HighestDay.Amount != 300 {
		t.Errorf("highest day amount = %v, want 300", summary.HighestDay.Amount)
	}
}

func TestFindPeakPeriods_Empty(t *testing.T) {
	summary := FindPeakPeriods(nil)
	if summary.HighestMonth != nil || summary.LowestMonth != nil || summary.HighestDay != nil {
		t.Errorf("empty input should produce an empty summary, got %+v", summary)
	}
}

// Ties resolve to the earliest period so repeated runs give identical output.
func TestFindPeakPeriods_TieBreak(t *testing.T) {
	txs := []model.Transaction{
		tx("a", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 100),
		tx("b", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 100),
	}
	summary := FindPeakPeriods(txs)
	if summary.HighestMonth.Period != "2024-01" {
		t.Errorf("tie should pick earliest month, got %s", summary.HighestMonth.Period)
	}
	if summary.LowestMonth.Period != "2024-01" {
		t.Errorf("tie should pick earliest month, got %s", summary.LowestMonth.Period)
	}
}
