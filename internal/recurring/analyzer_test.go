package recurring

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/spendlens/backend/internal/model"
)

func tx(id, merchant string, date time.Time, amount float64) model.Transaction {
	return model.Transaction{ID: id, Date: date, Merchant: merchant, Amount: amount}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzePatterns_Monthly(t *testing.T) {
	// Three charges roughly 30 days apart, stable amount.
	txs := []model.Transaction{
		tx("a", "ACME STREAMING", day(2024, 1, 5), 9.99),
		tx("b", "ACME STREAMING", day(2024, 2, 3), 9.99),
		tx("c", "ACME STREAMING", day(2024, 3, 5), 9.99),
	}

	patterns := AnalyzePatterns(txs, model.DefaultSettings())
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	p := patterns[0]
	if p.NormalizedPattern != "ACME STREAMING" {
		t.Errorf("pattern = %q", p.NormalizedPattern)
	}
	if p.Frequency != model.FrequencyMonthly {
		t.Errorf("frequency = %s, want monthly", p.Frequency)
	}
	if p.FrequencyConfidence <= 0.8 {
		t.Errorf("confidence = %v, want > 0.8", p.FrequencyConfidence)
	}
	if p.Occurrences != 3 || len(p.TransactionIDs) != 3 {
		t.Errorf("occurrences = %d, ids = %d", p.Occurrences, len(p.TransactionIDs))
	}
	if p.AverageAmount != 9.99 {
		t.Errorf("average amount = %v", p.AverageAmount)
	}
	if p.BillingDay != 5 {
		t.Errorf("billing day = %d, want 5", p.BillingDay)
	}
	if p.IntervalMeanDays != 30 {
		t.Errorf("interval mean = %v, want 30", p.IntervalMeanDays)
	}
	if !p.FirstSeen.Equal(day(2024, 1, 5)) || !p.LastSeen.Equal(day(2024, 3, 5)) {
		t.Errorf("seen range = %v..%v", p.FirstSeen, p.LastSeen)
	}
}

// Two charges give one observed gap, which carries extra uncertainty
// relative to a longer history with the same cadence.
func TestAnalyzePatterns_TwoChargesLowerConfidence(t *testing.T) {
	two := []model.Transaction{
		tx("a", "GYM CO", day(2024, 1, 10), 40),
		tx("b", "GYM CO", day(2024, 2, 9), 40),
	}
	three := []model.Transaction{
		tx("a", "GYM CO", day(2024, 1, 10), 40),
		tx("b", "GYM CO", day(2024, 2, 9), 40),
		tx("c", "GYM CO", day(2024, 3, 10), 40),
	}

	p2 := AnalyzePatterns(two, model.DefaultSettings())
	p3 := AnalyzePatterns(three, model.DefaultSettings())
	if len(p2) != 1 || len(p3) != 1 {
		t.Fatalf("expected one pattern each, got %d and %d", len(p2), len(p3))
	}
	if math.Abs(p2[0].FrequencyConfidence-0.75) > 1e-9 {
		t.Errorf("two-charge confidence = %v, want 0.75", p2[0].FrequencyConfidence)
	}
	if p2[0].FrequencyConfidence >= p3[0].FrequencyConfidence {
		t.Errorf("two charges (%v) should score below three (%v)",
			p2[0].FrequencyConfidence, p3[0].FrequencyConfidence)
	}
}

func TestAnalyzePatterns_BelowMinimumOccurrences(t *testing.T) {
	txs := []model.Transaction{tx("a", "ONE OFF SHOP", day(2024, 1, 5), 25)}
	if got := AnalyzePatterns(txs, model.DefaultSettings()); len(got) != 0 {
		t.Errorf("expected no patterns for a single charge, got %d", len(got))
	}
}

func TestAnalyzePatterns_Irregular(t *testing.T) {
	// Intervals of 5, 45 and 12 days: far too dispersed for any band.
	txs := []model.Transaction{
		tx("a", "RANDOM SHOP", day(2024, 1, 1), 20),
		tx("b", "RANDOM SHOP", day(2024, 1, 6), 20),
		tx("c", "RANDOM SHOP", day(2024, 2, 20), 20),
		tx("d", "RANDOM SHOP", day(2024, 3, 3), 20),
	}
	patterns := AnalyzePatterns(txs, model.DefaultSettings())
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].Frequency != model.FrequencyIrregular {
		t.Errorf("frequency = %s, want irregular", patterns[0].Frequency)
	}
	if patterns[0].FrequencyConfidence > 0.3 {
		t.Errorf("irregular confidence = %v, want low", patterns[0].FrequencyConfidence)
	}
}

func TestAnalyzePatterns_WeeklyHasNoBillingDay(t *testing.T) {
	txs := []model.Transaction{
		tx("a", "MEAL KIT", day(2024, 1, 1), 60),
		tx("b", "MEAL KIT", day(2024, 1, 8), 60),
		tx("c", "MEAL KIT", day(2024, 1, 15), 60),
		tx("d", "MEAL KIT", day(2024, 1, 22), 60),
	}
	patterns := AnalyzePatterns(txs, model.DefaultSettings())
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].Frequency != model.FrequencyWeekly {
		t.Errorf("frequency = %s, want weekly", patterns[0].Frequency)
	}
	// Day-of-month is meaningless for sub-monthly cadences.
	if patterns[0].BillingDay != 0 {
		t.Errorf("billing day = %d, want 0", patterns[0].BillingDay)
	}
}

func TestAnalyzePatterns_AmountVariationLowersConfidence(t *testing.T) {
	stable := []model.Transaction{
		tx("a", "STEADY CO", day(2024, 1, 5), 12),
		tx("b", "STEADY CO", day(2024, 2, 4), 12),
		tx("c", "STEADY CO", day(2024, 3, 5), 12),
	}
	varying := []model.Transaction{
		tx("a", "WOBBLY CO", day(2024, 1, 5), 10),
		tx("b", "WOBBLY CO", day(2024, 2, 4), 16),
		tx("c", "WOBBLY CO", day(2024, 3, 5), 10),
	}

	ps := AnalyzePatterns(stable, model.DefaultSettings())
	pv := AnalyzePatterns(varying, model.DefaultSettings())
	if len(ps) != 1 || len(pv) != 1 {
		t.Fatalf("expected one pattern each")
	}
	if pv[0].FrequencyConfidence >= ps[0].FrequencyConfidence {
		t.Errorf("varying amounts (%v) should score below stable (%v)",
			pv[0].FrequencyConfidence, ps[0].FrequencyConfidence)
	}
}

func TestAnalyzePatterns_SameDayChargesSkipped(t *testing.T) {
	// All charges on one day leave no positive intervals to classify.
	d := day(2024, 1, 5)
	txs := []model.Transaction{
		tx("a", "SPLIT BILL", d, 10),
		tx("b", "SPLIT BILL", d, 10),
		tx("c", "SPLIT BILL", d, 10),
	}
	if got := AnalyzePatterns(txs, model.DefaultSettings()); len(got) != 0 {
		t.Errorf("expected no patterns, got %d", len(got))
	}
}

func TestAnalyzePatterns_DeterministicOrder(t *testing.T) {
	txs := []model.Transaction{
		tx("a1", "STEADY CO", day(2024, 1, 5), 12),
		tx("a2", "STEADY CO", day(2024, 2, 4), 12),
		tx("a3", "STEADY CO", day(2024, 3, 5), 12),
		tx("b1", "WOBBLY CO", day(2024, 1, 5), 10),
		tx("b2", "WOBBLY CO", day(2024, 2, 4), 16),
		tx("b3", "WOBBLY CO", day(2024, 3, 5), 10),
	}
	first := AnalyzePatterns(txs, model.DefaultSettings())
	if len(first) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(first))
	}
	if first[0].NormalizedPattern != "STEADY CO" {
		t.Errorf("higher-confidence pattern should come first, got %q", first[0].NormalizedPattern)
	}
	second := AnalyzePatterns(txs, model.DefaultSettings())
	for i := range first {
		if first[i].NormalizedPattern != second[i].NormalizedPattern ||
			first[i].FrequencyConfidence != second[i].FrequencyConfidence {
			t.Errorf("run output differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAnalyzePatterns_EndToEnd(t *testing.T) {
	// Four Netflix charges 30 days apart among unrelated one-off spending:
	// exactly one pattern comes out, and it is the Netflix one.
	start := day(2024, 1, 5)
	var txs []model.Transaction
	for i := 0; i < 4; i++ {
		txs = append(txs, tx(
			fmt.Sprintf("n%d", i+1), "NETFLIX.COM", start.AddDate(0, 0, 30*i), 15.49))
	}
	txs = append(txs,
		tx("x1", "HARDWARE STORE", day(2024, 2, 1), 89.50),
		tx("x2", "AIRPORT PARKING", day(2024, 3, 12), 24),
	)

	patterns := AnalyzePatterns(txs, model.DefaultSettings())
	if len(patterns) != 1 {
		t.Fatalf("expected exactly 1 pattern, got %d", len(patterns))
	}
	p := patterns[0]
	if p.NormalizedPattern != "NETFLIX" {
		t.Errorf("pattern = %q, want NETFLIX", p.NormalizedPattern)
	}
	if p.Frequency != model.FrequencyMonthly {
		t.Errorf("frequency = %s, want monthly", p.Frequency)
	}
	if p.Occurrences != 4 {
		t.Errorf("occurrences = %d, want 4", p.Occurrences)
	}
	// Identical amounts at exact 30-day spacing score perfectly.
	if p.FrequencyConfidence != 1 {
		t.Errorf("confidence = %v, want 1", p.FrequencyConfidence)
	}
}

func TestNextChargeDate(t *testing.T) {
	base := day(2024, 1, 15)
	tests := []struct {
		freq model.Frequency
		want time.Time
	}{
		{model.FrequencyWeekly, day(2024, 1, 22)},
		{model.FrequencyBiweekly, day(2024, 1, 29)},
		{model.FrequencyMonthly, day(2024, 2, 15)},
		{model.FrequencyQuarterly, day(2024, 4, 15)},
		{model.FrequencySemiAnnual, day(2024, 7, 15)},
		{model.FrequencyAnnual, day(2025, 1, 15)},
		{model.FrequencyIrregular, day(2024, 2, 15)},
	}
	for _, tt := range tests {
		if got := NextChargeDate(base, tt.freq); !got.Equal(tt.want) {
			t.Errorf("NextChargeDate(%s) = %v, want %v", tt.freq, got, tt.want)
		}
	}
}
