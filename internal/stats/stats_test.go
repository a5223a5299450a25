package stats

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{1, 2, 3}); !almostEqual(got, 2) {
		t.Errorf("Mean = %v, want 2", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{42}, 42},
		{[]float64{10, 20, 30}, 20},
		{[]float64{10, 20, 30, 40}, 25},
		{[]float64{30, 10, 20}, 20}, // unsorted input
	}
	for _, tt := range tests {
		if got := Median(tt.values); !almostEqual(got, tt.want) {
			t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("Median mutated its input: %v", values)
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev(nil); got != 0 {
		t.Errorf("StdDev(nil) = %v, want 0", got)
	}
	if got := StdDev([]float64{5}); got != 0 {
		t.Errorf("StdDev(single) = %v, want 0", got)
	}
	// Population std dev: mean 5, variance 4.
	if got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !almostEqual(got, 2) {
		t.Errorf("StdDev = %v, want 2", got)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	if len(got) != len(want) {
		t.Fatalf("MovingAverage length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("MovingAverage[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if MovingAverage(nil, 3) != nil {
		t.Error("MovingAverage(nil) should be nil")
	}
}

func TestLinearRegression(t *testing.T) {
	slope, r2 := LinearRegression([]float64{1, 2, 3})
	if !almostEqual(slope, 1) {
		t.Errorf("slope = %v, want 1", slope)
	}
	if !almostEqual(r2, 1) {
		t.Errorf("rSquared = %v, want 1", r2)
	}

	// A flat series has no variance to explain; treated as a perfect fit.
	slope, r2 = LinearRegression([]float64{5, 5, 5})
	if !almostEqual(slope, 0) || !almostEqual(r2, 1) {
		t.Errorf("flat series: slope=%v r2=%v, want 0 and 1", slope, r2)
	}

	slope, r2 = LinearRegression([]float64{7})
	if slope != 0 || r2 != 0 {
		t.Errorf("degenerate series: slope=%v r2=%v, want zeros", slope, r2)
	}
}
