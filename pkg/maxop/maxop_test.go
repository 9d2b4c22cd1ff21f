package maxop

import (
	"math"
	"testing"
)

var pairs = [][2]float64{
	{0, 0},
	{1, 0},
	{0, 1},
	{-3.5, -3.25},
	{10, -10},
	{0.4, 0.45},
	{2, 2.2},
	{-1e30, 0},
	{0, -1e30},
	{-1e30, -1e30},
	{7.9, 0},
	{8.1, 0},
}

func TestMaxStar_MatchesLogSumExp(t *testing.T) {
	op := MaxStar[float64]{}
	for _, p := range pairs[:7] {
		want := math.Log(math.Exp(p[0]) + math.Exp(p[1]))
		got := op.Combine(p[0], p[1])
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("MaxStar(%v, %v) = %v, want %v", p[0], p[1], got, want)
		}
	}
}

// TestOrdering tests max <= approximations <= max* for every pair
func TestOrdering(t *testing.T) {
	for _, p := range pairs {
		a, b := p[0], p[1]
		plain := Max[float64]{}.Combine(a, b)
		exact := MaxStar[float64]{}.Combine(a, b)
		linear := MaxLinear[float64]{}.Combine(a, b)
		table := MaxTable[float64]{}.Combine(a, b)

		if math.IsNaN(exact) || math.IsNaN(linear) || math.IsNaN(table) {
			t.Fatalf("NaN for (%v, %v)", a, b)
		}
		for name, v := range map[string]float64{"linear": linear, "table": table} {
			if v < plain {
				t.Errorf("%s(%v, %v) = %v below plain max %v", name, a, b, v, plain)
			}
			if v > exact {
				t.Errorf("%s(%v, %v) = %v above max* %v", name, a, b, v, exact)
			}
		}
	}
}

func TestOrdering_Float32(t *testing.T) {
	for _, p := range pairs {
		a, b := float32(p[0]), float32(p[1])
		plain := Max[float32]{}.Combine(a, b)
		exact := MaxStar[float32]{}.Combine(a, b)
		table := MaxTable[float32]{}.Combine(a, b)
		linear := MaxLinear[float32]{}.Combine(a, b)
		if table < plain || linear < plain {
			t.Errorf("approximation below plain max for (%v, %v)", a, b)
		}
		// float32 rounding of the correction term is allowed a small slack
		if table > exact+1e-6 || linear > exact+1e-6 {
			t.Errorf("approximation above max* for (%v, %v): table=%v linear=%v exact=%v", a, b, table, linear, exact)
		}
	}
}

func TestConvergence(t *testing.T) {
	star, table, linear := MaxStar[float64]{}, MaxTable[float64]{}, MaxLinear[float64]{}
	for _, d := range []float64{10, 20, 40} {
		exact := star.Combine(d, 0)
		if exact-d > math.Exp(-d)+1e-12 {
			t.Errorf("max*(%v, 0) - %v = %v, expected <= exp(-d)", d, d, exact-d)
		}
		if got := table.Combine(d, 0); got != d {
			t.Errorf("MaxTable(%v, 0) = %v, want %v", d, got, d)
		}
		if got := linear.Combine(0, d); got != d {
			t.Errorf("MaxLinear(0, %v) = %v, want %v", d, got, d)
		}
	}
}

func TestCommutative(t *testing.T) {
	star, table, linear := MaxStar[float64]{}, MaxTable[float64]{}, MaxLinear[float64]{}
	for _, p := range pairs {
		if star.Combine(p[0], p[1]) != star.Combine(p[1], p[0]) {
			t.Errorf("MaxStar not commutative for %v", p)
		}
		if table.Combine(p[0], p[1]) != table.Combine(p[1], p[0]) {
			t.Errorf("MaxTable not commutative for %v", p)
		}
		if linear.Combine(p[0], p[1]) != linear.Combine(p[1], p[0]) {
			t.Errorf("MaxLinear not commutative for %v", p)
		}
	}
}

func TestFold(t *testing.T) {
	if got := Fold[float64](Max[float64]{}, -1, 3, 9, 2); got != 9 {
		t.Errorf("Fold(Max) = %v, want 9", got)
	}
	if got := Fold[float64](Max[float64]{}, -1); got != -1 {
		t.Errorf("Fold on empty = %v, want floor -1", got)
	}

	got := Fold[float64](MaxStar[float64]{}, 0, 0, 0, 0, 0)
	if math.Abs(got-math.Log(4)) > 1e-12 {
		t.Errorf("Fold(MaxStar) of four zeros = %v, want log 4", got)
	}
}

func TestNames(t *testing.T) {
	got := []string{Max[float32]{}.Name(), MaxStar[float32]{}.Name(), MaxLinear[float32]{}.Name(), MaxTable[float32]{}.Name()}
	for i, name := range got {
		if name != Names[i] {
			t.Errorf("operator %d name = %q, want %q", i, name, Names[i])
		}
	}
	for _, n := range Names {
		if !Valid(n) {
			t.Errorf("Valid(%q) = false", n)
		}
	}
	if Valid("min") {
		t.Error("Valid(\"min\") = true")
	}
}

// TestMaxTable_NaN tests that a NaN difference returns an input uncorrected
func TestMaxTable_NaN(t *testing.T) {
	nan := math.NaN()
	same := func(x, y float64) bool { return x == y || (math.IsNaN(x) && math.IsNaN(y)) }
	for _, p := range [][2]float64{{nan, 0}, {0, nan}, {nan, nan}, {nan, -1e30}} {
		got := MaxTable[float64]{}.Combine(p[0], p[1])
		if !same(got, p[0]) && !same(got, p[1]) {
			t.Errorf("MaxTable(%v, %v) = %v, want one of the inputs", p[0], p[1], got)
		}
	}
	if got := (MaxTable[float32]{}).Combine(float32(nan), 1); !math.IsNaN(float64(got)) {
		t.Errorf("MaxTable[float32](NaN, 1) = %v, want NaN", got)
	}
}
