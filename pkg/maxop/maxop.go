// Package maxop provides the log-domain "approximate maximum" operators used by
// trellis decoders.
//
// Every operator combines two log-probabilities a and b into an estimate of
// log(exp(a) + exp(b)). The strategies trade accuracy for speed and satisfy
//
//	Max(a,b) <= MaxLinear(a,b), MaxTable(a,b) <= MaxStar(a,b)
//
// with all of them converging to max(a,b) as |a-b| grows.
//
// Operators are zero-size types meant to be passed as type parameters, so a
// decoder instantiated with one pays no dynamic dispatch in its inner loops.
package maxop

import "math"

// Real is the set of floating point types metrics are carried in
type Real interface {
	~float32 | ~float64
}

// Operator is a stateless binary log-domain maximum
type Operator[R Real] interface {
	Combine(a, b R) R
	Name() string
}

// Operator names, as used in configuration
const (
	NameMax       = "max"
	NameMaxStar   = "max-star"
	NameMaxLinear = "max-linear"
	NameMaxTable  = "max-table"
)

// Names lists every operator name accepted by the factories
var Names = []string{NameMax, NameMaxStar, NameMaxLinear, NameMaxTable}

// Max is the plain maximum (max-log-MAP)
type Max[R Real] struct{}

func (Max[R]) Combine(a, b R) R {
	if a > b {
		return a
	}
	return b
}

func (Max[R]) Name() string { return NameMax }

// MaxStar is the Jacobian logarithm max(a,b) + log(1 + exp(-|a-b|)) (log-MAP)
type MaxStar[R Real] struct{}

func (MaxStar[R]) Combine(a, b R) R {
	if a < b {
		a, b = b, a
	}
	return a + R(math.Log1p(math.Exp(float64(b-a))))
}

func (MaxStar[R]) Name() string { return NameMaxStar }

// MaxLinear corrects the plain maximum with max(0, 0.301 - |a-b|/2), a line
// lying under the Jacobian correction everywhere.
type MaxLinear[R Real] struct{}

func (MaxLinear[R]) Combine(a, b R) R {
	d := a - b
	m := a
	if d < 0 {
		d = -d
		m = b
	}
	c := R(0.301) - d/2
	if c > 0 {
		return m + c
	}
	return m
}

func (MaxLinear[R]) Name() string { return NameMaxLinear }

// Correction table for MaxTable. Entry i holds log(1+exp(-(i+1)*tableStep)),
// the value at the right edge of bucket i, so a lookup never exceeds the exact
// correction.
const (
	tableStep = 0.125
	tableSize = 64
)

var correction = func() (tab [tableSize]float64) {
	for i := range tab {
		tab[i] = math.Log1p(math.Exp(-float64(i+1) * tableStep))
	}
	return tab
}()

// MaxTable corrects the plain maximum with a table-driven step approximation of
// the Jacobian correction. Differences beyond the table span get no correction.
type MaxTable[R Real] struct{}

func (MaxTable[R]) Combine(a, b R) R {
	d := a - b
	m := a
	if d < 0 {
		d = -d
		m = b
	}
	x := float64(d) / tableStep
	// also catches NaN, which would otherwise index out of range
	if !(x < tableSize) {
		return m
	}
	return m + R(correction[int(x)])
}

func (MaxTable[R]) Name() string { return NameMaxTable }

// Fold reduces values with op. It returns floor when values is empty.
func Fold[R Real, M Operator[R]](op M, floor R, values ...R) R {
	if len(values) == 0 {
		return floor
	}
	acc := values[0]
	for _, v := range values[1:] {
		acc = op.Combine(acc, v)
	}
	return acc
}

// Valid reports whether name is a known operator
func Valid(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
