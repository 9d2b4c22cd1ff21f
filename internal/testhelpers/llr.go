package testhelpers

import (
	"math/rand/v2"

	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
)

// NewRand returns a deterministic generator for tests
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomBits returns n uniformly random bits, one per byte
func RandomBits(rng *rand.Rand, n int) []uint8 {
	bits := make([]uint8, n)
	for i := range bits {
		bits[i] = uint8(rng.IntN(2))
	}
	return bits
}

// Modulate maps bits to noiseless LLRs: +amplitude for 0, -amplitude for 1
func Modulate[R maxop.Real](bits []uint8, amplitude R) []R {
	llr := make([]R, len(bits))
	for i, b := range bits {
		if b&1 == 0 {
			llr[i] = amplitude
		} else {
			llr[i] = -amplitude
		}
	}
	return llr
}

// Perturb adds zero-mean Gaussian noise of standard deviation sigma to every LLR
func Perturb[R maxop.Real](rng *rand.Rand, llr []R, sigma float64) {
	for i := range llr {
		llr[i] += R(rng.NormFloat64() * sigma)
	}
}

// RandomLLRs returns n zero-mean Gaussian LLRs of standard deviation sigma
func RandomLLRs[R maxop.Real](rng *rand.Rand, n int, sigma float64) []R {
	llr := make([]R, n)
	Perturb(rng, llr, sigma)
	return llr
}

// Interleave builds the per-step codeword layout [sys, par_0 .. par_P-1] per step
func Interleave[R maxop.Real](sys, par []R, parityBits int) []R {
	y := make([]R, 0, len(sys)+len(par))
	for t := range sys {
		y = append(y, sys[t])
		y = append(y, par[t*parityBits:(t+1)*parityBits]...)
	}
	return y
}

// Negate returns a copy of v with every sign flipped
func Negate[R maxop.Real](v []R) []R {
	out := make([]R, len(v))
	for i := range v {
		out[i] = -v[i]
	}
	return out
}

// ToFloat64 widens a metric slice for comparisons
func ToFloat64[R maxop.Real](v []R) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = float64(v[i])
	}
	return out
}
