// Package vectors produces and checks reference decodes: random information
// bits are encoded, passed through a Gaussian LLR channel and decoded, and the
// channel LLRs together with the extrinsic output are kept so that a decoder
// built later can be compared against them.
package vectors

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/dbehnke/rsc-bcjr/pkg/bcjr"
	"github.com/dbehnke/rsc-bcjr/pkg/database"
	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
	"github.com/dbehnke/rsc-bcjr/pkg/rsc"
)

// ErrMismatch is returned when a decoder disagrees with stored vectors
var ErrMismatch = errors.New("extrinsic output differs from reference")

// Channel describes the LLR channel: amplitude*(1-2c) plus Gaussian noise
type Channel struct {
	Seed      uint64
	Amplitude float64
	Sigma     float64
}

func (c Channel) source() *rand.Rand {
	return rand.New(rand.NewPCG(c.Seed, c.Seed^0x5851f42d4c957f2d))
}

// llrs maps code bits through the channel
func (c Channel) llrs(rng *rand.Rand, bits []uint8) []float64 {
	out := make([]float64, len(bits))
	noise := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = c.Amplitude * float64(1-2*int(b&1))
		noise[i] = rng.NormFloat64()
	}
	floats.AddScaled(out, c.Sigma, noise)
	return out
}

// Observer is notified of every vector comparison
type Observer interface {
	VectorVerified(ok bool)
}

// Report summarizes a verification run
type Report struct {
	Checked int
	Failed  int
	MaxDiff float64   // largest absolute extrinsic difference seen
	Worst   int       // index of the vector with MaxDiff
	Diffs   []float64 // per vector, in input order
}

// Generate draws count random frames, encodes them with enc and decodes them
// with dec. Full frame groups go through DecodeGroup, the remainder through
// DecodeSISO. Channel LLRs are rounded to R before decoding and stored as
// such, so a later decode at the same precision sees identical inputs.
func Generate[R maxop.Real](ctx context.Context, enc *rsc.Encoder, dec bcjr.Decoder[R], ch Channel, count int) ([]database.ReferenceVector, error) {
	info := dec.Info()
	if enc.ParityBits() != info.ParityBits || enc.States() != info.States {
		return nil, fmt.Errorf("%w: encoder %s does not match decoder geometry", bcjr.ErrInvalidConfig, enc)
	}
	rng := ch.source()

	vectors := make([]database.ReferenceVector, 0, count)
	sys := make([][]R, info.Frames)
	par := make([][]R, info.Frames)
	ext := make([][]R, info.Frames)
	for f := range ext {
		ext[f] = make([]R, info.FrameLength)
	}

	for start := 0; start < count; start += info.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := min(info.Frames, count-start)

		batch := make([]database.ReferenceVector, n)
		for f := 0; f < n; f++ {
			bits := make([]uint8, info.FrameLength)
			for i := range bits {
				bits[i] = uint8(rng.IntN(2))
			}
			sysBits, parBits := enc.Encode(bits, info.Buffered)
			sys[f] = narrow[R](ch.llrs(rng, sysBits))
			par[f] = narrow[R](ch.llrs(rng, parBits))
			batch[f] = database.ReferenceVector{
				Index: start + f,
				Info:  bits,
				Sys:   widen(sys[f]),
				Par:   widen(par[f]),
			}
		}

		if n == info.Frames {
			if err := dec.DecodeGroup(sys, par, ext); err != nil {
				return nil, err
			}
		} else {
			for f := 0; f < n; f++ {
				if err := dec.DecodeSISO(f, sys[f], par[f], ext[f]); err != nil {
					return nil, err
				}
			}
		}
		for f := range batch {
			batch[f].Ext = widen(ext[f])
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// Verify re-decodes every stored vector with dec and compares the extrinsic
// output within tol. Vectors are spread across the decoder's frame lanes. A
// non-nil error wraps ErrMismatch when any vector differs.
func Verify[R maxop.Real](ctx context.Context, dec bcjr.Decoder[R], vectors []database.ReferenceVector, tol float64, obs Observer) (Report, error) {
	info := dec.Info()
	var rep Report
	ext := make([]R, info.FrameLength)

	for i, v := range vectors {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if len(v.Ext) != info.FrameLength {
			return rep, fmt.Errorf("vector %d: %w: %d extrinsic values, decoder frame is %d", v.Index, bcjr.ErrSizeMismatch, len(v.Ext), info.FrameLength)
		}
		if err := dec.DecodeSISO(i%info.Frames, narrow[R](v.Sys), narrow[R](v.Par), ext); err != nil {
			return rep, fmt.Errorf("vector %d: %w", v.Index, err)
		}

		diff := floats.Distance(widen(ext), v.Ext, math.Inf(1))
		ok := diff <= tol
		rep.Diffs = append(rep.Diffs, diff)
		rep.Checked++
		if !ok {
			rep.Failed++
		}
		if diff > rep.MaxDiff || rep.Checked == 1 {
			rep.MaxDiff, rep.Worst = diff, v.Index
		}
		if obs != nil {
			obs.VectorVerified(ok)
		}
	}

	if rep.Failed > 0 {
		return rep, fmt.Errorf("%w: %d of %d vectors, max difference %g at vector %d",
			ErrMismatch, rep.Failed, rep.Checked, rep.MaxDiff, rep.Worst)
	}
	return rep, nil
}

func narrow[R maxop.Real](v []float64) []R {
	out := make([]R, len(v))
	for i, x := range v {
		out[i] = R(x)
	}
	return out
}

func widen[R maxop.Real](v []R) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
