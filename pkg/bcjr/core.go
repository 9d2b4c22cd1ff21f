package bcjr

import (
	"fmt"

	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
	"github.com/dbehnke/rsc-bcjr/pkg/trellis"
)

const (
	// minMetric stands in for log(0). It is finite so max* never sees -Inf - -Inf.
	minMetric = -1e30
	// llrLimit bounds input LLRs, keeping every reachable metric far above minMetric
	llrLimit = 1e6
)

// core holds the configuration and the buffers shared by every variant, plus
// the entry points. Variants supply pass, which runs the stages over lanes [lo, hi).
type core[R maxop.Real, M maxop.Operator[R]] struct {
	op      M
	cfg     Config
	trellis *trellis.Trellis
	variant string

	k, n, tail int // frame length, steps, tail steps
	frames     int
	states     int
	parityBits int

	// interleaved lanes, frame index innermost
	sys   []R // n*F
	par   []R // n*P*F
	ext   []R // k*F
	gamma []R // n*S*2*F
	beta  []R // (n+1)*S*F
	acc   [2][]R

	hard []R // k, scratch for DecodeSIHO

	pass func(lo, hi int)
}

func (c *core[R, M]) init(cfg Config, variant string) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.trellis = cfg.Trellis
	c.variant = variant
	c.k = cfg.FrameLength
	if cfg.Buffered {
		c.tail = cfg.Trellis.Memory()
	}
	c.n = c.k + c.tail
	c.frames = cfg.Frames
	c.states = cfg.Trellis.States()
	c.parityBits = cfg.Trellis.ParityBits()

	f, s := c.frames, c.states
	c.sys = make([]R, c.n*f)
	c.par = make([]R, c.n*c.parityBits*f)
	c.ext = make([]R, c.k*f)
	c.gamma = make([]R, c.n*s*2*f)
	c.beta = make([]R, (c.n+1)*s*f)
	c.acc[0] = make([]R, f)
	c.acc[1] = make([]R, f)
	c.hard = make([]R, c.k)
	return nil
}

// gIdx is the offset of gamma[t][s][b][0]
func (c *core[R, M]) gIdx(t, s, b int) int {
	return ((t*c.states+s)*2 + b) * c.frames
}

// mIdx is the offset of row t of an alpha or beta buffer
func (c *core[R, M]) mIdx(t int) int {
	return t * c.states * c.frames
}

// clampLLR bounds v to llrLimit. NaN carries no information and becomes an erasure.
func clampLLR[R maxop.Real](v R) R {
	if v != v {
		return 0
	}
	if v > llrLimit {
		return llrLimit
	}
	if v < -llrLimit {
		return -llrLimit
	}
	return v
}

// load copies one frame's inputs into lane f
func (c *core[R, M]) load(f int, sys, par []R) {
	F := c.frames
	for t, v := range sys {
		c.sys[t*F+f] = clampLLR(v)
	}
	for i, v := range par {
		c.par[i*F+f] = clampLLR(v)
	}
}

// loadCodeword copies a per-step interleaved codeword into lane f
func (c *core[R, M]) loadCodeword(f int, y []R) {
	F, P := c.frames, c.parityBits
	stride := 1 + P
	for t := 0; t < c.n; t++ {
		c.sys[t*F+f] = clampLLR(y[t*stride])
		for j := 0; j < P; j++ {
			c.par[(t*P+j)*F+f] = clampLLR(y[t*stride+1+j])
		}
	}
}

// store copies lane f of the extrinsic buffer out
func (c *core[R, M]) store(f int, ext []R) {
	for t := range ext {
		ext[t] = c.ext[t*c.frames+f]
	}
}

func (c *core[R, M]) checkFrame(frameID int) error {
	if frameID < 0 || frameID >= c.frames {
		return fmt.Errorf("%w: frame %d, group holds %d", ErrFrameID, frameID, c.frames)
	}
	return nil
}

func (c *core[R, M]) checkSizes(sys, par []R, extLen int) error {
	if len(sys) != c.n {
		return fmt.Errorf("%w: sys length %d, want %d", ErrSizeMismatch, len(sys), c.n)
	}
	if len(par) != c.n*c.parityBits {
		return fmt.Errorf("%w: par length %d, want %d", ErrSizeMismatch, len(par), c.n*c.parityBits)
	}
	if extLen != c.k {
		return fmt.Errorf("%w: ext length %d, want %d", ErrSizeMismatch, extLen, c.k)
	}
	return nil
}

// DecodeSISO decodes one frame into lane frameID
func (c *core[R, M]) DecodeSISO(frameID int, sys, par, ext []R) error {
	if err := c.checkFrame(frameID); err != nil {
		return err
	}
	if err := c.checkSizes(sys, par, len(ext)); err != nil {
		return err
	}

	c.load(frameID, sys, par)
	c.pass(frameID, frameID+1)
	c.store(frameID, ext)
	return nil
}

// DecodeCodeword decodes one per-step interleaved codeword into lane frameID
func (c *core[R, M]) DecodeCodeword(frameID int, y, ext []R) error {
	if err := c.checkFrame(frameID); err != nil {
		return err
	}
	if want := c.n * (1 + c.parityBits); len(y) != want {
		return fmt.Errorf("%w: codeword length %d, want %d", ErrSizeMismatch, len(y), want)
	}
	if len(ext) != c.k {
		return fmt.Errorf("%w: ext length %d, want %d", ErrSizeMismatch, len(ext), c.k)
	}

	c.loadCodeword(frameID, y)
	c.pass(frameID, frameID+1)
	c.store(frameID, ext)
	return nil
}

// DecodeGroup decodes every frame of the group in one pass
func (c *core[R, M]) DecodeGroup(sys, par, ext [][]R) error {
	if len(sys) != c.frames || len(par) != c.frames || len(ext) != c.frames {
		return fmt.Errorf("%w: group of %d/%d/%d frames, want %d", ErrSizeMismatch, len(sys), len(par), len(ext), c.frames)
	}
	for f := 0; f < c.frames; f++ {
		if err := c.checkSizes(sys[f], par[f], len(ext[f])); err != nil {
			return fmt.Errorf("frame %d: %w", f, err)
		}
	}

	for f := 0; f < c.frames; f++ {
		c.load(f, sys[f], par[f])
	}
	c.pass(0, c.frames)
	for f := 0; f < c.frames; f++ {
		c.store(f, ext[f])
	}
	return nil
}

// DecodeSIHO decodes one frame and decides each information bit from its
// a-posteriori LLR, extrinsic plus systematic input.
func (c *core[R, M]) DecodeSIHO(frameID int, sys, par []R, bits []uint8) error {
	if len(bits) != c.k {
		return fmt.Errorf("%w: bits length %d, want %d", ErrSizeMismatch, len(bits), c.k)
	}
	if err := c.DecodeSISO(frameID, sys, par, c.hard); err != nil {
		return err
	}

	for t := range bits {
		if c.hard[t]+c.sys[t*c.frames+frameID] < 0 {
			bits[t] = 1
		} else {
			bits[t] = 0
		}
	}
	return nil
}

// Info describes the decoder
func (c *core[R, M]) Info() Info {
	return Info{
		FrameLength: c.k,
		Tail:        c.tail,
		Frames:      c.frames,
		States:      c.states,
		ParityBits:  c.parityBits,
		Buffered:    c.cfg.Buffered,
		Operator:    c.op.Name(),
		Variant:     c.variant,
	}
}

// normalize subtracts, per lane, the largest metric of the row from every state
func (c *core[R, M]) normalize(row []R, lo, hi int) {
	F := c.frames
	for f := lo; f < hi; f++ {
		m := row[f]
		for s := 1; s < c.states; s++ {
			if v := row[s*F+f]; v > m {
				m = v
			}
		}
		for s := 0; s < c.states; s++ {
			row[s*F+f] -= m
		}
	}
}
