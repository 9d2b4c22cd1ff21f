package bcjr

import (
	"fmt"

	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
	"github.com/dbehnke/rsc-bcjr/pkg/trellis"
)

// Decoder variants
const (
	VariantStandard = "std"   // gamma, alpha, beta, then ext over a full alpha buffer
	VariantFused    = "fused" // gamma, beta, then alpha fused with ext over two rolling rows
)

// Variants lists every variant accepted by Build
var Variants = []string{VariantStandard, VariantFused}

// Decoder is the capability shared by every decoder variant
type Decoder[R maxop.Real] interface {
	// DecodeSISO decodes one frame into lane frameID.
	// len(sys) must be Steps(), len(par) ParLength() and len(ext) FrameLength.
	DecodeSISO(frameID int, sys, par, ext []R) error
	// DecodeCodeword is DecodeSISO with systematic and parity LLRs interleaved
	// per step: y[t*(1+P)] is systematic, y[t*(1+P)+1+j] is parity j.
	DecodeCodeword(frameID int, y, ext []R) error
	// DecodeGroup decodes all frames of the group in lock-step
	DecodeGroup(sys, par, ext [][]R) error
	// DecodeSIHO decodes one frame and returns hard decisions on the information bits
	DecodeSIHO(frameID int, sys, par []R, bits []uint8) error
	// Clone returns an independent decoder sharing the trellis
	Clone() Decoder[R]
	// Info describes the decoder geometry
	Info() Info
}

// Config holds construction parameters
type Config struct {
	FrameLength int              // K, information bits per frame
	Frames      int              // F, frames per group
	States      int              // optional expected trellis size, 0 to accept the trellis as is
	Buffered    bool             // encoder terminated in state 0 with Memory() tail steps
	Trellis     *trellis.Trellis // shared, never modified
}

func (c Config) validate() error {
	if c.Trellis == nil {
		return fmt.Errorf("%w: trellis is required", ErrInvalidConfig)
	}
	if c.FrameLength <= 0 {
		return fmt.Errorf("%w: frame length must be positive, got %d", ErrInvalidConfig, c.FrameLength)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames per group must be positive, got %d", ErrInvalidConfig, c.Frames)
	}
	if c.States != 0 && c.States != c.Trellis.States() {
		return fmt.Errorf("%w: expected %d states, trellis has %d", ErrInvalidConfig, c.States, c.Trellis.States())
	}
	return nil
}

// Info describes a decoder instance
type Info struct {
	FrameLength int
	Tail        int
	Frames      int
	States      int
	ParityBits  int
	Buffered    bool
	Operator    string
	Variant     string
}

// Steps returns the trellis length K+tail, also the systematic input length
func (i Info) Steps() int { return i.FrameLength + i.Tail }

// ParLength returns the parity input length
func (i Info) ParLength() int { return i.Steps() * i.ParityBits }

// CodewordLength returns the length of an interleaved codeword for DecodeCodeword
func (i Info) CodewordLength() int { return i.Steps() * (1 + i.ParityBits) }
