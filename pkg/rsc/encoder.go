package rsc

// Recursive systematic convolutional encoder.
// Polynomials are written in octal with the most significant bit as the D^0
// tap, so 013 is 1+D^2+D^3 and 015 is 1+D+D^3 (the LTE turbo constituent code).

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/dbehnke/rsc-bcjr/pkg/trellis"
)

// ErrPolynomial is returned for unusable generator polynomials
var ErrPolynomial = errors.New("invalid generator polynomial")

const maxMemory = 16

// Encoder is an RSC encoder with one feedback and one or more feedforward polynomials.
// The register is held as an int state where bit (m-i) stores the i-th delay cell,
// which is also the state numbering of the trellis it produces.
type Encoder struct {
	memory   int
	feedback uint
	forward  []uint
	state    int
}

// New creates an encoder from a feedback polynomial and the feedforward polynomial(s)
func New(feedback uint, forward ...uint) (*Encoder, error) {
	if len(forward) == 0 {
		return nil, fmt.Errorf("%w: at least one feedforward polynomial is required", ErrPolynomial)
	}
	if len(forward) > trellis.MaxParityBits {
		return nil, fmt.Errorf("%w: %d feedforward polynomials, at most %d supported", ErrPolynomial, len(forward), trellis.MaxParityBits)
	}

	memory := bits.Len(feedback) - 1
	for _, g := range forward {
		if l := bits.Len(g) - 1; l > memory {
			memory = l
		}
	}
	if memory < 1 || memory > maxMemory {
		return nil, fmt.Errorf("%w: memory %d out of range [1, %d]", ErrPolynomial, memory, maxMemory)
	}
	// the D^0 tap of the feedback must be present or the encoder is not recursive
	if bits.Len(feedback)-1 != memory {
		return nil, fmt.Errorf("%w: feedback %#o has no D^0 tap at memory %d", ErrPolynomial, feedback, memory)
	}
	for _, g := range forward {
		if g == 0 {
			return nil, fmt.Errorf("%w: zero feedforward polynomial", ErrPolynomial)
		}
	}

	return &Encoder{
		memory:   memory,
		feedback: feedback,
		forward:  append([]uint(nil), forward...),
	}, nil
}

// Parse creates an encoder from octal polynomial strings such as "013" and "015"
func Parse(feedback string, forward ...string) (*Encoder, error) {
	fb, err := ParsePolynomial(feedback)
	if err != nil {
		return nil, err
	}
	ff := make([]uint, 0, len(forward))
	for _, s := range forward {
		g, err := ParsePolynomial(s)
		if err != nil {
			return nil, err
		}
		ff = append(ff, g)
	}
	return New(fb, ff...)
}

// ParsePolynomial parses an octal polynomial, with or without a leading 0 or 0o
func ParsePolynomial(s string) (uint, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0o"), "0O")
	if s == "" {
		return 0, fmt.Errorf("%w: empty polynomial", ErrPolynomial)
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrPolynomial, s, err)
	}
	return uint(v), nil
}

// Memory returns the number of delay cells
func (e *Encoder) Memory() int { return e.memory }

// States returns 2^Memory
func (e *Encoder) States() int { return 1 << e.memory }

// ParityBits returns the number of parity outputs per input bit
func (e *Encoder) ParityBits() int { return len(e.forward) }

// String describes the code as feedback/forward octal polynomials
func (e *Encoder) String() string {
	parts := make([]string, len(e.forward))
	for i, g := range e.forward {
		parts[i] = fmt.Sprintf("%#o", g)
	}
	return fmt.Sprintf("rsc(%#o/%s)", e.feedback, strings.Join(parts, ","))
}

// tap returns coefficient i (the D^i term) of polynomial g
func (e *Encoder) tap(g uint, i int) int {
	return int(g>>(e.memory-i)) & 1
}

// cell returns delay cell i (1-based) of state s
func (e *Encoder) cell(s, i int) int {
	return (s >> (e.memory - i)) & 1
}

// feedbackBit returns the XOR of the register taps selected by the feedback polynomial
func (e *Encoder) feedbackBit(s int) int {
	f := 0
	for i := 1; i <= e.memory; i++ {
		f ^= e.tap(e.feedback, i) & e.cell(s, i)
	}
	return f
}

// step advances state s by input bit u and returns the next state and parity word
func (e *Encoder) step(s, u int) (int, uint8) {
	a := u ^ e.feedbackBit(s)

	var parity uint8
	for j, g := range e.forward {
		p := e.tap(g, 0) & a
		for i := 1; i <= e.memory; i++ {
			p ^= e.tap(g, i) & e.cell(s, i)
		}
		parity |= uint8(p) << j
	}

	next := (a << (e.memory - 1)) | (s >> 1)
	return next, parity
}

// Table returns the encoder's transition table
func (e *Encoder) Table() trellis.Table {
	table := make(trellis.Table, e.States())
	for s := range table {
		n0, p0 := e.step(s, 0)
		n1, p1 := e.step(s, 1)
		table[s] = []trellis.Transition{{Next: n0, Parity: p0}, {Next: n1, Parity: p1}}
	}
	return table
}

// Trellis builds the immutable trellis of this code
func (e *Encoder) Trellis() (*trellis.Trellis, error) {
	return trellis.New(e.Table(), e.ParityBits())
}

// Reset returns the encoder to the all-zero state
func (e *Encoder) Reset() { e.state = 0 }

// State returns the current register state
func (e *Encoder) State() int { return e.state }

// Encode encodes info bits (one bit per byte, 0 or 1) from the all-zero state.
// With terminate set, Memory() tail steps drive the register back to zero; the
// tail's systematic bits are appended to sys and its parity to par.
// Returns sys of length K(+m) and par of length (K(+m))*ParityBits, parity of step
// t at par[t*P : t*P+P].
func (e *Encoder) Encode(info []uint8, terminate bool) (sys, par []uint8) {
	n := len(info)
	if terminate {
		n += e.memory
	}
	p := e.ParityBits()
	sys = make([]uint8, n)
	par = make([]uint8, n*p)

	e.Reset()
	for t := 0; t < n; t++ {
		var u int
		if t < len(info) {
			u = int(info[t] & 1)
		} else {
			// tail input cancels the feedback so a zero is shifted in
			u = e.feedbackBit(e.state)
		}
		next, parity := e.step(e.state, u)
		sys[t] = uint8(u)
		for j := 0; j < p; j++ {
			par[t*p+j] = (parity >> j) & 1
		}
		e.state = next
	}
	return sys, par
}
