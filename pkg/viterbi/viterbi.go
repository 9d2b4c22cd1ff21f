// Package viterbi implements a soft-input Viterbi decoder over the same
// trellis description the BCJR decoder uses. It returns the maximum
// likelihood information sequence and serves as the hard-decision baseline
// for max-log decoding.
package viterbi

import (
	"errors"
	"fmt"

	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
	"github.com/dbehnke/rsc-bcjr/pkg/trellis"
)

// ErrSizeMismatch is returned when an input length disagrees with the frame
var ErrSizeMismatch = errors.New("viterbi: buffer size mismatch")

const minMetric = -1e30

// Decoder holds path metrics and survivor decisions for one frame length
type Decoder[R maxop.Real] struct {
	tr       *trellis.Trellis
	k, n     int
	buffered bool

	metrics1   []R
	metrics2   []R
	oldMetrics []R
	newMetrics []R
	decisions  [][]uint8 // [step][state] index into Predecessors(state)
	dp         int       // decision pointer
}

// New creates a decoder for k information bits. With buffered set the frame
// carries Memory() tail steps and ends in state 0.
func New[R maxop.Real](tr *trellis.Trellis, k int, buffered bool) (*Decoder[R], error) {
	if tr == nil || k <= 0 {
		return nil, fmt.Errorf("viterbi: need a trellis and a positive frame length, got k=%d", k)
	}
	n := k
	if buffered {
		n += tr.Memory()
	}
	d := &Decoder[R]{
		tr:        tr,
		k:         k,
		n:         n,
		buffered:  buffered,
		metrics1:  make([]R, tr.States()),
		metrics2:  make([]R, tr.States()),
		decisions: make([][]uint8, n),
	}
	for t := range d.decisions {
		d.decisions[t] = make([]uint8, tr.States())
	}
	return d, nil
}

// Start resets the path metrics to the all-zero starting state
func (d *Decoder[R]) Start() {
	for i := range d.metrics1 {
		d.metrics1[i] = minMetric
		d.metrics2[i] = minMetric
	}
	d.metrics1[0] = 0
	d.oldMetrics = d.metrics1
	d.newMetrics = d.metrics2
	d.dp = 0
}

// Step processes one trellis step given its systematic LLR and parity LLRs
func (d *Decoder[R]) Step(sys R, par []R) {
	if d.dp >= d.n {
		return
	}
	P := d.tr.ParityBits()
	decisions := d.decisions[d.dp]

	best := R(minMetric)
	for s := 0; s < d.tr.States(); s++ {
		m := R(minMetric)
		for i, br := range d.tr.Predecessors(s) {
			g := sys
			if br.Bit == 1 {
				g = -sys
			}
			for j := 0; j < P; j++ {
				if d.tr.ParityBit(br.From, br.Bit, j) == 0 {
					g += par[j]
				} else {
					g -= par[j]
				}
			}
			if cand := d.oldMetrics[br.From] + g/2; i == 0 || cand > m {
				m = cand
				decisions[s] = uint8(i)
			}
		}
		d.newMetrics[s] = m
		best = max(best, m)
	}
	for s := range d.newMetrics {
		d.newMetrics[s] -= best
	}

	d.dp++
	d.oldMetrics, d.newMetrics = d.newMetrics, d.oldMetrics
}

// Chainback traces the surviving path back from the end state and writes the
// first len(bits) information bits
func (d *Decoder[R]) Chainback(bits []uint8) {
	state := 0
	if !d.buffered {
		for s, m := range d.oldMetrics {
			if m > d.oldMetrics[state] {
				state = s
			}
		}
	}

	for t := d.dp - 1; t >= 0; t-- {
		br := d.tr.Predecessors(state)[d.decisions[t][state]]
		if t < len(bits) {
			bits[t] = uint8(br.Bit)
		}
		state = br.From
	}
}

// Decode runs a whole frame: len(sys) steps, len(par) steps*ParityBits, and
// len(bits) information bits
func (d *Decoder[R]) Decode(sys, par []R, bits []uint8) error {
	P := d.tr.ParityBits()
	if len(sys) != d.n || len(par) != d.n*P || len(bits) != d.k {
		return fmt.Errorf("%w: sys %d par %d bits %d, want %d/%d/%d",
			ErrSizeMismatch, len(sys), len(par), len(bits), d.n, d.n*P, d.k)
	}

	d.Start()
	for t := 0; t < d.n; t++ {
		d.Step(sys[t], par[t*P:(t+1)*P])
	}
	d.Chainback(bits)
	return nil
}
