package trellis

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrMalformed is returned when a transition table cannot describe a binary trellis
var ErrMalformed = errors.New("malformed trellis table")

// MaxParityBits bounds the parity outputs a single transition may emit
const MaxParityBits = 8

// Transition describes the effect of one input bit on one state
type Transition struct {
	Next   int   // state reached after the input bit
	Parity uint8 // parity output bits, bit j is parity stream j
}

// Table holds, for every state, the transitions for input bit 0 and 1 (in that order)
type Table [][]Transition

// Branch is one incoming edge of a state
type Branch struct {
	From int
	Bit  int
}

// Trellis is the immutable finite-state machine of a binary convolutional encoder.
// It is safe for concurrent use by any number of decoders.
type Trellis struct {
	states     int
	memory     int
	parityBits int
	next       []int   // next[s*2+b]
	parity     []uint8 // parity[s*2+b]
	preds      [][]Branch
}

// New validates a transition table and builds the trellis.
// The state count must be a power of two no smaller than 2, every state must carry
// exactly two transitions, and every next state and parity word must be in range.
func New(table Table, parityBits int) (*Trellis, error) {
	n := len(table)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: state count %d is not a power of two >= 2", ErrMalformed, n)
	}
	if parityBits < 1 || parityBits > MaxParityBits {
		return nil, fmt.Errorf("%w: parity bits %d out of range [1, %d]", ErrMalformed, parityBits, MaxParityBits)
	}

	t := &Trellis{
		states:     n,
		memory:     bits.TrailingZeros(uint(n)),
		parityBits: parityBits,
		next:       make([]int, 2*n),
		parity:     make([]uint8, 2*n),
		preds:      make([][]Branch, n),
	}

	limit := uint(1) << parityBits
	for s, row := range table {
		if len(row) != 2 {
			return nil, fmt.Errorf("%w: state %d has %d transitions, want 2", ErrMalformed, s, len(row))
		}
		for b, tr := range row {
			if tr.Next < 0 || tr.Next >= n {
				return nil, fmt.Errorf("%w: state %d bit %d leads to state %d", ErrMalformed, s, b, tr.Next)
			}
			if uint(tr.Parity) >= limit {
				return nil, fmt.Errorf("%w: state %d bit %d emits parity %#x wider than %d bits", ErrMalformed, s, b, tr.Parity, parityBits)
			}
			t.next[s*2+b] = tr.Next
			t.parity[s*2+b] = tr.Parity
			t.preds[tr.Next] = append(t.preds[tr.Next], Branch{From: s, Bit: b})
		}
	}

	return t, nil
}

// States returns the number of trellis states
func (t *Trellis) States() int { return t.states }

// Memory returns the number of encoder memory cells, log2(States)
func (t *Trellis) Memory() int { return t.memory }

// ConstraintLength returns Memory()+1
func (t *Trellis) ConstraintLength() int { return t.memory + 1 }

// ParityBits returns the number of parity outputs per transition
func (t *Trellis) ParityBits() int { return t.parityBits }

// Next returns the state reached from state s on input bit b
func (t *Trellis) Next(s, b int) int { return t.next[s*2+b] }

// Parity returns the parity word emitted from state s on input bit b
func (t *Trellis) Parity(s, b int) uint8 { return t.parity[s*2+b] }

// ParityBit returns parity output j emitted from state s on input bit b
func (t *Trellis) ParityBit(s, b, j int) int { return int(t.parity[s*2+b]>>j) & 1 }

// Predecessors returns every (state, bit) pair leading into state s.
// The returned slice must not be modified.
func (t *Trellis) Predecessors(s int) []Branch { return t.preds[s] }

// Table returns a copy of the transition table the trellis was built from
func (t *Trellis) Table() Table {
	table := make(Table, t.states)
	for s := range table {
		table[s] = []Transition{
			{Next: t.next[s*2], Parity: t.parity[s*2]},
			{Next: t.next[s*2+1], Parity: t.parity[s*2+1]},
		}
	}
	return table
}
