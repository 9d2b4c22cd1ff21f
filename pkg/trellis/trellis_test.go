package trellis

import (
	"errors"
	"testing"
)

// fourState is the RSC code with feedback 1+D+D^2 and feedforward 1+D^2
func fourState() Table {
	return Table{
		{{Next: 0, Parity: 0}, {Next: 2, Parity: 1}},
		{{Next: 2, Parity: 0}, {Next: 0, Parity: 1}},
		{{Next: 3, Parity: 1}, {Next: 1, Parity: 0}},
		{{Next: 1, Parity: 1}, {Next: 3, Parity: 0}},
	}
}

func TestNew_FourState(t *testing.T) {
	tr, err := New(fourState(), 1)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if tr.States() != 4 {
		t.Errorf("States() = %d, want 4", tr.States())
	}
	if tr.Memory() != 2 {
		t.Errorf("Memory() = %d, want 2", tr.Memory())
	}
	if tr.ConstraintLength() != 3 {
		t.Errorf("ConstraintLength() = %d, want 3", tr.ConstraintLength())
	}
	if tr.Next(2, 1) != 1 {
		t.Errorf("Next(2,1) = %d, want 1", tr.Next(2, 1))
	}
	if tr.ParityBit(3, 0, 0) != 1 {
		t.Errorf("ParityBit(3,0,0) = %d, want 1", tr.ParityBit(3, 0, 0))
	}
}

func TestPredecessors_CoverEveryTransition(t *testing.T) {
	tr, err := New(fourState(), 1)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	total := 0
	for s := 0; s < tr.States(); s++ {
		for _, br := range tr.Predecessors(s) {
			if tr.Next(br.From, br.Bit) != s {
				t.Errorf("predecessor %+v of state %d leads to %d", br, s, tr.Next(br.From, br.Bit))
			}
			total++
		}
	}
	if total != 2*tr.States() {
		t.Errorf("predecessor count = %d, want %d", total, 2*tr.States())
	}
}

func TestTable_RoundTrip(t *testing.T) {
	tr, err := New(fourState(), 1)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	want := fourState()
	got := tr.Table()
	for s := range want {
		for b := range want[s] {
			if got[s][b] != want[s][b] {
				t.Errorf("Table()[%d][%d] = %+v, want %+v", s, b, got[s][b], want[s][b])
			}
		}
	}
}

func TestNew_Malformed(t *testing.T) {
	tests := []struct {
		name       string
		table      Table
		parityBits int
	}{
		{"empty", Table{}, 1},
		{"single state", Table{{{0, 0}, {0, 1}}}, 1},
		{"three states", Table{{{0, 0}, {1, 1}}, {{2, 0}, {0, 1}}, {{1, 0}, {2, 1}}}, 1},
		{"next out of range", func() Table { tb := fourState(); tb[1][0].Next = 4; return tb }(), 1},
		{"negative next", func() Table { tb := fourState(); tb[0][1].Next = -1; return tb }(), 1},
		{"missing transition", func() Table { tb := fourState(); tb[2] = tb[2][:1]; return tb }(), 1},
		{"extra transition", func() Table { tb := fourState(); tb[3] = append(tb[3], Transition{}); return tb }(), 1},
		{"parity too wide", func() Table { tb := fourState(); tb[0][1].Parity = 2; return tb }(), 1},
		{"zero parity bits", fourState(), 0},
		{"too many parity bits", fourState(), MaxParityBits + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.table, tt.parityBits)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}
