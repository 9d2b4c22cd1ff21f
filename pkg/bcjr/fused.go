package bcjr

import "github.com/dbehnke/rsc-bcjr/pkg/maxop"

// Fused runs the backward recursion first, then a single forward sweep that
// computes the extrinsic output of each step as soon as its forward metrics
// exist. Only two alpha rows are kept.
type Fused[R maxop.Real, M maxop.Operator[R]] struct {
	core[R, M]
	rows [2][]R // S*F each
}

// NewFused allocates a fused decoder for cfg
func NewFused[R maxop.Real, M maxop.Operator[R]](cfg Config) (*Fused[R, M], error) {
	d := &Fused[R, M]{}
	if err := d.init(cfg, VariantFused); err != nil {
		return nil, err
	}
	d.rows[0] = make([]R, d.states*d.frames)
	d.rows[1] = make([]R, d.states*d.frames)
	d.pass = d.decodeLanes
	return d, nil
}

func (d *Fused[R, M]) decodeLanes(lo, hi int) {
	d.computeGamma(lo, hi)
	d.computeBeta(lo, hi)

	cur, nxt := d.rows[0], d.rows[1]
	d.initAlpha(cur, lo, hi)
	for t := 0; t < d.k; t++ {
		d.extStep(cur, t, lo, hi)
		if t+1 < d.k {
			d.alphaStep(cur, nxt, t, lo, hi)
			cur, nxt = nxt, cur
		}
	}
}

// Clone returns a decoder with its own buffers and the same trellis
func (d *Fused[R, M]) Clone() Decoder[R] {
	c, err := NewFused[R, M](d.cfg)
	if err != nil {
		panic(err)
	}
	return c
}
