package bcjr

import "github.com/dbehnke/rsc-bcjr/pkg/maxop"

// Inter is the standard inter-frame decoder: gamma, then the full forward
// recursion into an (n+1)-row alpha buffer, then the backward recursion, then
// the extrinsic combination.
type Inter[R maxop.Real, M maxop.Operator[R]] struct {
	core[R, M]
	alpha []R // (n+1)*S*F
}

// NewInter allocates a standard decoder for cfg
func NewInter[R maxop.Real, M maxop.Operator[R]](cfg Config) (*Inter[R, M], error) {
	d := &Inter[R, M]{}
	if err := d.init(cfg, VariantStandard); err != nil {
		return nil, err
	}
	d.alpha = make([]R, (d.n+1)*d.states*d.frames)
	d.pass = d.decodeLanes
	return d, nil
}

func (d *Inter[R, M]) decodeLanes(lo, hi int) {
	rowLen := d.states * d.frames

	d.computeGamma(lo, hi)

	d.initAlpha(d.alpha[:rowLen], lo, hi)
	for t := 0; t < d.n; t++ {
		d.alphaStep(d.alpha[d.mIdx(t):][:rowLen], d.alpha[d.mIdx(t+1):][:rowLen], t, lo, hi)
	}

	d.computeBeta(lo, hi)

	for t := 0; t < d.k; t++ {
		d.extStep(d.alpha[d.mIdx(t):][:rowLen], t, lo, hi)
	}
}

// Clone returns a decoder with its own buffers and the same trellis
func (d *Inter[R, M]) Clone() Decoder[R] {
	c, err := NewInter[R, M](d.cfg)
	if err != nil {
		// d was built from the same configuration
		panic(err)
	}
	return c
}
