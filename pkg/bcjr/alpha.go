package bcjr

// initAlpha sets the forward boundary: the encoder always starts in state 0
func (c *core[R, M]) initAlpha(row []R, lo, hi int) {
	F := c.frames
	for f := lo; f < hi; f++ {
		row[f] = 0
	}
	for s := 1; s < c.states; s++ {
		for f := lo; f < hi; f++ {
			row[s*F+f] = minMetric
		}
	}
}

// alphaStep computes the forward metrics of step t+1 into out from those of step t in in
func (c *core[R, M]) alphaStep(in, out []R, t, lo, hi int) {
	F := c.frames

	for s := 0; s < c.states; s++ {
		o := out[s*F : (s+1)*F]
		preds := c.trellis.Predecessors(s)
		if len(preds) == 0 {
			for f := lo; f < hi; f++ {
				o[f] = minMetric
			}
			continue
		}

		br := preds[0]
		a := in[br.From*F:][:F]
		g := c.gamma[c.gIdx(t, br.From, br.Bit):][:F]
		for f := lo; f < hi; f++ {
			o[f] = a[f] + g[f]
		}
		for _, br := range preds[1:] {
			a := in[br.From*F:][:F]
			g := c.gamma[c.gIdx(t, br.From, br.Bit):][:F]
			for f := lo; f < hi; f++ {
				o[f] = c.op.Combine(o[f], a[f]+g[f])
			}
		}
	}

	c.normalize(out, lo, hi)
}
