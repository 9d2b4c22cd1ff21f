package bcjr

// initBeta sets the backward boundary at step n. A terminated encoder ends in
// state 0; otherwise no end state is preferred.
func (c *core[R, M]) initBeta(lo, hi int) {
	F := c.frames
	row := c.beta[c.mIdx(c.n):]
	for s := 0; s < c.states; s++ {
		v := R(0)
		if c.cfg.Buffered && s != 0 {
			v = minMetric
		}
		for f := lo; f < hi; f++ {
			row[s*F+f] = v
		}
	}
}

// computeBeta runs the backward recursion from step n down to 0
func (c *core[R, M]) computeBeta(lo, hi int) {
	F, S := c.frames, c.states
	c.initBeta(lo, hi)

	for t := c.n - 1; t >= 0; t-- {
		next := c.beta[c.mIdx(t+1):][:S*F]
		out := c.beta[c.mIdx(t):][:S*F]

		for s := 0; s < S; s++ {
			b0 := next[c.trellis.Next(s, 0)*F:][:F]
			b1 := next[c.trellis.Next(s, 1)*F:][:F]
			g0 := c.gamma[c.gIdx(t, s, 0):][:F]
			g1 := c.gamma[c.gIdx(t, s, 1):][:F]
			o := out[s*F : (s+1)*F]
			for f := lo; f < hi; f++ {
				o[f] = c.op.Combine(b0[f]+g0[f], b1[f]+g1[f])
			}
		}

		c.normalize(out, lo, hi)
	}
}
