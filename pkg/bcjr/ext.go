package bcjr

// extStep writes the extrinsic LLRs of step t from the forward metrics of step
// t (alpha), the branch metrics of step t and the backward metrics of step t+1.
func (c *core[R, M]) extStep(alpha []R, t, lo, hi int) {
	F := c.frames
	next := c.beta[c.mIdx(t+1):]

	for b := 0; b < 2; b++ {
		acc := c.acc[b]
		for s := 0; s < c.states; s++ {
			a := alpha[s*F:][:F]
			g := c.gamma[c.gIdx(t, s, b):][:F]
			bt := next[c.trellis.Next(s, b)*F:][:F]
			if s == 0 {
				for f := lo; f < hi; f++ {
					acc[f] = a[f] + g[f] + bt[f]
				}
				continue
			}
			for f := lo; f < hi; f++ {
				acc[f] = c.op.Combine(acc[f], a[f]+g[f]+bt[f])
			}
		}
	}

	ext := c.ext[t*F:][:F]
	sys := c.sys[t*F:][:F]
	m0, m1 := c.acc[0], c.acc[1]
	for f := lo; f < hi; f++ {
		ext[f] = (m0[f] - m1[f]) - sys[f]
	}
}
