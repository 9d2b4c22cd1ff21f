package bcjr

// computeGamma fills the branch metrics of every step, state and input bit for
// lanes [lo, hi). A transition emitting systematic bit u and parity bits p_j
// scores ((1-2u)*Ls + sum_j (1-2p_j)*Lp_j) / 2.
func (c *core[R, M]) computeGamma(lo, hi int) {
	F, P := c.frames, c.parityBits

	for t := 0; t < c.n; t++ {
		sys := c.sys[t*F : (t+1)*F]
		for s := 0; s < c.states; s++ {
			for b := 0; b < 2; b++ {
				g := c.gamma[c.gIdx(t, s, b):][:F]
				if b == 0 {
					for f := lo; f < hi; f++ {
						g[f] = sys[f]
					}
				} else {
					for f := lo; f < hi; f++ {
						g[f] = -sys[f]
					}
				}

				parity := c.trellis.Parity(s, b)
				for j := 0; j < P; j++ {
					par := c.par[(t*P+j)*F:][:F]
					if parity>>j&1 == 0 {
						for f := lo; f < hi; f++ {
							g[f] += par[f]
						}
					} else {
						for f := lo; f < hi; f++ {
							g[f] -= par[f]
						}
					}
				}

				for f := lo; f < hi; f++ {
					g[f] *= 0.5
				}
			}
		}
	}
}
