// Package bcjr implements soft-input soft-output BCJR decoding of recursive
// systematic convolutional codes, several frames at a time.
//
// A decoder owns metric buffers for a fixed group of F frames with the frame
// index as the innermost dimension, so every stage runs the same control flow
// across frames and the per-frame loops are contiguous and vectorizable:
//
//	gamma[((t*S + s)*2 + bit)*F + f]
//	alpha[(t*S + s)*F + f], beta[(t*S + s)*F + f]
//	sys[t*F + f], par[(t*P + j)*F + f], ext[t*F + f]
//
// Metrics are log-domain throughout. The approximate maximum used by every
// stage is a type parameter (see package maxop), so the choice between
// max-log-MAP, log-MAP and the table or linear approximations costs nothing at
// run time.
//
// LLRs follow L = log(P(bit=0)/P(bit=1)). Outputs are extrinsic: the input
// systematic LLR of each position is removed from its a-posteriori LLR.
//
// Decoders are not safe for concurrent use. Clone one per goroutine; clones
// share the immutable trellis.
package bcjr
