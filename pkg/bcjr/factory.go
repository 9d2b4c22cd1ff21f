package bcjr

import (
	"fmt"

	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
)

// Build instantiates the decoder variant with the max operator named in
// configuration. The operator becomes a type argument, so the returned
// decoder's inner loops are specialized for it.
func Build[R maxop.Real](cfg Config, operator, variant string) (Decoder[R], error) {
	switch operator {
	case maxop.NameMax:
		return build[R, maxop.Max[R]](cfg, variant)
	case maxop.NameMaxStar:
		return build[R, maxop.MaxStar[R]](cfg, variant)
	case maxop.NameMaxLinear:
		return build[R, maxop.MaxLinear[R]](cfg, variant)
	case maxop.NameMaxTable:
		return build[R, maxop.MaxTable[R]](cfg, variant)
	default:
		return nil, fmt.Errorf("%w: unknown max operator %q", ErrInvalidConfig, operator)
	}
}

func build[R maxop.Real, M maxop.Operator[R]](cfg Config, variant string) (Decoder[R], error) {
	switch variant {
	case VariantStandard, "":
		d, err := NewInter[R, M](cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case VariantFused:
		d, err := NewFused[R, M](cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, variant)
	}
}
