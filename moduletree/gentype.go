package moduletree

import (
	"github.com/gleyba/uber-poet/errors"
)

// GenType selects the shape of the generated module graph
type GenType string

const (
	Flat            GenType = "flat"
	FlatBigSmall    GenType = "bs_flat"
	Layered         GenType = "layered"
	LayeredBigSmall GenType = "bs_layered"
	Dot             GenType = "dot"
)

// GenTypes lists all graph shapes in a stable order
var GenTypes = []GenType{Flat, FlatBigSmall, Layered, LayeredBigSmall, Dot}

// ParseGenType maps a gen_type string to a GenType
func ParseGenType(s string) (GenType, error) {
	for _, g := range GenTypes {
		if string(g) == s {
			return g, nil
		}
	}
	return "", errors.WithHintf(
		errors.NewConfigError("unknown graph type %q", s),
		"choose from %v", GenTypes)
}

func (g GenType) String() string {
	return string(g)
}
