package registry

import (
	"fmt"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
)

// AggregationProof identifies a registered proof-aggregation scheme.
// Append-only.
type AggregationProof int

const (
	SnarkPackV1 AggregationProof = iota
	SnarkPackV2
)

// AggregationProofs returns every registered aggregation scheme.
func AggregationProofs() []AggregationProof {
	return []AggregationProof{SnarkPackV1, SnarkPackV2}
}

// Registered reports whether p names a published aggregation scheme.
func (p AggregationProof) Registered() bool {
	return p == SnarkPackV1 || p == SnarkPackV2
}

// Version returns the API version that introduced this scheme.
func (p AggregationProof) Version() apiver.Version {
	if p == SnarkPackV2 {
		return apiver.V1_2_0
	}
	return apiver.V1_1_0
}

// MaxProofCount returns the largest aggregate each scheme accepts.
// Counts are restricted to powers of two between two and this bound.
func (p AggregationProof) MaxProofCount() int {
	if p == SnarkPackV2 {
		return 8192
	}
	return 1024
}

func (p AggregationProof) String() string {
	switch p {
	case SnarkPackV1:
		return "SnarkPackV1"
	case SnarkPackV2:
		return "SnarkPackV2"
	default:
		return fmt.Sprintf("AggregationProof(%d)", int(p))
	}
}
