package registry

import (
	"fmt"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// UpdateProof identifies a registered empty-sector-update proof.
// Append-only.
type UpdateProof int

const (
	EmptySectorUpdate2KiBV1 UpdateProof = iota
	EmptySectorUpdate8MiBV1
	EmptySectorUpdate512MiBV1
	EmptySectorUpdate32GiBV1
	EmptySectorUpdate64GiBV1
)

// UpdateProofs returns every registered update proof in id order.
func UpdateProofs() []UpdateProof {
	out := make([]UpdateProof, 0, int(EmptySectorUpdate64GiBV1)+1)
	for p := EmptySectorUpdate2KiBV1; p <= EmptySectorUpdate64GiBV1; p++ {
		out = append(out, p)
	}
	return out
}

// Registered reports whether p names a published update proof.
func (p UpdateProof) Registered() bool {
	return p >= EmptySectorUpdate2KiBV1 && p <= EmptySectorUpdate64GiBV1
}

// Version returns the API version that introduced this proof.
func (p UpdateProof) Version() apiver.Version {
	return apiver.V1_2_0
}

// SectorSize returns the sector size this proof is bound to.
func (p UpdateProof) SectorSize() sector.Size {
	switch p {
	case EmptySectorUpdate2KiBV1:
		return sector.Size2KiB
	case EmptySectorUpdate8MiBV1:
		return sector.Size8MiB
	case EmptySectorUpdate512MiBV1:
		return sector.Size512MiB
	case EmptySectorUpdate32GiBV1:
		return sector.Size32GiB
	case EmptySectorUpdate64GiBV1:
		return sector.Size64GiB
	default:
		return 0
	}
}

// Features returns the feature flags intrinsic to this proof variant.
func (p UpdateProof) Features() []apiver.Feature {
	return nil
}

// Params returns the sector parameters for this proof.
func (p UpdateProof) Params() (sector.Params, error) {
	return sector.Parameters(p.SectorSize())
}

// Partitions returns the update partition count for this proof.
func (p UpdateProof) Partitions() uint8 {
	sp, err := p.Params()
	if err != nil {
		return 0
	}
	return sp.Partitions
}

// PorepID derives the proof identity mixed into update randomness.
// Update proofs intentionally reuse the identities of the V1 seal
// proofs for the same sector size: an updated sector keeps the
// randomness domain it was originally sealed under. The collision with
// seal ids 0 through 4 is therefore deliberate.
func (p UpdateProof) PorepID() ProofIdentity {
	return deriveIdentity(uint64(p), 0)
}

// CircuitIdentifier names the circuit variant this proof executes.
func (p UpdateProof) CircuitIdentifier() string {
	return "empty-sector-update-" + sizeSlug(p.SectorSize()) + "-v1"
}

func (p UpdateProof) String() string {
	if !p.Registered() {
		return fmt.Sprintf("UpdateProof(%d)", int(p))
	}
	return "EmptySectorUpdate" + p.SectorSize().String() + "V1"
}
