// Package registry defines the closed set of registered proofs: one
// variant per (proof family, version tag, sector size) triple, plus the
// protocol-frozen proof identity each variant derives. Enums are
// append-only: once a variant is published its value, identity and
// derived parameters must never change, because already-sealed sectors
// reference them forever.
package registry

import (
	"errors"
	"fmt"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// ErrInvalidRegisteredProof is returned when a (family, version, sector
// size) triple does not name a registered proof.
var ErrInvalidRegisteredProof = errors.New("invalid registered proof")

// SinglePartitionProofLen is the byte length of one zk-SNARK partition
// proof, shared by every registered proof family.
const SinglePartitionProofLen = 192

// MinFeatureSectorSize is the smallest sector size on which the
// synthetic and non-interactive PoRep modes are registered. Smaller
// sectors reject these modes outright rather than silently degrading.
const MinFeatureSectorSize = sector.Size8MiB

// SealProof identifies a registered seal (PoRep) proof.
// Append-only: the integer value of each variant is its frozen
// registered proof id (the first eight porep_id bytes).
type SealProof int

const (
	StackedDrg2KiBV1 SealProof = iota
	StackedDrg8MiBV1
	StackedDrg512MiBV1
	StackedDrg32GiBV1
	StackedDrg64GiBV1

	StackedDrg2KiBV1_1
	StackedDrg8MiBV1_1
	StackedDrg512MiBV1_1
	StackedDrg32GiBV1_1
	StackedDrg64GiBV1_1

	StackedDrg2KiBV1_1_Feat_SyntheticPoRep
	StackedDrg8MiBV1_1_Feat_SyntheticPoRep
	StackedDrg512MiBV1_1_Feat_SyntheticPoRep
	StackedDrg32GiBV1_1_Feat_SyntheticPoRep
	StackedDrg64GiBV1_1_Feat_SyntheticPoRep

	// The synthetic PoRep feature landed in proofs API version 1.2 even
	// though the published proof names above carry v1_1. Non-interactive
	// PoRep is also a 1.2 feature; its names were corrected before
	// publication.
	StackedDrg2KiBV1_2_Feat_NonInteractivePoRep
	StackedDrg8MiBV1_2_Feat_NonInteractivePoRep
	StackedDrg512MiBV1_2_Feat_NonInteractivePoRep
	StackedDrg32GiBV1_2_Feat_NonInteractivePoRep
	StackedDrg64GiBV1_2_Feat_NonInteractivePoRep
)

// SealProofs returns every registered seal proof in id order.
func SealProofs() []SealProof {
	out := make([]SealProof, 0, int(StackedDrg64GiBV1_2_Feat_NonInteractivePoRep)+1)
	for p := StackedDrg2KiBV1; p <= StackedDrg64GiBV1_2_Feat_NonInteractivePoRep; p++ {
		out = append(out, p)
	}
	return out
}

// Registered reports whether p names a published seal proof.
func (p SealProof) Registered() bool {
	return p >= StackedDrg2KiBV1 && p <= StackedDrg64GiBV1_2_Feat_NonInteractivePoRep
}

// Version returns the API version that introduced this proof.
func (p SealProof) Version() apiver.Version {
	switch p {
	case StackedDrg2KiBV1, StackedDrg8MiBV1, StackedDrg512MiBV1,
		StackedDrg32GiBV1, StackedDrg64GiBV1:
		return apiver.V1_0_0
	case StackedDrg2KiBV1_1, StackedDrg8MiBV1_1, StackedDrg512MiBV1_1,
		StackedDrg32GiBV1_1, StackedDrg64GiBV1_1:
		return apiver.V1_1_0
	default:
		return apiver.V1_2_0
	}
}

// SectorSize returns the sector size this proof is bound to.
func (p SealProof) SectorSize() sector.Size {
	switch p {
	case StackedDrg2KiBV1, StackedDrg2KiBV1_1,
		StackedDrg2KiBV1_1_Feat_SyntheticPoRep,
		StackedDrg2KiBV1_2_Feat_NonInteractivePoRep:
		return sector.Size2KiB
	case StackedDrg8MiBV1, StackedDrg8MiBV1_1,
		StackedDrg8MiBV1_1_Feat_SyntheticPoRep,
		StackedDrg8MiBV1_2_Feat_NonInteractivePoRep:
		return sector.Size8MiB
	case StackedDrg512MiBV1, StackedDrg512MiBV1_1,
		StackedDrg512MiBV1_1_Feat_SyntheticPoRep,
		StackedDrg512MiBV1_2_Feat_NonInteractivePoRep:
		return sector.Size512MiB
	case StackedDrg32GiBV1, StackedDrg32GiBV1_1,
		StackedDrg32GiBV1_1_Feat_SyntheticPoRep,
		StackedDrg32GiBV1_2_Feat_NonInteractivePoRep:
		return sector.Size32GiB
	case StackedDrg64GiBV1, StackedDrg64GiBV1_1,
		StackedDrg64GiBV1_1_Feat_SyntheticPoRep,
		StackedDrg64GiBV1_2_Feat_NonInteractivePoRep:
		return sector.Size64GiB
	default:
		return 0
	}
}

// Features returns the feature flags intrinsic to this proof variant.
// Pure function of the descriptor, no external state.
func (p SealProof) Features() []apiver.Feature {
	switch p {
	case StackedDrg2KiBV1_1_Feat_SyntheticPoRep,
		StackedDrg8MiBV1_1_Feat_SyntheticPoRep,
		StackedDrg512MiBV1_1_Feat_SyntheticPoRep,
		StackedDrg32GiBV1_1_Feat_SyntheticPoRep,
		StackedDrg64GiBV1_1_Feat_SyntheticPoRep:
		return []apiver.Feature{apiver.FeatureSyntheticPoRep}
	case StackedDrg2KiBV1_2_Feat_NonInteractivePoRep,
		StackedDrg8MiBV1_2_Feat_NonInteractivePoRep,
		StackedDrg512MiBV1_2_Feat_NonInteractivePoRep,
		StackedDrg32GiBV1_2_Feat_NonInteractivePoRep,
		StackedDrg64GiBV1_2_Feat_NonInteractivePoRep:
		return []apiver.Feature{apiver.FeatureNonInteractivePoRep}
	default:
		return nil
	}
}

// FeatureEnabled reports whether the given feature is intrinsic to p.
func (p SealProof) FeatureEnabled(f apiver.Feature) bool {
	return apiver.HasFeature(p.Features(), f)
}

// Params returns the sector parameters for this proof, with the
// partition count adjusted for non-interactive variants.
func (p SealProof) Params() (sector.Params, error) {
	sp, err := sector.Parameters(p.SectorSize())
	if err != nil {
		return sector.Params{}, err
	}
	if p.FeatureEnabled(apiver.FeatureNonInteractivePoRep) {
		sp.Partitions = sp.NonInteractivePartitions
	}
	return sp, nil
}

// Partitions returns the PoRep partition count for this proof.
func (p SealProof) Partitions() uint8 {
	sp, err := p.Params()
	if err != nil {
		return 0
	}
	return sp.Partitions
}

// SinglePartitionProofLen returns the size of one partition proof in bytes.
func (p SealProof) SinglePartitionProofLen() int {
	return SinglePartitionProofLen
}

// nonce returns the identity nonce reserved for this proof. If the
// identity of a published proof ever needs rotating, match it here.
func (p SealProof) nonce() uint64 {
	return 0
}

// PorepID derives the protocol-frozen proof identity for this seal proof.
func (p SealProof) PorepID() ProofIdentity {
	return deriveIdentity(uint64(p), p.nonce())
}

// CircuitIdentifier names the circuit variant this proof executes. It
// keys parameter files, verifying keys and setup artifacts.
func (p SealProof) CircuitIdentifier() string {
	return "stacked-drg-seal-" + sizeSlug(p.SectorSize()) + "-" + p.versionTag()
}

func (p SealProof) versionTag() string {
	switch p.Version() {
	case apiver.V1_0_0:
		return "v1"
	case apiver.V1_1_0:
		return "v1_1"
	default:
		if p.FeatureEnabled(apiver.FeatureSyntheticPoRep) {
			return "v1_1-feat-synthetic-porep"
		}
		return "v1_2-feat-non-interactive-porep"
	}
}

func (p SealProof) String() string {
	base := "StackedDrg" + p.SectorSize().String()
	switch {
	case p.FeatureEnabled(apiver.FeatureSyntheticPoRep):
		return base + "V1_1_Feat_SyntheticPoRep"
	case p.FeatureEnabled(apiver.FeatureNonInteractivePoRep):
		return base + "V1_2_Feat_NonInteractivePoRep"
	case p.Version() == apiver.V1_1_0:
		return base + "V1_1"
	case p.Registered():
		return base + "V1"
	default:
		return fmt.Sprintf("SealProof(%d)", int(p))
	}
}

func sizeSlug(s sector.Size) string {
	switch s {
	case sector.Size2KiB:
		return "2kib"
	case sector.Size8MiB:
		return "8mib"
	case sector.Size512MiB:
		return "512mib"
	case sector.Size32GiB:
		return "32gib"
	case sector.Size64GiB:
		return "64gib"
	default:
		return fmt.Sprintf("%db", uint64(s))
	}
}
