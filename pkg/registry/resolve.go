package registry

import (
	"fmt"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// ResolveSeal maps a (sector size, API version, feature set) triple to
// its registered seal proof. Synthetic and non-interactive PoRep are
// mutually exclusive and only registered for sectors of
// MinFeatureSectorSize and above.
func ResolveSeal(size sector.Size, v apiver.Version, feats ...apiver.Feature) (SealProof, error) {
	if !sector.Supported(size) {
		return 0, fmt.Errorf("%w: seal proof for %s", ErrInvalidRegisteredProof, size)
	}

	synth := apiver.HasFeature(feats, apiver.FeatureSyntheticPoRep)
	ni := apiver.HasFeature(feats, apiver.FeatureNonInteractivePoRep)
	if synth && ni {
		return 0, fmt.Errorf("%w: synthetic and non-interactive porep are mutually exclusive",
			ErrInvalidRegisteredProof)
	}
	if (synth || ni) && size < MinFeatureSectorSize {
		return 0, fmt.Errorf("%w: %s not registered below %s sectors",
			ErrInvalidRegisteredProof, apiver.FeatureNames(feats), MinFeatureSectorSize)
	}
	if (synth || ni) && !v.AtLeast(apiver.V1_2_0) {
		return 0, fmt.Errorf("%w: %s requires api version %s, have %s",
			ErrInvalidRegisteredProof, apiver.FeatureNames(feats), apiver.V1_2_0, v)
	}

	base := sealBase(size)
	switch {
	case synth:
		return base + StackedDrg2KiBV1_1_Feat_SyntheticPoRep, nil
	case ni:
		return base + StackedDrg2KiBV1_2_Feat_NonInteractivePoRep, nil
	case v.AtLeast(apiver.V1_1_0):
		return base + StackedDrg2KiBV1_1, nil
	default:
		return base + StackedDrg2KiBV1, nil
	}
}

// ResolvePoSt maps a (PoSt type, sector size, API version) triple to its
// registered PoSt proof.
func ResolvePoSt(typ PoStType, size sector.Size, v apiver.Version) (PoStProof, error) {
	if !sector.Supported(size) {
		return 0, fmt.Errorf("%w: %s post proof for %s", ErrInvalidRegisteredProof, typ, size)
	}
	offset := PoStProof(sealBase(size))
	switch {
	case typ == PoStWinning:
		return StackedDrgWinning2KiBV1 + offset, nil
	case v.AtLeast(apiver.V1_2_0):
		return StackedDrgWindow2KiBV1_2 + offset, nil
	default:
		return StackedDrgWindow2KiBV1 + offset, nil
	}
}

// ResolveUpdate maps a (sector size, API version) pair to its registered
// empty-sector-update proof. Updates require API version 1.2.
func ResolveUpdate(size sector.Size, v apiver.Version) (UpdateProof, error) {
	if !sector.Supported(size) {
		return 0, fmt.Errorf("%w: update proof for %s", ErrInvalidRegisteredProof, size)
	}
	if !v.AtLeast(apiver.V1_2_0) {
		return 0, fmt.Errorf("%w: sector update requires api version %s, have %s",
			ErrInvalidRegisteredProof, apiver.V1_2_0, v)
	}
	return EmptySectorUpdate2KiBV1 + UpdateProof(sealBase(size)), nil
}

// sealBase returns the per-size offset within each five-wide variant
// group. Only call with a supported size.
func sealBase(size sector.Size) SealProof {
	switch size {
	case sector.Size2KiB:
		return 0
	case sector.Size8MiB:
		return 1
	case sector.Size512MiB:
		return 2
	case sector.Size32GiB:
		return 3
	default:
		return 4
	}
}
