package registry

import (
	"fmt"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// PoStType distinguishes the two proof-of-spacetime shapes.
type PoStType int

const (
	// PoStWinning challenges a single sector per proof.
	PoStWinning PoStType = iota
	// PoStWindow challenges a full partition of sectors per proof.
	PoStWindow
)

func (t PoStType) String() string {
	switch t {
	case PoStWinning:
		return "winning"
	case PoStWindow:
		return "window"
	default:
		return fmt.Sprintf("PoStType(%d)", int(t))
	}
}

// PoStProof identifies a registered proof-of-spacetime. Append-only.
type PoStProof int

const (
	StackedDrgWinning2KiBV1 PoStProof = iota
	StackedDrgWinning8MiBV1
	StackedDrgWinning512MiBV1
	StackedDrgWinning32GiBV1
	StackedDrgWinning64GiBV1

	StackedDrgWindow2KiBV1
	StackedDrgWindow8MiBV1
	StackedDrgWindow512MiBV1
	StackedDrgWindow32GiBV1
	StackedDrgWindow64GiBV1

	// The V1_2 window variants fix the rows-to-discard parameter so the
	// challenge set can no longer be ground by the prover.
	StackedDrgWindow2KiBV1_2
	StackedDrgWindow8MiBV1_2
	StackedDrgWindow512MiBV1_2
	StackedDrgWindow32GiBV1_2
	StackedDrgWindow64GiBV1_2
)

// PoStProofs returns every registered PoSt proof in id order.
func PoStProofs() []PoStProof {
	out := make([]PoStProof, 0, int(StackedDrgWindow64GiBV1_2)+1)
	for p := StackedDrgWinning2KiBV1; p <= StackedDrgWindow64GiBV1_2; p++ {
		out = append(out, p)
	}
	return out
}

// Registered reports whether p names a published PoSt proof.
func (p PoStProof) Registered() bool {
	return p >= StackedDrgWinning2KiBV1 && p <= StackedDrgWindow64GiBV1_2
}

// Type returns whether this is a winning or window PoSt.
func (p PoStProof) Type() PoStType {
	if p >= StackedDrgWinning2KiBV1 && p <= StackedDrgWinning64GiBV1 {
		return PoStWinning
	}
	return PoStWindow
}

// Version returns the API version that introduced this proof.
func (p PoStProof) Version() apiver.Version {
	if p >= StackedDrgWindow2KiBV1_2 {
		return apiver.V1_2_0
	}
	return apiver.V1_0_0
}

// SectorSize returns the sector size this proof is bound to.
func (p PoStProof) SectorSize() sector.Size {
	switch p {
	case StackedDrgWinning2KiBV1, StackedDrgWindow2KiBV1, StackedDrgWindow2KiBV1_2:
		return sector.Size2KiB
	case StackedDrgWinning8MiBV1, StackedDrgWindow8MiBV1, StackedDrgWindow8MiBV1_2:
		return sector.Size8MiB
	case StackedDrgWinning512MiBV1, StackedDrgWindow512MiBV1, StackedDrgWindow512MiBV1_2:
		return sector.Size512MiB
	case StackedDrgWinning32GiBV1, StackedDrgWindow32GiBV1, StackedDrgWindow32GiBV1_2:
		return sector.Size32GiB
	case StackedDrgWinning64GiBV1, StackedDrgWindow64GiBV1, StackedDrgWindow64GiBV1_2:
		return sector.Size64GiB
	default:
		return 0
	}
}

// Features returns the feature flags intrinsic to this proof variant.
func (p PoStProof) Features() []apiver.Feature {
	if p.Version().AtLeast(apiver.V1_2_0) {
		return []apiver.Feature{apiver.FeatureFixedRowsToDiscard}
	}
	return nil
}

// Params returns the sector parameters for this proof.
func (p PoStProof) Params() (sector.Params, error) {
	return sector.Parameters(p.SectorSize())
}

// SectorCount returns how many sectors one proof of this type covers.
func (p PoStProof) SectorCount() int {
	sp, err := p.Params()
	if err != nil {
		return 0
	}
	if p.Type() == PoStWinning {
		return sp.WinningPoStSectorCount
	}
	return sp.WindowPoStSectorCount
}

// ChallengeCount returns the number of leaf challenges per sector.
func (p PoStProof) ChallengeCount() int {
	sp, err := p.Params()
	if err != nil {
		return 0
	}
	if p.Type() == PoStWinning {
		return sp.WinningPoStChallengeCount
	}
	return sp.WindowPoStChallengeCount
}

// SinglePartitionProofLen returns the size of one partition proof in bytes.
func (p PoStProof) SinglePartitionProofLen() int {
	return SinglePartitionProofLen
}

// CircuitIdentifier names the circuit variant this proof executes.
func (p PoStProof) CircuitIdentifier() string {
	tag := "v1"
	if p.Version().AtLeast(apiver.V1_2_0) {
		tag = "v1_2"
	}
	return "stacked-drg-" + p.Type().String() + "-post-" + sizeSlug(p.SectorSize()) + "-" + tag
}

func (p PoStProof) String() string {
	if !p.Registered() {
		return fmt.Sprintf("PoStProof(%d)", int(p))
	}
	base := "StackedDrg"
	if p.Type() == PoStWinning {
		base += "Winning"
	} else {
		base += "Window"
	}
	base += p.SectorSize().String()
	if p.Version().AtLeast(apiver.V1_2_0) {
		return base + "V1_2"
	}
	return base + "V1"
}
