// Package sector enumerates the supported sector sizes and their derived
// physical parameters. The set is closed: every registered proof binds to
// exactly one of these sizes, and all derived parameters are a pure
// function of the size.
package sector

import (
	"errors"
	"fmt"

	"github.com/MuriData/muri-sector-proofs/config"
)

// Size is the physical capacity of a sector in bytes.
type Size uint64

const (
	Size2KiB   Size = 2 << 10
	Size8MiB   Size = 8 << 20
	Size512MiB Size = 512 << 20
	Size32GiB  Size = 32 << 30
	Size64GiB  Size = 64 << 30
)

// ErrUnsupportedSectorSize is returned for any size outside the closed set.
var ErrUnsupportedSectorSize = errors.New("unsupported sector size")

// Params holds the physical and proof-shape parameters derived from a
// sector size.
type Params struct {
	Size Size

	// LeafCount is the number of NodeSize leaves in the commitment tree.
	LeafCount uint64
	// Arity is the branching factor of the commitment tree.
	Arity int

	// Partitions is the PoRep partition count for interactive seal proofs.
	Partitions uint8
	// NonInteractivePartitions is the PoRep partition count when the
	// non-interactive PoRep feature applies.
	NonInteractivePartitions uint8

	WinningPoStSectorCount    int
	WinningPoStChallengeCount int
	WindowPoStSectorCount     int
	WindowPoStChallengeCount  int
}

// params is the closed lookup table. Entries are append-only; published
// values are frozen because they shape already-sealed sectors.
var params = map[Size]Params{
	Size2KiB:   newParams(Size2KiB, 1, 1, 2),
	Size8MiB:   newParams(Size8MiB, 1, 1, 2),
	Size512MiB: newParams(Size512MiB, 1, 1, 2),
	Size32GiB:  newParams(Size32GiB, 10, 126, 2349),
	Size64GiB:  newParams(Size64GiB, 10, 126, 2300),
}

func newParams(size Size, partitions, niPartitions uint8, windowSectors int) Params {
	return Params{
		Size:                      size,
		LeafCount:                 uint64(size) / config.NodeSize,
		Arity:                     2,
		Partitions:                partitions,
		NonInteractivePartitions:  niPartitions,
		WinningPoStSectorCount:    config.WinningPoStSectorCount,
		WinningPoStChallengeCount: config.WinningPoStChallengeCount,
		WindowPoStSectorCount:     windowSectors,
		WindowPoStChallengeCount:  config.WindowPoStChallengeCount,
	}
}

// Parameters returns the derived parameters for a known sector size and
// ErrUnsupportedSectorSize otherwise. Pure lookup, no side effects.
func Parameters(s Size) (Params, error) {
	p, ok := params[s]
	if !ok {
		return Params{}, fmt.Errorf("%w: %d bytes", ErrUnsupportedSectorSize, uint64(s))
	}
	return p, nil
}

// Supported reports whether s is in the closed set.
func Supported(s Size) bool {
	_, ok := params[s]
	return ok
}

// Sizes returns the supported sizes in ascending order.
func Sizes() []Size {
	return []Size{Size2KiB, Size8MiB, Size512MiB, Size32GiB, Size64GiB}
}

func (s Size) String() string {
	switch s {
	case Size2KiB:
		return "2KiB"
	case Size8MiB:
		return "8MiB"
	case Size512MiB:
		return "512MiB"
	case Size32GiB:
		return "32GiB"
	case Size64GiB:
		return "64GiB"
	default:
		return fmt.Sprintf("%dB", uint64(s))
	}
}
