package devengine

import (
	"context"
	"io"
	"math/big"

	"github.com/MuriData/muri-sector-proofs/config"
	"github.com/MuriData/muri-sector-proofs/pkg/crypto"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/merkle"
)

// GeneratePieceCommitment computes CommP: the root of the node tree
// over the padded piece. Piece trees use the same leaf hashing as the
// sector data tree, so a piece spanning an aligned subtree contributes
// its CommP directly as that subtree's root.
func (e *Engine) GeneratePieceCommitment(ctx context.Context, call engine.Call, piece io.Reader, size uint64) (engine.Commitment, error) {
	if err := ctx.Err(); err != nil {
		return engine.Commitment{}, err
	}
	if size == 0 {
		return engine.Commitment{}, engine.Errorf("piece-commitment", call.Circuit, "zero piece size")
	}

	leafCount := nextPowerOfTwo((size + config.NodeSize - 1) / config.NodeSize)
	if leafCount < 2 {
		leafCount = 2
	}
	tree, err := merkle.BuildFromReader(io.LimitReader(piece, int64(size)), int(leafCount), config.NodeSize, crypto.HashLeaf)
	if err != nil {
		return engine.Commitment{}, engine.Errorf("piece-commitment", call.Circuit, "%w", err)
	}
	return crypto.CommitmentFromElement(tree.Root()), nil
}

// ComputeCommD folds piece commitments into the sector data
// commitment. Pieces must be power-of-two sized, sorted largest first
// by the caller, and sum to the sector size; an empty piece list
// yields the zero-sector commitment.
func (e *Engine) ComputeCommD(ctx context.Context, call engine.Call, pieces []engine.PieceInfo) (engine.Commitment, error) {
	if err := ctx.Err(); err != nil {
		return engine.Commitment{}, err
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return engine.Commitment{}, err
	}

	if len(pieces) == 0 {
		zero := make([][]byte, leaves)
		for i := range zero {
			zero[i] = make([]byte, config.NodeSize)
		}
		tree, err := merkle.BuildTree(zero, crypto.HashLeaf)
		if err != nil {
			return engine.Commitment{}, engine.Errorf("comm-d", call.Circuit, "%w", err)
		}
		return crypto.CommitmentFromElement(tree.Root()), nil
	}

	var total uint64
	roots := make([]*big.Int, len(pieces))
	for i, p := range pieces {
		if p.Size == 0 || p.Size&(p.Size-1) != 0 {
			return engine.Commitment{}, engine.Errorf("comm-d", call.Circuit,
				"piece %d size %d is not a power of two", i, p.Size)
		}
		total += p.Size
		roots[i] = crypto.ElementFromCommitment(p.Commitment)
	}
	if total != uint64(call.SectorSize) {
		return engine.Commitment{}, engine.Errorf("comm-d", call.Circuit,
			"pieces cover %d bytes of a %d byte sector", total, uint64(call.SectorSize))
	}

	// Fold equal-size neighbors pairwise until one root remains.
	for len(roots) > 1 {
		if len(roots)%2 != 0 {
			return engine.Commitment{}, engine.Errorf("comm-d", call.Circuit,
				"piece layout does not fold to a single root")
		}
		next := make([]*big.Int, len(roots)/2)
		for i := range next {
			next[i] = crypto.HashNodes(roots[2*i], roots[2*i+1])
		}
		roots = next
	}
	return crypto.CommitmentFromElement(roots[0]), nil
}

func nextPowerOfTwo(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
