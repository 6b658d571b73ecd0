package porep

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/MuriData/muri-sector-proofs/pkg/crypto"
	"github.com/MuriData/muri-sector-proofs/pkg/field"
	"github.com/MuriData/muri-sector-proofs/pkg/merkle"
)

// WitnessResult holds the fully populated circuit assignment and the
// derived public values callers typically need for logging.
type WitnessResult struct {
	Assignment SealCircuit
	CommR      *big.Int
	CommC      *big.Int
}

// PrepareWitness builds a circuit assignment from a sealed sector's
// replica tree. identity and ticket are the registered proof identity
// and the sealing ticket; nodes holds the raw replica bytes at the
// challenged leaves, in challenge order.
func PrepareWitness(identity, ticket [32]byte, tree *merkle.Tree, nodes [][]byte, challenges []uint64) (*WitnessResult, error) {
	if len(challenges) != ChallengeCount {
		return nil, fmt.Errorf("got %d challenges, circuit needs %d", len(challenges), ChallengeCount)
	}
	if len(nodes) != ChallengeCount {
		return nil, fmt.Errorf("got %d nodes, circuit needs %d", len(nodes), ChallengeCount)
	}
	if tree.Depth() > MaxTreeDepth {
		return nil, fmt.Errorf("tree depth %d exceeds MaxTreeDepth %d", tree.Depth(), MaxTreeDepth)
	}

	identityElem := crypto.BindCommitment(identity)
	ticketElem := crypto.BindCommitment(ticket)
	commC := crypto.HashElements(identityElem, ticketElem)
	commR := crypto.HashElements(commC, tree.Root())

	var assignment SealCircuit
	assignment.CommR = commR
	assignment.Identity = identityElem
	assignment.Ticket = ticketElem
	assignment.CommRLast = tree.Root()

	for k, challenge := range challenges {
		idx := int(challenge)
		leafHash, err := tree.Leaf(idx)
		if err != nil {
			return nil, fmt.Errorf("challenge %d: %w", k, err)
		}
		if got := crypto.HashLeaf(nodes[k]); got.Cmp(leafHash) != 0 {
			return nil, fmt.Errorf("challenge %d: node bytes do not hash to leaf %d", k, idx)
		}

		proof, err := tree.Prove(idx)
		if err != nil {
			return nil, fmt.Errorf("challenge %d: %w", k, err)
		}

		var proofPath [MaxTreeDepth]frontend.Variable
		var directions [MaxTreeDepth]frontend.Variable
		for i := range proof.Siblings {
			proofPath[i] = proof.Siblings[i]
			directions[i] = proof.Directions[i]
		}
		for i := len(proof.Siblings); i < MaxTreeDepth; i++ {
			proofPath[i] = 0
			directions[i] = 0
		}

		var nodeElems [NumChunks]frontend.Variable
		copy(nodeElems[:], field.Bytes2Field(nodes[k], NumChunks, ElementSize))

		assignment.Nodes[k] = nodeElems
		assignment.Openings[k] = MerkleProofCircuit{
			RootHash:   tree.Root(),
			LeafValue:  leafHash,
			ProofPath:  proofPath,
			Directions: directions,
		}
	}

	return &WitnessResult{
		Assignment: assignment,
		CommR:      commR,
		CommC:      commC,
	}, nil
}
