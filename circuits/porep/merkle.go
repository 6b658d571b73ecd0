package porep

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// MerkleProofCircuit verifies one authentication path against a root.
type MerkleProofCircuit struct {
	RootHash frontend.Variable `gnark:"rootHash"`

	LeafValue  frontend.Variable               `gnark:"leafValue"`
	ProofPath  [MaxTreeDepth]frontend.Variable `gnark:"proofPath"`  // sibling hashes along the path to root
	Directions [MaxTreeDepth]frontend.Variable `gnark:"directions"` // 0 = sibling on right, 1 = sibling on left
}

// Define folds the leaf up the path and asserts the resulting root.
func (circuit *MerkleProofCircuit) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}
	hasher := hash.NewMerkleDamgardHasher(api, p, 0)

	currentHash := circuit.LeafValue

	// Process exactly MaxTreeDepth levels; padding levels carry
	// sibling=0 and must not alter the running hash.
	for i := 0; i < MaxTreeDepth; i++ {
		sibling := circuit.ProofPath[i]
		direction := circuit.Directions[i]

		siblingIsZero := api.IsZero(sibling)

		hasher.Reset()
		leftHash := api.Select(direction, sibling, currentHash)
		rightHash := api.Select(direction, currentHash, sibling)
		hasher.Write(leftHash, rightHash)
		newHash := hasher.Sum()

		currentHash = api.Select(siblingIsZero, currentHash, newHash)
	}

	api.AssertIsEqual(currentHash, circuit.RootHash)

	return nil
}
