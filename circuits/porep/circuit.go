// Package porep holds the reference replication circuit: it proves that
// a set of challenged replica nodes is included under CommRLast and
// that the published CommR binds CommRLast to the sector's identity and
// ticket through CommC.
package porep

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

type SealCircuit struct {
	// Publics
	CommR    frontend.Variable `gnark:"commR,public"`
	Identity frontend.Variable `gnark:"identity,public"`
	Ticket   frontend.Variable `gnark:"ticket,public"`

	// Privates
	CommRLast frontend.Variable                            `gnark:"commRLast"`
	Nodes     [ChallengeCount][NumChunks]frontend.Variable `gnark:"nodes"`
	Openings  [ChallengeCount]MerkleProofCircuit           `gnark:"openings"`
}

func (circuit *SealCircuit) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}

	// 1. Commitment binding: CommR == H(CommC, CommRLast) with
	//    CommC == H(identity, ticket). A zero identity or ticket is
	//    legitimate (proof id zero, committed-capacity sectors), so
	//    neither is constrained to be non-zero.
	commCHasher := hash.NewMerkleDamgardHasher(api, p, 0)
	commCHasher.Write(circuit.Identity)
	commCHasher.Write(circuit.Ticket)
	commC := commCHasher.Sum()
	commCHasher.Reset()

	commRHasher := hash.NewMerkleDamgardHasher(api, p, 0)
	commRHasher.Write(commC)
	commRHasher.Write(circuit.CommRLast)
	derivedCommR := commRHasher.Sum()
	commRHasher.Reset()

	api.AssertIsEqual(circuit.CommR, derivedCommR)

	// 2. Per-challenge: leaf hash from raw node bytes, link to the
	//    opening, structural constraints, then path verification.
	for k := 0; k < ChallengeCount; k++ {
		leafHasher := hash.NewMerkleDamgardHasher(api, p, 0)
		leafHasher.Write(circuit.Nodes[k][:]...)
		leafHash := leafHasher.Sum()
		leafHasher.Reset()

		api.AssertIsEqual(circuit.Openings[k].LeafValue, leafHash)
		api.AssertIsEqual(circuit.Openings[k].RootHash, circuit.CommRLast)

		// Monotonicity: once a zero sibling appears, all subsequent
		// siblings must be zero, so padding cannot hide path segments.
		prevActive := frontend.Variable(1)
		for j := 0; j < MaxTreeDepth; j++ {
			siblingIsZero := api.IsZero(circuit.Openings[k].ProofPath[j])
			viol := api.Mul(api.Sub(1, prevActive), api.Sub(1, siblingIsZero))
			api.AssertIsEqual(viol, 0)
			prevActive = api.Mul(prevActive, api.Sub(1, siblingIsZero))
		}

		// Padded levels must carry direction 0 so the witness cannot
		// smuggle free bits through inactive path slots.
		for j := 0; j < MaxTreeDepth; j++ {
			isActive := api.Sub(1, api.IsZero(circuit.Openings[k].ProofPath[j]))
			dir := circuit.Openings[k].Directions[j]
			api.AssertIsBoolean(dir)
			api.AssertIsEqual(api.Mul(dir, api.Sub(1, isActive)), 0)
		}

		if err := circuit.Openings[k].Define(api); err != nil {
			return err
		}
	}

	// 3. Minimum depth: at least one hashing level on the first opening.
	api.AssertIsEqual(api.IsZero(circuit.Openings[0].ProofPath[0]), 0)

	return nil
}
