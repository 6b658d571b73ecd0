// Package crypto holds the Poseidon2 hashing primitives shared by the
// commitment trees, the sealing engine and the circuits. Every hash here
// must match its in-circuit counterpart bit for bit, so all inputs pass
// through canonical fr.Element encoding before being absorbed.
package crypto

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/MuriData/muri-sector-proofs/config"
)

// HashLeaf hashes one 32-byte tree node into a field element. The node
// is split into ElementSize-byte chunks so each chunk fits under the
// BN254 scalar modulus, matching the circuit's leaf layout.
func HashLeaf(node []byte) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	buf := make([]byte, config.ElementSize)
	var elem fr.Element

	for offset := 0; offset < len(node); offset += config.ElementSize {
		for i := range buf {
			buf[i] = 0
		}
		end := offset + config.ElementSize
		if end > len(node) {
			end = len(node)
		}
		copy(buf, node[offset:end])

		elem.SetBytes(buf)
		b := elem.Bytes()
		h.Write(b[:])
	}

	return new(big.Int).SetBytes(h.Sum(nil))
}

// HashNodes hashes two child hashes into their parent. Inputs go
// through canonical 32-byte fr.Element encoding so a zero value absorbs
// 32 zero bytes, matching the circuit, instead of the empty slice
// big.Int.Bytes would produce.
func HashNodes(left, right *big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	var lFr, rFr fr.Element
	lFr.SetBigInt(left)
	rFr.SetBigInt(right)

	lBytes := lFr.Bytes()
	rBytes := rFr.Bytes()
	h.Write(lBytes[:])
	h.Write(rBytes[:])

	return new(big.Int).SetBytes(h.Sum(nil))
}

// HashElements absorbs a sequence of field elements in order. Used to
// bind commitments together, for example CommR = H(CommC, CommRLast).
func HashElements(elems ...*big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	var elem fr.Element
	for _, e := range elems {
		elem.SetBigInt(e)
		b := elem.Bytes()
		h.Write(b[:])
	}

	return new(big.Int).SetBytes(h.Sum(nil))
}

// CommitmentFromElement renders a field element as a canonical 32-byte
// commitment.
func CommitmentFromElement(v *big.Int) [32]byte {
	var elem fr.Element
	elem.SetBigInt(v)
	return elem.Bytes()
}

// ElementFromCommitment reads a canonical 32-byte commitment back into
// a field element.
func ElementFromCommitment(c [32]byte) *big.Int {
	var elem fr.Element
	elem.SetBytes(c[:])
	out := new(big.Int)
	elem.BigInt(out)
	return out
}

// BindCommitment reduces an arbitrary 32-byte value (tickets, seeds,
// identities) into the field so it can be absorbed alongside
// commitments.
func BindCommitment(b [32]byte) *big.Int {
	var elem fr.Element
	elem.SetBytes(b[:])
	out := new(big.Int)
	elem.BigInt(out)
	return out
}
