package registry

import (
	"encoding/binary"
	"encoding/hex"
)

// ProofIdentity is the 32-byte identity a proof variant mixes into every
// derived randomness domain. Layout, little-endian:
//
//	bytes  0..8  registered proof id
//	bytes  8..16 identity nonce
//	bytes 16..32 reserved, zero
//
// The layout is consensus-critical. Changing the identity of a published
// proof invalidates every sector sealed under it.
type ProofIdentity [32]byte

func deriveIdentity(proofID, nonce uint64) ProofIdentity {
	var id ProofIdentity
	binary.LittleEndian.PutUint64(id[0:8], proofID)
	binary.LittleEndian.PutUint64(id[8:16], nonce)
	return id
}

// ProofID returns the registered proof id embedded in the identity.
func (id ProofIdentity) ProofID() uint64 {
	return binary.LittleEndian.Uint64(id[0:8])
}

// Nonce returns the identity nonce embedded in the identity.
func (id ProofIdentity) Nonce() uint64 {
	return binary.LittleEndian.Uint64(id[8:16])
}

func (id ProofIdentity) String() string {
	return hex.EncodeToString(id[:])
}
