package devengine

import (
	"encoding/binary"
	"fmt"
	"io"

	"lukechampine.com/blake3"

	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

// Randomness domains. Each derived stream gets its own prefix so a
// value sampled for one purpose can never collide with another.
const (
	domainReplicaLabel   = "muri/dev/replica-label"
	domainSealChallenge  = "muri/dev/seal-challenge"
	domainNIChallenge    = "muri/dev/ni-challenge"
	domainSynthChallenge = "muri/dev/synth-challenge"
	domainSynthSelect    = "muri/dev/synth-select"
	domainPoStChallenge  = "muri/dev/post-challenge"
	domainUpdateChal     = "muri/dev/update-challenge"
	domainAggregate      = "muri/dev/aggregate-seal"
)

// xof absorbs a domain tag plus inputs and returns the extendable
// output stream. The stream is seekable, which keeps ranged unseal at
// constant memory.
func xof(domain string, parts ...[]byte) *blake3.OutputReader {
	h := blake3.New(32, nil)
	h.Write([]byte(domain))
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return h.XOF()
}

// digest is the fixed-size form of xof.
func digest(domain string, parts ...[]byte) [32]byte {
	var out [32]byte
	r := xof(domain, parts...)
	if _, err := io.ReadFull(r, out[:]); err != nil {
		// The XOF stream never errors.
		panic(fmt.Sprintf("blake3 xof read: %v", err))
	}
	return out
}

// replicaKeystream derives the labelling stream a sector's replica is
// XOR-encoded with. It is keyed by the proof identity so two registered
// proofs never share a replica, and by prover, sector and ticket so no
// two sectors share one either.
func replicaKeystream(id registry.ProofIdentity, prover engine.ProverID, sec engine.SectorID, ticket engine.Ticket) *blake3.OutputReader {
	var secBuf [8]byte
	binary.LittleEndian.PutUint64(secBuf[:], uint64(sec))
	return xof(domainReplicaLabel, id[:], prover[:], secBuf[:], ticket[:])
}

// deriveChallenges expands a domain-separated seed into count leaf
// indices below leafCount.
func deriveChallenges(domain string, count int, leafCount uint64, parts ...[]byte) []uint64 {
	r := xof(domain, parts...)
	out := make([]uint64, count)
	var buf [8]byte
	for i := range out {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			panic(fmt.Sprintf("blake3 xof read: %v", err))
		}
		out[i] = binary.LittleEndian.Uint64(buf[:]) % leafCount
	}
	return out
}

func sectorIDBytes(sec engine.SectorID) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(sec))
	return buf[:]
}
