package merkle

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Binary layout:
//
//	uint32(depth)
//	for each level 0..depth: count(level) hashes,
//	  each a canonical 32-byte big-endian fr.Element
//
// Level sizes are implied by the depth, so no per-level headers are
// stored. Trees persist in sector cache directories between the
// pre-commit and commit phases.

// Save writes the tree to w in a deterministic binary format.
func (t *Tree) Save(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(t.depth)); err != nil {
		return fmt.Errorf("write depth: %w", err)
	}

	var elem fr.Element
	for lvl := 0; lvl <= t.depth; lvl++ {
		for i, h := range t.levels[lvl] {
			elem.SetBigInt(h)
			b := elem.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return fmt.Errorf("write level %d hash %d: %w", lvl, i, err)
			}
		}
	}

	return nil
}

// Load reads a tree written by Save.
func Load(r io.Reader) (*Tree, error) {
	var depth uint32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return nil, fmt.Errorf("read depth: %w", err)
	}
	if depth > 40 {
		return nil, fmt.Errorf("implausible tree depth %d", depth)
	}

	levels := make([][]*big.Int, depth+1)
	var buf [32]byte
	var elem fr.Element
	for lvl := 0; lvl <= int(depth); lvl++ {
		count := 1 << (int(depth) - lvl)
		level := make([]*big.Int, count)
		for i := 0; i < count; i++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("read level %d hash %d: %w", lvl, i, err)
			}
			elem.SetBytes(buf[:])
			level[i] = new(big.Int)
			elem.BigInt(level[i])
		}
		levels[lvl] = level
	}

	return &Tree{levels: levels, depth: int(depth)}, nil
}
