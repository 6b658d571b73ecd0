// Package field converts raw sector bytes to BN254 circuit variables.
package field

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Bytes2Field packs data into numChunks field elements of elementSize
// bytes each. Data beyond the last full element is zero-padded; missing
// trailing elements are zero. elementSize must stay below 32 so every
// element fits under the BN254 scalar modulus.
func Bytes2Field(data []byte, numChunks, elementSize int) []frontend.Variable {
	elements := make([]frontend.Variable, numChunks)

	// One reusable buffer; big.Int.SetBytes copies, so reuse is safe.
	buf := make([]byte, elementSize)

	for i := 0; i < numChunks; i++ {
		start := i * elementSize
		if start >= len(data) {
			elements[i] = big.NewInt(0)
			continue
		}

		for j := range buf {
			buf[j] = 0
		}
		end := start + elementSize
		if end > len(data) {
			end = len(data)
		}
		copy(buf, data[start:end])

		elements[i] = new(big.Int).SetBytes(buf)
	}

	return elements
}

// Node2Field packs one 32-byte tree node into its circuit elements.
func Node2Field(node [32]byte, elementSize int) []frontend.Variable {
	numChunks := (len(node) + elementSize - 1) / elementSize
	return Bytes2Field(node[:], numChunks, elementSize)
}
