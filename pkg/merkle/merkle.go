// Package merkle builds the binary Poseidon2 commitment trees behind
// CommD, CommRLast and the proof-of-spacetime openings. Sector sizes are
// powers of two, so trees are dense and fully materialized per level.
package merkle

import (
	"fmt"
	"io"
	"math/big"
	"math/bits"
	"runtime"
	"sync"

	"github.com/MuriData/muri-sector-proofs/pkg/crypto"
)

// HashFunc hashes one nodeSize-byte chunk into a leaf value. Callers
// provide it so this package stays independent of circuit parameters.
type HashFunc func(chunk []byte) *big.Int

// Tree is a dense binary commitment tree. levels[0] holds the leaf
// hashes, levels[depth] holds the single root.
type Tree struct {
	levels [][]*big.Int
	depth  int
}

// Proof is one authentication path. Directions use circuit encoding:
// 0 means the current node is the left child (sibling on the right),
// 1 means it is the right child (sibling on the left).
type Proof struct {
	Siblings   []*big.Int
	Directions []int
}

// BuildTree hashes the chunks in parallel and folds them bottom-up.
// The chunk count must be a power of two of at least two.
func BuildTree(chunks [][]byte, hashLeaf HashFunc) (*Tree, error) {
	n := len(chunks)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("chunk count %d is not a power of two >= 2", n)
	}

	leaves := make([]*big.Int, n)
	numWorkers := runtime.NumCPU()
	if numWorkers > n {
		numWorkers = n
	}

	var wg sync.WaitGroup
	work := make(chan int, n)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				leaves[i] = hashLeaf(chunks[i])
			}
		}()
	}
	for i := range chunks {
		work <- i
	}
	close(work)
	wg.Wait()

	return FoldLeaves(leaves)
}

// BuildFromReader streams leafCount chunks of nodeSize bytes from r and
// builds the tree over them. Short reads at the end are zero-padded.
func BuildFromReader(r io.Reader, leafCount int, nodeSize int, hashLeaf HashFunc) (*Tree, error) {
	chunks := make([][]byte, leafCount)
	for i := 0; i < leafCount; i++ {
		chunk := make([]byte, nodeSize)
		// Short or empty reads leave the remaining bytes zero.
		if _, err := io.ReadFull(r, chunk); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("read chunk %d: %w", i, err)
		}
		chunks[i] = chunk
	}
	return BuildTree(chunks, hashLeaf)
}

// FoldLeaves builds the tree above already-hashed leaves.
func FoldLeaves(leaves []*big.Int) (*Tree, error) {
	n := len(leaves)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("leaf count %d is not a power of two >= 2", n)
	}

	depth := bits.TrailingZeros(uint(n))
	levels := make([][]*big.Int, depth+1)
	levels[0] = leaves

	for lvl := 0; lvl < depth; lvl++ {
		prev := levels[lvl]
		next := make([]*big.Int, len(prev)/2)
		for i := range next {
			next[i] = crypto.HashNodes(prev[2*i], prev[2*i+1])
		}
		levels[lvl+1] = next
	}

	return &Tree{levels: levels, depth: depth}, nil
}

// Root returns the tree's root hash.
func (t *Tree) Root() *big.Int {
	return t.levels[t.depth][0]
}

// Depth returns the number of levels above the leaves.
func (t *Tree) Depth() int {
	return t.depth
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int {
	return len(t.levels[0])
}

// Leaf returns the hash at the given leaf index.
func (t *Tree) Leaf(index int) (*big.Int, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return nil, fmt.Errorf("leaf index %d out of range [0,%d)", index, len(t.levels[0]))
	}
	return t.levels[0][index], nil
}

// Prove returns the authentication path for the leaf at index. The
// path has exactly Depth() siblings.
func (t *Tree) Prove(index int) (Proof, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return Proof{}, fmt.Errorf("leaf index %d out of range [0,%d)", index, len(t.levels[0]))
	}

	siblings := make([]*big.Int, t.depth)
	directions := make([]int, t.depth)

	idx := index
	for lvl := 0; lvl < t.depth; lvl++ {
		if idx%2 == 0 {
			siblings[lvl] = t.levels[lvl][idx+1]
			directions[lvl] = 0
		} else {
			siblings[lvl] = t.levels[lvl][idx-1]
			directions[lvl] = 1
		}
		idx /= 2
	}

	return Proof{Siblings: siblings, Directions: directions}, nil
}

// VerifyProof folds a leaf hash up the path and compares against root.
func VerifyProof(leafHash *big.Int, proof Proof, root *big.Int) bool {
	if len(proof.Siblings) != len(proof.Directions) {
		return false
	}

	current := leafHash
	for i, sibling := range proof.Siblings {
		if proof.Directions[i] == 0 {
			current = crypto.HashNodes(current, sibling)
		} else {
			current = crypto.HashNodes(sibling, current)
		}
	}

	return current.Cmp(root) == 0
}
