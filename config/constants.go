package config

const (
	// NodeSize is the byte width of a single commitment-tree node. Every
	// commitment (CommR, CommD, CommP) is exactly one node.
	NodeSize = 32

	// ElementSize is the number of data bytes packed into one BN254 field
	// element when hashing a tree node. 31 bytes always fit below the
	// field modulus.
	ElementSize = 31

	// ElementsPerNode is the number of field elements a node splits into.
	ElementsPerNode = int((NodeSize + ElementSize - 1) / ElementSize)

	// WinningPoStSectorCount is the number of sectors challenged by a
	// single winning PoSt.
	WinningPoStSectorCount = 1

	// WinningPoStChallengeCount is the number of leaf challenges per
	// sector in a winning PoSt.
	WinningPoStChallengeCount = 66

	// WindowPoStChallengeCount is the number of leaf challenges per
	// sector in a window PoSt.
	WindowPoStChallengeCount = 10

	// SynthChallengeCount is the number of vanilla proofs precomputed by
	// synthetic PoRep; the interactive seed later selects a subset.
	SynthChallengeCount = 32
)
