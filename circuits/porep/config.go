package porep

const (
	// NodeSize is the size of one tree node in bytes.
	NodeSize = 32
	// ElementSize is the number of node bytes packed per field element.
	ElementSize = 31
	// NumChunks is the number of field elements per node.
	NumChunks = (NodeSize + ElementSize - 1) / ElementSize

	// MaxTreeDepth bounds the replica tree height the circuit can
	// verify. 2^20 nodes of 32 bytes covers sectors up to 32 MiB;
	// shorter paths are zero-padded.
	MaxTreeDepth = 20
	// ChallengeCount is the number of replica openings per proof.
	ChallengeCount = 8
)
