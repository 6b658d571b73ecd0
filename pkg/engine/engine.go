// Package engine defines the contract between the dispatch layer and a
// proving backend. The dispatcher resolves and authorizes registered
// proofs; an Engine executes them. Backends range from the insecure
// development engine to a full SNARK prover, and the dispatcher treats
// them uniformly through this interface.
package engine

import (
	"context"
	"io"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// Commitment is a 32-byte sector commitment (CommR, CommD or CommP).
type Commitment [32]byte

// Ticket is the chain randomness sampled at seal start.
type Ticket [32]byte

// ChallengeSeed is the chain randomness sampled for interactive
// challenges (the seal seed, or a PoSt challenge seed).
type ChallengeSeed [32]byte

// ProverID identifies the sealing actor. It is mixed into every
// randomness domain so two provers never derive the same challenges.
type ProverID [32]byte

// SectorID is the prover-scoped sector number.
type SectorID uint64

// PieceInfo describes one deal piece placed in a sector: its commitment
// and its padded byte size. Sizes must sum to the sector size.
type PieceInfo struct {
	Commitment Commitment
	Size       uint64
}

// Proof is an opaque proof produced by an engine, tagged with the
// circuit that produced it so verifiers reject cross-circuit replays.
type Proof struct {
	Circuit string
	Bytes   []byte
}

// Call carries the authorized proof descriptor into the engine: the
// frozen identity, the circuit to run, the proof shape, and the API
// version and effective feature set the dispatcher authorized. PoSt
// calls leave Identity zero; seal and update calls leave the PoSt
// shape fields zero.
type Call struct {
	Identity registry.ProofIdentity
	Circuit  string
	Version  apiver.Version
	Features []apiver.Feature

	SectorSize sector.Size
	// Challenges is the per-sector challenge count for PoSt calls.
	Challenges int
	// PartitionSectors is the number of sectors one PoSt partition
	// proof covers.
	PartitionSectors int
}

// HasFeature reports whether the authorized call carries f.
func (c Call) HasFeature(f apiver.Feature) bool {
	return apiver.HasFeature(c.Features, f)
}

// PreCommit1Request names the inputs of the first sealing phase: the
// unsealed data is read from UnsealedPath, the replica is labelled into
// CacheDir keyed by the ticket.
type PreCommit1Request struct {
	ProverID     ProverID
	SectorID     SectorID
	Ticket       Ticket
	UnsealedPath string
	CacheDir     string
	Pieces       []PieceInfo
}

// PreCommit1Output is the opaque handoff between the two pre-commit
// phases. Engines serialize whatever their phase two needs.
type PreCommit1Output []byte

// SealedCommitments is the result of pre-commit: the replica commitment
// that goes on chain and the data commitment it binds.
type SealedCommitments struct {
	CommR Commitment
	CommD Commitment
}

// Commit1Request names the inputs of the first commit phase.
type Commit1Request struct {
	ProverID     ProverID
	SectorID     SectorID
	Ticket       Ticket
	Seed         ChallengeSeed
	CommR        Commitment
	CommD        Commitment
	CacheDir     string
	SealedRef    string
	UnsealedPath string
	Pieces       []PieceInfo
}

// Commit1Output is the vanilla-proof handoff between commit phases.
// It is safe to ship to a remote prover.
type Commit1Output []byte

// SealVerifyInfo carries everything needed to verify a seal proof.
type SealVerifyInfo struct {
	Sector SectorProver
	CommR  Commitment
	CommD  Commitment
	Proof  Proof
}

// SectorProver pairs a prover with one of its sectors plus the
// randomness the proof was generated under.
type SectorProver struct {
	ProverID ProverID
	SectorID SectorID
	Ticket   Ticket
	Seed     ChallengeSeed
}

// UnsealRequest asks for Size bytes of original data starting at
// Offset, decoded from the sealed replica.
type UnsealRequest struct {
	ProverID  ProverID
	SectorID  SectorID
	Ticket    Ticket
	CommD     Commitment
	SealedRef string
	Offset    uint64
	Size      uint64
}

// PrivateReplica is a sector the prover holds locally: the on-chain
// commitment plus the paths needed to open it.
type PrivateReplica struct {
	SectorID  SectorID
	CommR     Commitment
	SealedRef string
	CacheDir  string
}

// PublicReplica is the verifier's view of a sector: just the on-chain
// commitment.
type PublicReplica struct {
	SectorID SectorID
	CommR    Commitment
}

// PoStRequest challenges a set of replicas under one randomness.
type PoStRequest struct {
	ProverID   ProverID
	Randomness ChallengeSeed
	Replicas   []PrivateReplica
}

// PoStVerifyInfo carries everything needed to verify a PoSt.
type PoStVerifyInfo struct {
	ProverID   ProverID
	Randomness ChallengeSeed
	Replicas   []PublicReplica
	Proofs     []Proof
}

// VanillaProof is a single-sector Merkle opening, the unit from which
// PoSt proofs are assembled.
type VanillaProof []byte

// AggregateRequest bundles already-verified seal proofs for
// aggregation. Seeds and commitments run parallel to Proofs: entry i
// describes the sector proof i attests to.
type AggregateRequest struct {
	Scheme registry.AggregationProof
	Infos  []AggregateSealInfo
	Proofs []Proof
}

// AggregateSealInfo is the per-sector public input of an aggregate.
type AggregateSealInfo struct {
	CommR Commitment
	Seed  ChallengeSeed
}

// AggregateVerifyInfo carries everything needed to verify an aggregate
// seal proof.
type AggregateVerifyInfo struct {
	Scheme    registry.AggregationProof
	Infos     []AggregateSealInfo
	Aggregate Proof
}

// UpdateRequest encodes new deal data onto an existing replica.
type UpdateRequest struct {
	CommROld     Commitment
	UnsealedPath string
	SealedRef    string
	UpdatedRef   string
	CacheDir     string
	Pieces       []PieceInfo
}

// UpdateCommitments is the result of an update encode.
type UpdateCommitments struct {
	CommRNew Commitment
	CommDNew Commitment
}

// UpdateDecodeRequest recovers original data from an updated replica.
type UpdateDecodeRequest struct {
	CommDNew   Commitment
	UpdatedRef string
	SealedRef  string
	OutPath    string
}

// UpdateDecodeRangeRequest recovers Size bytes of deal data starting
// at Offset from an updated replica.
type UpdateDecodeRangeRequest struct {
	CommDNew   Commitment
	UpdatedRef string
	SealedRef  string
	Offset     uint64
	Size       uint64
}

// UpdateRemoveDataRequest strips the encoded deal data out of an
// updated replica, restoring the pre-update replica at OutPath.
type UpdateRemoveDataRequest struct {
	CommDNew     Commitment
	UpdatedRef   string
	UnsealedPath string
	OutPath      string
}

// UpdateProveRequest asks for a proof that an update was encoded
// correctly.
type UpdateProveRequest struct {
	CommROld Commitment
	CommRNew Commitment
	CommDNew Commitment
	CacheDir string
}

// UpdateVerifyInfo carries everything needed to verify an update proof.
type UpdateVerifyInfo struct {
	CommROld Commitment
	CommRNew Commitment
	CommDNew Commitment
	Proof    Proof
}

// Engine executes registered proofs. Every method receives the
// authorized Call naming the exact circuit variant; engines must fail
// on circuits they do not implement rather than guessing.
type Engine interface {
	// SealPreCommitPhase1 labels the replica and builds the data tree.
	SealPreCommitPhase1(ctx context.Context, call Call, req PreCommit1Request) (PreCommit1Output, error)
	// SealPreCommitPhase2 folds the replica tree and binds CommR.
	SealPreCommitPhase2(ctx context.Context, call Call, p1 PreCommit1Output, cacheDir, sealedRef string) (SealedCommitments, error)
	// SealCommitPhase1 derives challenges and opens the trees (vanilla
	// proofs).
	SealCommitPhase1(ctx context.Context, call Call, req Commit1Request) (Commit1Output, error)
	// SealCommitPhase2 compresses vanilla proofs into the final proof.
	SealCommitPhase2(ctx context.Context, call Call, c1 Commit1Output, prover ProverID, sector SectorID) (Proof, error)
	// VerifySeal checks a seal proof. A failed check returns false with
	// a nil error; errors are reserved for malformed inputs.
	VerifySeal(ctx context.Context, call Call, info SealVerifyInfo) (bool, error)

	// GenerateSynthProofs precomputes the synthetic vanilla proofs after
	// pre-commit so the interactive seed only selects among them.
	GenerateSynthProofs(ctx context.Context, call Call, req Commit1Request) error
	// Fauxrep seals an all-zeros committed-capacity sector cheaply.
	Fauxrep(ctx context.Context, call Call, prover ProverID, sector SectorID, cacheDir, sealedRef string) (Commitment, error)

	// Unseal decodes a byte range of original data into out.
	Unseal(ctx context.Context, call Call, out io.Writer, req UnsealRequest) error

	// GenerateVanillaProof opens one replica for the given randomness.
	GenerateVanillaProof(ctx context.Context, call Call, prover ProverID, randomness ChallengeSeed, replica PrivateReplica) (VanillaProof, error)
	// GeneratePoSt proves all replicas in one shot.
	GeneratePoSt(ctx context.Context, call Call, req PoStRequest) ([]Proof, error)
	// GeneratePoStWithVanilla assembles a PoSt from precomputed vanilla
	// proofs, one per replica in challenge order.
	GeneratePoStWithVanilla(ctx context.Context, call Call, prover ProverID, randomness ChallengeSeed, vanilla []VanillaProof) ([]Proof, error)
	// GenerateSinglePartitionPoSt proves one window partition from
	// precomputed vanilla proofs.
	GenerateSinglePartitionPoSt(ctx context.Context, call Call, prover ProverID, randomness ChallengeSeed, vanilla []VanillaProof, partition int) (Proof, error)
	// VerifyPoSt checks a PoSt against the public replica set.
	VerifyPoSt(ctx context.Context, call Call, info PoStVerifyInfo) (bool, error)

	// AggregateSealProofs folds seal proofs into one aggregate.
	AggregateSealProofs(ctx context.Context, call Call, req AggregateRequest) (Proof, error)
	// VerifyAggregateSealProofs checks an aggregate against the
	// per-sector public inputs.
	VerifyAggregateSealProofs(ctx context.Context, call Call, info AggregateVerifyInfo) (bool, error)

	// GeneratePieceCommitment computes CommP over a piece reader.
	GeneratePieceCommitment(ctx context.Context, call Call, piece io.Reader, size uint64) (Commitment, error)
	// ComputeCommD folds piece commitments into the sector CommD.
	ComputeCommD(ctx context.Context, call Call, pieces []PieceInfo) (Commitment, error)

	// UpdateEncode writes new deal data onto an existing replica.
	UpdateEncode(ctx context.Context, call Call, req UpdateRequest) (UpdateCommitments, error)
	// UpdateDecode recovers original data from an updated replica.
	UpdateDecode(ctx context.Context, call Call, req UpdateDecodeRequest) error
	// UpdateDecodeRange streams a byte range of the deal data into out.
	UpdateDecodeRange(ctx context.Context, call Call, out io.Writer, req UpdateDecodeRangeRequest) error
	// UpdateRemoveData restores the pre-update replica from an updated
	// replica and the deal data it encodes.
	UpdateRemoveData(ctx context.Context, call Call, req UpdateRemoveDataRequest) error
	// UpdateProve proves an update encoding.
	UpdateProve(ctx context.Context, call Call, req UpdateProveRequest) (Proof, error)
	// UpdateVerify checks an update proof.
	UpdateVerify(ctx context.Context, call Call, info UpdateVerifyInfo) (bool, error)

	// ClearCache drops phase artifacts no longer needed after commit.
	ClearCache(ctx context.Context, cacheDir string) error
}
