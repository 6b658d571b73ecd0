// Package devengine is the insecure development backend. It keeps the
// full shape of the production pipeline (two-phase pre-commit and
// commit, vanilla proofs, synthetic and non-interactive challenge
// modes, PoSt partitions, aggregation, sector updates) but swaps the
// expensive primitives for cheap deterministic ones: replicas are
// XOR-encoded with a public keystream and proofs are Merkle openings
// of the commitment trees. Anyone can forge these proofs; never use
// this engine outside tests and local development.
package devengine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/MuriData/muri-sector-proofs/config"
	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/crypto"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/merkle"
)

// DefaultSealChallenges is the per-sector challenge count for dev seal
// proofs. Far below production counts; collisions with real parameters
// do not matter here.
const DefaultSealChallenges = 8

// Engine implements engine.Engine with deterministic fake proofs.
type Engine struct {
	log            zerolog.Logger
	sealChallenges int
}

var _ engine.Engine = (*Engine)(nil)

// New returns a development engine logging through log.
func New(log zerolog.Logger) *Engine {
	return &Engine{
		log:            log.With().Str("engine", "dev").Logger(),
		sealChallenges: DefaultSealChallenges,
	}
}

// path encodes a Merkle authentication path for the proof wire format.
type path struct {
	Siblings   []*big.Int `json:"siblings"`
	Directions []int      `json:"directions"`
}

func pathFromProof(p merkle.Proof) path {
	return path{Siblings: p.Siblings, Directions: p.Directions}
}

func (p path) proof() merkle.Proof {
	return merkle.Proof{Siblings: p.Siblings, Directions: p.Directions}
}

// sealOpening is one challenged node: the data and replica chunks plus
// their paths to CommD and CommRLast.
type sealOpening struct {
	Index        uint64 `json:"index"`
	DataChunk    []byte `json:"data_chunk"`
	ReplicaChunk []byte `json:"replica_chunk"`
	DataPath     path   `json:"data_path"`
	ReplicaPath  path   `json:"replica_path"`
}

// sealProof is the wire form of a dev seal proof.
type sealProof struct {
	CommC     []byte        `json:"comm_c"`
	CommRLast []byte        `json:"comm_r_last"`
	Openings  []sealOpening `json:"openings"`
}

// p1Output is the handoff between the pre-commit phases.
type p1Output struct {
	ProverID     []byte `json:"prover_id"`
	SectorID     uint64 `json:"sector_id"`
	Ticket       []byte `json:"ticket"`
	CommD        []byte `json:"comm_d"`
	UnsealedPath string `json:"unsealed_path"`
	CacheDir     string `json:"cache_dir"`
}

func (e *Engine) leafCount(call engine.Call) (int, error) {
	if call.SectorSize == 0 {
		return 0, engine.Errorf("leaf-count", call.Circuit, "call carries no sector size")
	}
	return int(uint64(call.SectorSize) / config.NodeSize), nil
}

// SealPreCommitPhase1 builds the data tree over the unsealed input and
// caches it for the later phases.
func (e *Engine) SealPreCommitPhase1(ctx context.Context, call engine.Call, req engine.PreCommit1Request) (engine.PreCommit1Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return nil, err
	}

	chunks, err := readChunks(req.UnsealedPath, leaves)
	if err != nil {
		return nil, engine.Errorf("pre-commit1", call.Circuit, "read unsealed data: %w", err)
	}
	dataTree, err := merkle.BuildTree(chunks, crypto.HashLeaf)
	if err != nil {
		return nil, engine.Errorf("pre-commit1", call.Circuit, "build data tree: %w", err)
	}
	if err := saveTree(req.CacheDir, dataTreeFile, dataTree); err != nil {
		return nil, engine.Errorf("pre-commit1", call.Circuit, "%w", err)
	}

	commD := crypto.CommitmentFromElement(dataTree.Root())
	e.log.Debug().
		Str("circuit", call.Circuit).
		Uint64("sector", uint64(req.SectorID)).
		Msg("pre-commit phase 1 done")

	out, err := json.Marshal(p1Output{
		ProverID:     req.ProverID[:],
		SectorID:     uint64(req.SectorID),
		Ticket:       req.Ticket[:],
		CommD:        commD[:],
		UnsealedPath: req.UnsealedPath,
		CacheDir:     req.CacheDir,
	})
	if err != nil {
		return nil, engine.Errorf("pre-commit1", call.Circuit, "marshal output: %w", err)
	}
	return out, nil
}

// SealPreCommitPhase2 labels the replica, builds its tree and binds
// CommR = H(CommC, CommRLast).
func (e *Engine) SealPreCommitPhase2(ctx context.Context, call engine.Call, p1 engine.PreCommit1Output, cacheDir, sealedRef string) (engine.SealedCommitments, error) {
	if err := ctx.Err(); err != nil {
		return engine.SealedCommitments{}, err
	}
	var in p1Output
	if err := json.Unmarshal(p1, &in); err != nil {
		return engine.SealedCommitments{}, engine.Errorf("pre-commit2", call.Circuit, "parse phase 1 output: %w", err)
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return engine.SealedCommitments{}, err
	}

	var prover engine.ProverID
	copy(prover[:], in.ProverID)
	var ticket engine.Ticket
	copy(ticket[:], in.Ticket)

	dataChunks, err := readChunks(in.UnsealedPath, leaves)
	if err != nil {
		return engine.SealedCommitments{}, engine.Errorf("pre-commit2", call.Circuit, "read unsealed data: %w", err)
	}

	replicaChunks, err := labelReplica(call, prover, engine.SectorID(in.SectorID), ticket, dataChunks)
	if err != nil {
		return engine.SealedCommitments{}, engine.Errorf("pre-commit2", call.Circuit, "%w", err)
	}
	if err := writeChunks(sealedRef, replicaChunks); err != nil {
		return engine.SealedCommitments{}, engine.Errorf("pre-commit2", call.Circuit, "%w", err)
	}

	replicaTree, err := merkle.BuildTree(replicaChunks, crypto.HashLeaf)
	if err != nil {
		return engine.SealedCommitments{}, engine.Errorf("pre-commit2", call.Circuit, "build replica tree: %w", err)
	}
	if err := saveTree(cacheDir, replicaTreeFile, replicaTree); err != nil {
		return engine.SealedCommitments{}, engine.Errorf("pre-commit2", call.Circuit, "%w", err)
	}

	commD, err := commitment(in.CommD)
	if err != nil {
		return engine.SealedCommitments{}, engine.Errorf("pre-commit2", call.Circuit, "%w", err)
	}
	commC, commR := bindCommR(call, ticket, replicaTree.Root())
	commRLast := crypto.CommitmentFromElement(replicaTree.Root())

	if err := saveJSON(cacheDir, auxFile, aux{
		CommR:     commR[:],
		CommD:     commD[:],
		CommC:     commC[:],
		CommRLast: commRLast[:],
	}); err != nil {
		return engine.SealedCommitments{}, engine.Errorf("pre-commit2", call.Circuit, "%w", err)
	}

	e.log.Debug().
		Str("circuit", call.Circuit).
		Uint64("sector", in.SectorID).
		Str("comm_r", fmt.Sprintf("%x", commR[:8])).
		Msg("pre-commit phase 2 done")

	return engine.SealedCommitments{CommR: commR, CommD: commD}, nil
}

// labelReplica XOR-encodes data chunks with the replica keystream.
func labelReplica(call engine.Call, prover engine.ProverID, sec engine.SectorID, ticket engine.Ticket, dataChunks [][]byte) ([][]byte, error) {
	ks := replicaKeystream(call.Identity, prover, sec, ticket)
	out := make([][]byte, len(dataChunks))
	buf := make([]byte, config.NodeSize)
	for i, chunk := range dataChunks {
		if _, err := io.ReadFull(ks, buf); err != nil {
			return nil, fmt.Errorf("keystream: %w", err)
		}
		labelled := make([]byte, config.NodeSize)
		for j := range labelled {
			labelled[j] = chunk[j] ^ buf[j]
		}
		out[i] = labelled
	}
	return out, nil
}

// bindCommR derives CommC from the proof identity and ticket, then
// binds it with the replica tree root into CommR.
func bindCommR(call engine.Call, ticket engine.Ticket, replicaRoot *big.Int) (commC, commR engine.Commitment) {
	commCElem := crypto.HashElements(
		crypto.BindCommitment(call.Identity),
		crypto.BindCommitment(ticket),
	)
	commRElem := crypto.HashElements(commCElem, replicaRoot)
	return crypto.CommitmentFromElement(commCElem), crypto.CommitmentFromElement(commRElem)
}

// sealChallengeSet derives the challenged leaf indices for a commit,
// honoring the synthetic and non-interactive modes.
func (e *Engine) sealChallengeSet(call engine.Call, prover engine.ProverID, sec engine.SectorID, ticket engine.Ticket, seed engine.ChallengeSeed, leafCount uint64) []uint64 {
	switch {
	case call.HasFeature(apiver.FeatureNonInteractivePoRep):
		// Non-interactive mode ignores the interactive seed entirely.
		return deriveChallenges(domainNIChallenge, e.sealChallenges, leafCount,
			call.Identity[:], prover[:], sectorIDBytes(sec), ticket[:])
	case call.HasFeature(apiver.FeatureSyntheticPoRep):
		synth := e.synthChallengeSet(call, prover, sec, ticket, leafCount)
		picks := deriveChallenges(domainSynthSelect, e.sealChallenges, uint64(len(synth)), seed[:])
		out := make([]uint64, len(picks))
		for i, p := range picks {
			out[i] = synth[p]
		}
		return out
	default:
		return deriveChallenges(domainSealChallenge, e.sealChallenges, leafCount,
			call.Identity[:], prover[:], sectorIDBytes(sec), ticket[:], seed[:])
	}
}

// synthChallengeSet derives the full synthetic challenge set, fixed at
// pre-commit time before any interactive seed exists.
func (e *Engine) synthChallengeSet(call engine.Call, prover engine.ProverID, sec engine.SectorID, ticket engine.Ticket, leafCount uint64) []uint64 {
	return deriveChallenges(domainSynthChallenge, config.SynthChallengeCount, leafCount,
		call.Identity[:], prover[:], sectorIDBytes(sec), ticket[:])
}

// openChallenges opens both trees at each challenged index.
func openChallenges(dataTree, replicaTree *merkle.Tree, unsealedPath, sealedRef string, challenges []uint64) ([]sealOpening, error) {
	openings := make([]sealOpening, len(challenges))
	for i, idx := range challenges {
		dataChunk, err := readChunkAt(unsealedPath, idx)
		if err != nil {
			return nil, err
		}
		replicaChunk, err := readChunkAt(sealedRef, idx)
		if err != nil {
			return nil, err
		}
		dataPath, err := dataTree.Prove(int(idx))
		if err != nil {
			return nil, fmt.Errorf("open data tree: %w", err)
		}
		replicaPath, err := replicaTree.Prove(int(idx))
		if err != nil {
			return nil, fmt.Errorf("open replica tree: %w", err)
		}
		openings[i] = sealOpening{
			Index:        idx,
			DataChunk:    dataChunk,
			ReplicaChunk: replicaChunk,
			DataPath:     pathFromProof(dataPath),
			ReplicaPath:  pathFromProof(replicaPath),
		}
	}
	return openings, nil
}

// GenerateSynthProofs precomputes openings for the whole synthetic
// challenge set and caches them, so the commit phase only selects.
func (e *Engine) GenerateSynthProofs(ctx context.Context, call engine.Call, req engine.Commit1Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !call.HasFeature(apiver.FeatureSyntheticPoRep) {
		return engine.Errorf("synth-proofs", call.Circuit, "call does not carry the synthetic porep feature")
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return err
	}

	dataTree, err := loadTree(req.CacheDir, dataTreeFile)
	if err != nil {
		return engine.Errorf("synth-proofs", call.Circuit, "%w", err)
	}
	replicaTree, err := loadTree(req.CacheDir, replicaTreeFile)
	if err != nil {
		return engine.Errorf("synth-proofs", call.Circuit, "%w", err)
	}

	challenges := e.synthChallengeSet(call, req.ProverID, req.SectorID, req.Ticket, uint64(leaves))
	openings, err := openChallenges(dataTree, replicaTree, req.UnsealedPath, req.SealedRef, challenges)
	if err != nil {
		return engine.Errorf("synth-proofs", call.Circuit, "%w", err)
	}
	if err := saveJSON(req.CacheDir, synthFile, openings); err != nil {
		return engine.Errorf("synth-proofs", call.Circuit, "%w", err)
	}

	e.log.Debug().
		Str("circuit", call.Circuit).
		Uint64("sector", uint64(req.SectorID)).
		Int("challenges", len(challenges)).
		Msg("synthetic proofs cached")
	return nil
}

// SealCommitPhase1 derives the challenge set and opens the trees.
func (e *Engine) SealCommitPhase1(ctx context.Context, call engine.Call, req engine.Commit1Request) (engine.Commit1Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return nil, err
	}

	challenges := e.sealChallengeSet(call, req.ProverID, req.SectorID, req.Ticket, req.Seed, uint64(leaves))

	var openings []sealOpening
	if call.HasFeature(apiver.FeatureSyntheticPoRep) {
		// Select from the precomputed synthetic set; the trees are not
		// reopened at commit time.
		var synth []sealOpening
		if err := loadJSON(req.CacheDir, synthFile, &synth); err != nil {
			return nil, engine.Errorf("commit1", call.Circuit, "synthetic proofs missing, run synth generation after pre-commit: %w", err)
		}
		byIndex := make(map[uint64]sealOpening, len(synth))
		for _, o := range synth {
			byIndex[o.Index] = o
		}
		openings = make([]sealOpening, len(challenges))
		for i, c := range challenges {
			o, ok := byIndex[c]
			if !ok {
				return nil, engine.Errorf("commit1", call.Circuit, "challenge %d missing from synthetic set", c)
			}
			openings[i] = o
		}
	} else {
		dataTree, err := loadTree(req.CacheDir, dataTreeFile)
		if err != nil {
			return nil, engine.Errorf("commit1", call.Circuit, "%w", err)
		}
		replicaTree, err := loadTree(req.CacheDir, replicaTreeFile)
		if err != nil {
			return nil, engine.Errorf("commit1", call.Circuit, "%w", err)
		}
		openings, err = openChallenges(dataTree, replicaTree, req.UnsealedPath, req.SealedRef, challenges)
		if err != nil {
			return nil, engine.Errorf("commit1", call.Circuit, "%w", err)
		}
	}

	var auxData aux
	if err := loadJSON(req.CacheDir, auxFile, &auxData); err != nil {
		return nil, engine.Errorf("commit1", call.Circuit, "%w", err)
	}

	out, err := json.Marshal(sealProof{
		CommC:     auxData.CommC,
		CommRLast: auxData.CommRLast,
		Openings:  openings,
	})
	if err != nil {
		return nil, engine.Errorf("commit1", call.Circuit, "marshal output: %w", err)
	}
	return out, nil
}

// SealCommitPhase2 finalizes the proof. The dev engine's vanilla
// openings already are the proof, so this phase only revalidates and
// tags them.
func (e *Engine) SealCommitPhase2(ctx context.Context, call engine.Call, c1 engine.Commit1Output, prover engine.ProverID, sec engine.SectorID) (engine.Proof, error) {
	if err := ctx.Err(); err != nil {
		return engine.Proof{}, err
	}
	var sp sealProof
	if err := json.Unmarshal(c1, &sp); err != nil {
		return engine.Proof{}, engine.Errorf("commit2", call.Circuit, "parse phase 1 output: %w", err)
	}
	if len(sp.Openings) == 0 {
		return engine.Proof{}, engine.Errorf("commit2", call.Circuit, "no openings in phase 1 output")
	}

	e.log.Debug().
		Str("circuit", call.Circuit).
		Uint64("sector", uint64(sec)).
		Int("openings", len(sp.Openings)).
		Msg("commit phase 2 done")

	return engine.Proof{Circuit: call.Circuit, Bytes: c1}, nil
}

// VerifySeal checks a dev seal proof: challenge derivation, both tree
// openings, the replica labelling relation and the CommR binding.
func (e *Engine) VerifySeal(ctx context.Context, call engine.Call, info engine.SealVerifyInfo) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if info.Proof.Circuit != call.Circuit {
		return false, nil
	}
	var sp sealProof
	if err := json.Unmarshal(info.Proof.Bytes, &sp); err != nil {
		return false, engine.Errorf("verify-seal", call.Circuit, "parse proof: %w", err)
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return false, err
	}

	commC, err := commitment(sp.CommC)
	if err != nil {
		return false, engine.Errorf("verify-seal", call.Circuit, "%w", err)
	}
	commRLast, err := commitment(sp.CommRLast)
	if err != nil {
		return false, engine.Errorf("verify-seal", call.Circuit, "%w", err)
	}

	// CommR must bind the carried CommC and CommRLast.
	commRElem := crypto.HashElements(
		crypto.ElementFromCommitment(commC),
		crypto.ElementFromCommitment(commRLast),
	)
	if crypto.CommitmentFromElement(commRElem) != info.CommR {
		return false, nil
	}

	// The challenge set must match the public randomness.
	sp2 := info.Sector
	want := e.sealChallengeSet(call, sp2.ProverID, sp2.SectorID, sp2.Ticket, sp2.Seed, uint64(leaves))
	if len(want) != len(sp.Openings) {
		return false, nil
	}

	dataRoot := crypto.ElementFromCommitment(info.CommD)
	replicaRoot := crypto.ElementFromCommitment(commRLast)
	ks := replicaKeystream(call.Identity, sp2.ProverID, sp2.SectorID, sp2.Ticket)
	buf := make([]byte, config.NodeSize)

	for i, o := range sp.Openings {
		if o.Index != want[i] || o.Index >= uint64(leaves) {
			return false, nil
		}
		if len(o.DataChunk) != config.NodeSize || len(o.ReplicaChunk) != config.NodeSize {
			return false, nil
		}
		if !merkle.VerifyProof(crypto.HashLeaf(o.DataChunk), o.DataPath.proof(), dataRoot) {
			return false, nil
		}
		if !merkle.VerifyProof(crypto.HashLeaf(o.ReplicaChunk), o.ReplicaPath.proof(), replicaRoot) {
			return false, nil
		}
		// Labelling relation: replica = data XOR keystream at the
		// challenged node.
		if _, err := ks.Seek(int64(o.Index)*config.NodeSize, io.SeekStart); err != nil {
			return false, engine.Errorf("verify-seal", call.Circuit, "keystream seek: %w", err)
		}
		if _, err := io.ReadFull(ks, buf); err != nil {
			return false, engine.Errorf("verify-seal", call.Circuit, "keystream read: %w", err)
		}
		for j := range buf {
			if o.ReplicaChunk[j] != o.DataChunk[j]^buf[j] {
				return false, nil
			}
		}
	}

	return true, nil
}

// Fauxrep seals an all-zeros committed-capacity sector: the replica is
// the bare keystream.
func (e *Engine) Fauxrep(ctx context.Context, call engine.Call, prover engine.ProverID, sec engine.SectorID, cacheDir, sealedRef string) (engine.Commitment, error) {
	if err := ctx.Err(); err != nil {
		return engine.Commitment{}, err
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return engine.Commitment{}, err
	}

	zeroChunks := make([][]byte, leaves)
	for i := range zeroChunks {
		zeroChunks[i] = make([]byte, config.NodeSize)
	}
	dataTree, err := merkle.BuildTree(zeroChunks, crypto.HashLeaf)
	if err != nil {
		return engine.Commitment{}, engine.Errorf("fauxrep", call.Circuit, "build data tree: %w", err)
	}
	if err := saveTree(cacheDir, dataTreeFile, dataTree); err != nil {
		return engine.Commitment{}, engine.Errorf("fauxrep", call.Circuit, "%w", err)
	}

	// Committed-capacity sectors use a zero ticket.
	var ticket engine.Ticket
	replicaChunks, err := labelReplica(call, prover, sec, ticket, zeroChunks)
	if err != nil {
		return engine.Commitment{}, engine.Errorf("fauxrep", call.Circuit, "%w", err)
	}
	if err := writeChunks(sealedRef, replicaChunks); err != nil {
		return engine.Commitment{}, engine.Errorf("fauxrep", call.Circuit, "%w", err)
	}
	replicaTree, err := merkle.BuildTree(replicaChunks, crypto.HashLeaf)
	if err != nil {
		return engine.Commitment{}, engine.Errorf("fauxrep", call.Circuit, "build replica tree: %w", err)
	}
	if err := saveTree(cacheDir, replicaTreeFile, replicaTree); err != nil {
		return engine.Commitment{}, engine.Errorf("fauxrep", call.Circuit, "%w", err)
	}

	commD := crypto.CommitmentFromElement(dataTree.Root())
	commC, commR := bindCommR(call, ticket, replicaTree.Root())
	commRLast := crypto.CommitmentFromElement(replicaTree.Root())
	if err := saveJSON(cacheDir, auxFile, aux{
		CommR:     commR[:],
		CommD:     commD[:],
		CommC:     commC[:],
		CommRLast: commRLast[:],
	}); err != nil {
		return engine.Commitment{}, engine.Errorf("fauxrep", call.Circuit, "%w", err)
	}

	return commR, nil
}

// Unseal streams a decoded byte range of the original data into out.
// The keystream is seekable, so memory stays constant regardless of
// the requested range.
func (e *Engine) Unseal(ctx context.Context, call engine.Call, out io.Writer, req engine.UnsealRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Checked in two halves so an adversarial offset+size cannot wrap
	// around uint64.
	if size := uint64(call.SectorSize); size != 0 && (req.Offset > size || req.Size > size-req.Offset) {
		return engine.Errorf("unseal", call.Circuit, "range at offset %d of %d bytes exceeds sector size %d",
			req.Offset, req.Size, size)
	}

	f, err := os.Open(req.SealedRef)
	if err != nil {
		return engine.Errorf("unseal", call.Circuit, "open replica: %w", err)
	}
	defer f.Close()
	if _, err := f.Seek(int64(req.Offset), io.SeekStart); err != nil {
		return engine.Errorf("unseal", call.Circuit, "seek replica: %w", err)
	}

	ks := replicaKeystream(call.Identity, req.ProverID, req.SectorID, req.Ticket)
	if _, err := ks.Seek(int64(req.Offset), io.SeekStart); err != nil {
		return engine.Errorf("unseal", call.Circuit, "seek keystream: %w", err)
	}

	remaining := req.Size
	sealed := make([]byte, 64<<10)
	stream := make([]byte, 64<<10)
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := uint64(len(sealed))
		if n > remaining {
			n = remaining
		}
		// Short replica files decode as zero-padded data.
		read, err := io.ReadFull(f, sealed[:n])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			for i := read; i < int(n); i++ {
				sealed[i] = 0
			}
		} else if err != nil {
			return engine.Errorf("unseal", call.Circuit, "read replica: %w", err)
		}
		if _, err := io.ReadFull(ks, stream[:n]); err != nil {
			return engine.Errorf("unseal", call.Circuit, "keystream: %w", err)
		}
		for i := 0; i < int(n); i++ {
			sealed[i] ^= stream[i]
		}
		if _, err := out.Write(sealed[:n]); err != nil {
			return engine.Errorf("unseal", call.Circuit, "write output: %w", err)
		}
		remaining -= n
	}
	return nil
}

// ClearCache drops the tree and synthetic-proof artifacts that are no
// longer needed once a sector is committed. The aux commitments stay.
func (e *Engine) ClearCache(ctx context.Context, cacheDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, name := range []string{dataTreeFile, synthFile, updateDataTreeFile} {
		if err := removeIfPresent(cacheDir, name); err != nil {
			return err
		}
	}
	return nil
}

func removeIfPresent(dir, name string) error {
	err := os.Remove(filepath.Join(dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
