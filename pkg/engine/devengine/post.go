package devengine

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/MuriData/muri-sector-proofs/config"
	"github.com/MuriData/muri-sector-proofs/pkg/crypto"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/merkle"
)

// postOpening is one challenged replica node and its path to CommRLast.
type postOpening struct {
	Index        uint64 `json:"index"`
	ReplicaChunk []byte `json:"replica_chunk"`
	ReplicaPath  path   `json:"replica_path"`
}

// vanillaPoSt is one sector's opening set. CommC and CommRLast are
// carried so the verifier can rebuild the CommR binding from the
// public commitment alone.
type vanillaPoSt struct {
	SectorID  uint64        `json:"sector_id"`
	CommR     []byte        `json:"comm_r"`
	CommC     []byte        `json:"comm_c"`
	CommRLast []byte        `json:"comm_r_last"`
	Openings  []postOpening `json:"openings"`
}

// partitionPoSt is the wire form of one PoSt partition proof.
type partitionPoSt struct {
	Partition int           `json:"partition"`
	Sectors   []vanillaPoSt `json:"sectors"`
}

// GenerateVanillaProof opens one replica at the challenge set derived
// from the PoSt randomness.
func (e *Engine) GenerateVanillaProof(ctx context.Context, call engine.Call, prover engine.ProverID, randomness engine.ChallengeSeed, replica engine.PrivateReplica) (engine.VanillaProof, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call.Challenges <= 0 {
		return nil, engine.Errorf("vanilla-post", call.Circuit, "call carries no challenge count")
	}

	replicaTree, err := loadTree(replica.CacheDir, replicaTreeFile)
	if err != nil {
		return nil, engine.Errorf("vanilla-post", call.Circuit, "%w", err)
	}
	var auxData aux
	if err := loadJSON(replica.CacheDir, auxFile, &auxData); err != nil {
		return nil, engine.Errorf("vanilla-post", call.Circuit, "%w", err)
	}

	challenges := deriveChallenges(domainPoStChallenge, call.Challenges, uint64(replicaTree.LeafCount()),
		prover[:], randomness[:], sectorIDBytes(replica.SectorID))

	openings := make([]postOpening, len(challenges))
	for i, idx := range challenges {
		chunk, err := readChunkAt(replica.SealedRef, idx)
		if err != nil {
			return nil, engine.Errorf("vanilla-post", call.Circuit, "%w", err)
		}
		p, err := replicaTree.Prove(int(idx))
		if err != nil {
			return nil, engine.Errorf("vanilla-post", call.Circuit, "open replica tree: %w", err)
		}
		openings[i] = postOpening{Index: idx, ReplicaChunk: chunk, ReplicaPath: pathFromProof(p)}
	}

	out, err := json.Marshal(vanillaPoSt{
		SectorID:  uint64(replica.SectorID),
		CommR:     replica.CommR[:],
		CommC:     auxData.CommC,
		CommRLast: auxData.CommRLast,
		Openings:  openings,
	})
	if err != nil {
		return nil, engine.Errorf("vanilla-post", call.Circuit, "marshal: %w", err)
	}
	return out, nil
}

// GeneratePoSt opens every replica and groups the openings into
// partition proofs.
func (e *Engine) GeneratePoSt(ctx context.Context, call engine.Call, req engine.PoStRequest) ([]engine.Proof, error) {
	vanilla := make([]engine.VanillaProof, len(req.Replicas))
	for i, replica := range req.Replicas {
		vp, err := e.GenerateVanillaProof(ctx, call, req.ProverID, req.Randomness, replica)
		if err != nil {
			return nil, err
		}
		vanilla[i] = vp
	}
	return e.GeneratePoStWithVanilla(ctx, call, req.ProverID, req.Randomness, vanilla)
}

// GeneratePoStWithVanilla assembles partition proofs from precomputed
// vanilla proofs, PartitionSectors sectors per partition.
func (e *Engine) GeneratePoStWithVanilla(ctx context.Context, call engine.Call, prover engine.ProverID, randomness engine.ChallengeSeed, vanilla []engine.VanillaProof) ([]engine.Proof, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call.PartitionSectors <= 0 {
		return nil, engine.Errorf("post", call.Circuit, "call carries no partition width")
	}
	if len(vanilla) == 0 {
		return nil, engine.Errorf("post", call.Circuit, "no vanilla proofs")
	}

	var proofs []engine.Proof
	for partition := 0; partition*call.PartitionSectors < len(vanilla); partition++ {
		proof, err := e.GenerateSinglePartitionPoSt(ctx, call, prover, randomness, vanilla, partition)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, proof)
	}

	e.log.Debug().
		Str("circuit", call.Circuit).
		Int("sectors", len(vanilla)).
		Int("partitions", len(proofs)).
		Msg("post assembled")
	return proofs, nil
}

// GenerateSinglePartitionPoSt assembles the proof for one partition of
// the vanilla proof set.
func (e *Engine) GenerateSinglePartitionPoSt(ctx context.Context, call engine.Call, prover engine.ProverID, randomness engine.ChallengeSeed, vanilla []engine.VanillaProof, partition int) (engine.Proof, error) {
	if err := ctx.Err(); err != nil {
		return engine.Proof{}, err
	}
	if call.PartitionSectors <= 0 {
		return engine.Proof{}, engine.Errorf("post", call.Circuit, "call carries no partition width")
	}
	start := partition * call.PartitionSectors
	if start < 0 || start >= len(vanilla) {
		return engine.Proof{}, engine.Errorf("post", call.Circuit, "partition %d out of range", partition)
	}
	end := start + call.PartitionSectors
	if end > len(vanilla) {
		end = len(vanilla)
	}

	sectors := make([]vanillaPoSt, 0, end-start)
	for _, vp := range vanilla[start:end] {
		var v vanillaPoSt
		if err := json.Unmarshal(vp, &v); err != nil {
			return engine.Proof{}, engine.Errorf("post", call.Circuit, "parse vanilla proof: %w", err)
		}
		sectors = append(sectors, v)
	}

	out, err := json.Marshal(partitionPoSt{Partition: partition, Sectors: sectors})
	if err != nil {
		return engine.Proof{}, engine.Errorf("post", call.Circuit, "marshal: %w", err)
	}
	return engine.Proof{Circuit: call.Circuit, Bytes: out}, nil
}

// VerifyPoSt checks partition proofs against the public replica set:
// sector order, CommR bindings, challenge derivation and openings.
func (e *Engine) VerifyPoSt(ctx context.Context, call engine.Call, info engine.PoStVerifyInfo) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if call.Challenges <= 0 || call.PartitionSectors <= 0 {
		return false, engine.Errorf("verify-post", call.Circuit, "call carries no post shape")
	}
	if len(info.Proofs) == 0 {
		return false, nil
	}

	leafCount := uint64(call.SectorSize) / config.NodeSize
	next := 0
	for pi, proof := range info.Proofs {
		if proof.Circuit != call.Circuit {
			return false, nil
		}
		var part partitionPoSt
		if err := json.Unmarshal(proof.Bytes, &part); err != nil {
			return false, engine.Errorf("verify-post", call.Circuit, "parse partition proof: %w", err)
		}
		if part.Partition != pi {
			return false, nil
		}
		for _, sec := range part.Sectors {
			if next >= len(info.Replicas) {
				return false, nil
			}
			public := info.Replicas[next]
			next++

			if sec.SectorID != uint64(public.SectorID) || !bytes.Equal(sec.CommR, public.CommR[:]) {
				return false, nil
			}
			ok, err := verifySectorOpenings(call, info.ProverID, info.Randomness, public, sec, leafCount)
			if err != nil || !ok {
				return ok, err
			}
		}
	}
	// Every public replica must have been covered.
	return next == len(info.Replicas), nil
}

func verifySectorOpenings(call engine.Call, prover engine.ProverID, randomness engine.ChallengeSeed, public engine.PublicReplica, sec vanillaPoSt, leafCount uint64) (bool, error) {
	commC, err := commitment(sec.CommC)
	if err != nil {
		return false, engine.Errorf("verify-post", call.Circuit, "%w", err)
	}
	commRLast, err := commitment(sec.CommRLast)
	if err != nil {
		return false, engine.Errorf("verify-post", call.Circuit, "%w", err)
	}

	// CommR binding from the carried components.
	commRElem := crypto.HashElements(
		crypto.ElementFromCommitment(commC),
		crypto.ElementFromCommitment(commRLast),
	)
	if crypto.CommitmentFromElement(commRElem) != public.CommR {
		return false, nil
	}

	want := deriveChallenges(domainPoStChallenge, call.Challenges, leafCount,
		prover[:], randomness[:], sectorIDBytes(public.SectorID))
	if len(want) != len(sec.Openings) {
		return false, nil
	}

	replicaRoot := crypto.ElementFromCommitment(commRLast)
	for i, o := range sec.Openings {
		if o.Index != want[i] || len(o.ReplicaChunk) != config.NodeSize {
			return false, nil
		}
		if !merkle.VerifyProof(crypto.HashLeaf(o.ReplicaChunk), o.ReplicaPath.proof(), replicaRoot) {
			return false, nil
		}
	}
	return true, nil
}

