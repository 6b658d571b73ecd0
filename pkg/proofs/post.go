package proofs

import (
	"context"

	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

// GeneratePoSt proves possession of the given replicas under one
// randomness, returning one proof per partition.
func (d *Dispatcher) GeneratePoSt(ctx context.Context, p registry.PoStProof, req engine.PoStRequest) ([]engine.Proof, error) {
	call, err := d.postCall(p)
	if err != nil {
		return nil, err
	}
	if len(req.Replicas) == 0 {
		return nil, invalidInput("post over zero replicas")
	}
	if p.Type() == registry.PoStWinning && len(req.Replicas) != p.SectorCount() {
		return nil, invalidInput("%s challenges %d sectors, got %d", p, p.SectorCount(), len(req.Replicas))
	}

	d.log.Info().
		Str("circuit", call.Circuit).
		Int("replicas", len(req.Replicas)).
		Msg("generating post")
	out, err := d.eng.GeneratePoSt(ctx, call, req)
	return out, mapErr(CodeProofGenerationFailed, err)
}

// GenerateVanillaProof opens a single replica for later PoSt assembly.
func (d *Dispatcher) GenerateVanillaProof(ctx context.Context, p registry.PoStProof, prover engine.ProverID, randomness engine.ChallengeSeed, replica engine.PrivateReplica) (engine.VanillaProof, error) {
	call, err := d.postCall(p)
	if err != nil {
		return nil, err
	}
	out, err := d.eng.GenerateVanillaProof(ctx, call, prover, randomness, replica)
	return out, mapErr(CodeProofGenerationFailed, err)
}

// GeneratePoStWithVanilla assembles partition proofs from precomputed
// vanilla proofs.
func (d *Dispatcher) GeneratePoStWithVanilla(ctx context.Context, p registry.PoStProof, prover engine.ProverID, randomness engine.ChallengeSeed, vanilla []engine.VanillaProof) ([]engine.Proof, error) {
	call, err := d.postCall(p)
	if err != nil {
		return nil, err
	}
	if len(vanilla) == 0 {
		return nil, invalidInput("post over zero vanilla proofs")
	}
	out, err := d.eng.GeneratePoStWithVanilla(ctx, call, prover, randomness, vanilla)
	return out, mapErr(CodeProofGenerationFailed, err)
}

// GenerateSinglePartitionPoSt assembles one window partition proof
// from precomputed vanilla proofs.
func (d *Dispatcher) GenerateSinglePartitionPoSt(ctx context.Context, p registry.PoStProof, prover engine.ProverID, randomness engine.ChallengeSeed, vanilla []engine.VanillaProof, partition int) (engine.Proof, error) {
	call, err := d.postCall(p)
	if err != nil {
		return engine.Proof{}, err
	}
	if p.Type() != registry.PoStWindow {
		return engine.Proof{}, invalidInput("single-partition generation is a window post operation")
	}
	if partition < 0 {
		return engine.Proof{}, invalidInput("negative partition index %d", partition)
	}
	out, err := d.eng.GenerateSinglePartitionPoSt(ctx, call, prover, randomness, vanilla, partition)
	return out, mapErr(CodeProofGenerationFailed, err)
}

// VerifyPoSt checks a PoSt against the public replica set. A failed
// check returns (false, nil).
func (d *Dispatcher) VerifyPoSt(ctx context.Context, p registry.PoStProof, info engine.PoStVerifyInfo) (bool, error) {
	call, err := d.postCall(p)
	if err != nil {
		return false, err
	}
	if len(info.Replicas) == 0 || len(info.Proofs) == 0 {
		return false, invalidInput("post verification needs replicas and proofs")
	}
	ok, err := d.eng.VerifyPoSt(ctx, call, info)
	return ok, mapErr(CodeEngineError, err)
}
