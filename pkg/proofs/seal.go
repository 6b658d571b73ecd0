package proofs

import (
	"context"
	"fmt"
	"io"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

// SealPreCommitPhase1 runs the first sealing phase for the given
// registered proof.
func (d *Dispatcher) SealPreCommitPhase1(ctx context.Context, p registry.SealProof, req engine.PreCommit1Request) (engine.PreCommit1Output, error) {
	call, err := d.sealCall(p)
	if err != nil {
		return nil, err
	}
	if req.UnsealedPath == "" || req.CacheDir == "" {
		return nil, invalidInput("pre-commit phase 1 needs unsealed data and a cache directory")
	}

	d.log.Info().
		Str("circuit", call.Circuit).
		Uint64("sector", uint64(req.SectorID)).
		Msg("seal pre-commit phase 1")
	out, err := d.eng.SealPreCommitPhase1(ctx, call, req)
	return out, mapErr(CodeSealFailed, err)
}

// SealPreCommitPhase2 finishes pre-commit and returns the sector
// commitments.
func (d *Dispatcher) SealPreCommitPhase2(ctx context.Context, p registry.SealProof, p1 engine.PreCommit1Output, cacheDir, sealedRef string) (engine.SealedCommitments, error) {
	call, err := d.sealCall(p)
	if err != nil {
		return engine.SealedCommitments{}, err
	}
	if len(p1) == 0 {
		return engine.SealedCommitments{}, invalidInput("empty phase 1 output")
	}

	out, err := d.eng.SealPreCommitPhase2(ctx, call, p1, cacheDir, sealedRef)
	return out, mapErr(CodeSealFailed, err)
}

// SealCommitPhase1 produces the vanilla-proof handoff for the commit
// prover.
func (d *Dispatcher) SealCommitPhase1(ctx context.Context, p registry.SealProof, req engine.Commit1Request) (engine.Commit1Output, error) {
	call, err := d.sealCall(p)
	if err != nil {
		return nil, err
	}
	out, err := d.eng.SealCommitPhase1(ctx, call, req)
	return out, mapErr(CodeProofGenerationFailed, err)
}

// SealCommitPhase2 produces the final seal proof.
func (d *Dispatcher) SealCommitPhase2(ctx context.Context, p registry.SealProof, c1 engine.Commit1Output, prover engine.ProverID, sec engine.SectorID) (engine.Proof, error) {
	call, err := d.sealCall(p)
	if err != nil {
		return engine.Proof{}, err
	}
	if len(c1) == 0 {
		return engine.Proof{}, invalidInput("empty commit phase 1 output")
	}

	d.log.Info().
		Str("circuit", call.Circuit).
		Uint64("sector", uint64(sec)).
		Msg("seal commit phase 2")
	out, err := d.eng.SealCommitPhase2(ctx, call, c1, prover, sec)
	return out, mapErr(CodeProofGenerationFailed, err)
}

// VerifySeal checks a seal proof. A proof that fails verification
// returns (false, nil); errors are reserved for malformed inputs and
// backend failures.
func (d *Dispatcher) VerifySeal(ctx context.Context, p registry.SealProof, info engine.SealVerifyInfo) (bool, error) {
	call, err := d.sealCall(p)
	if err != nil {
		return false, err
	}
	ok, err := d.eng.VerifySeal(ctx, call, info)
	return ok, mapErr(CodeEngineError, err)
}

// GenerateSynthProofs precomputes the synthetic vanilla proofs for a
// sector sealed under a synthetic-porep variant.
func (d *Dispatcher) GenerateSynthProofs(ctx context.Context, p registry.SealProof, req engine.Commit1Request) error {
	call, err := d.sealCall(p)
	if err != nil {
		return err
	}
	return mapErr(CodeProofGenerationFailed, d.eng.GenerateSynthProofs(ctx, call, req))
}

// Fauxrep seals an all-zeros committed-capacity sector.
func (d *Dispatcher) Fauxrep(ctx context.Context, p registry.SealProof, prover engine.ProverID, sec engine.SectorID, cacheDir, sealedRef string) (engine.Commitment, error) {
	call, err := d.sealCall(p)
	if err != nil {
		return engine.Commitment{}, err
	}
	out, err := d.eng.Fauxrep(ctx, call, prover, sec, cacheDir, sealedRef)
	return out, mapErr(CodeSealFailed, err)
}

// Unseal decodes a byte range of original sector data into out.
func (d *Dispatcher) Unseal(ctx context.Context, p registry.SealProof, out io.Writer, req engine.UnsealRequest) error {
	call, err := d.sealCall(p)
	if err != nil {
		return err
	}
	if out == nil {
		return invalidInput("nil unseal output writer")
	}
	if req.Size == 0 {
		return invalidInput("zero-length unseal range")
	}
	return mapErr(CodeEngineError, d.eng.Unseal(ctx, call, out, req))
}

// GeneratePieceCommitment computes CommP over a piece reader.
func (d *Dispatcher) GeneratePieceCommitment(ctx context.Context, p registry.SealProof, piece io.Reader, size uint64) (engine.Commitment, error) {
	call, err := d.sealCall(p)
	if err != nil {
		return engine.Commitment{}, err
	}
	if piece == nil || size == 0 {
		return engine.Commitment{}, invalidInput("piece reader and size are required")
	}
	out, err := d.eng.GeneratePieceCommitment(ctx, call, piece, size)
	return out, mapErr(CodeEngineError, err)
}

// ComputeCommD folds piece commitments into the sector data
// commitment.
func (d *Dispatcher) ComputeCommD(ctx context.Context, p registry.SealProof, pieces []engine.PieceInfo) (engine.Commitment, error) {
	call, err := d.sealCall(p)
	if err != nil {
		return engine.Commitment{}, err
	}
	out, err := d.eng.ComputeCommD(ctx, call, pieces)
	return out, mapErr(CodeEngineError, err)
}

// ClearCache drops sealing artifacts that are no longer needed once a
// sector is committed.
func (d *Dispatcher) ClearCache(ctx context.Context, cacheDir string) error {
	if cacheDir == "" {
		return invalidInput("empty cache directory")
	}
	return mapErr(CodeEngineError, d.eng.ClearCache(ctx, cacheDir))
}

// AggregateSealProofs folds a batch of seal proofs for one registered
// proof into a single aggregate. The aggregation feature must be legal
// at the dispatcher's API version.
func (d *Dispatcher) AggregateSealProofs(ctx context.Context, scheme registry.AggregationProof, p registry.SealProof, infos []engine.AggregateSealInfo, sealProofs []engine.Proof) (engine.Proof, error) {
	call, err := d.sealCall(p, apiver.FeatureAggregation)
	if err != nil {
		return engine.Proof{}, err
	}
	if !d.ver.AtLeast(scheme.Version()) {
		return engine.Proof{}, &CodedError{
			Code:    CodeVersionError,
			Message: fmt.Sprintf("scheme %s requires api version %s, dispatcher runs %s", scheme, scheme.Version(), d.ver),
		}
	}
	out, err := d.agg.Aggregate(ctx, call, scheme, infos, sealProofs)
	return out, mapErr(CodeProofGenerationFailed, err)
}

// VerifyAggregateSealProofs checks an aggregate seal proof.
func (d *Dispatcher) VerifyAggregateSealProofs(ctx context.Context, scheme registry.AggregationProof, p registry.SealProof, infos []engine.AggregateSealInfo, aggregateProof engine.Proof) (bool, error) {
	call, err := d.sealCall(p, apiver.FeatureAggregation)
	if err != nil {
		return false, err
	}
	ok, err := d.agg.VerifyAggregate(ctx, call, scheme, infos, aggregateProof)
	return ok, mapErr(CodeEngineError, err)
}
