package devengine

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/MuriData/muri-sector-proofs/pkg/engine"
)

// aggregateProof is the wire form of a dev aggregate: the digest of
// each folded proof plus the running digest binding scheme, order and
// public inputs. Reordering any sector breaks the final digest.
type aggregateProof struct {
	Scheme       string   `json:"scheme"`
	ProofDigests [][]byte `json:"proof_digests"`
	Digest       []byte   `json:"digest"`
}

// AggregateSealProofs folds seal proofs into one order-sensitive
// digest chain.
func (e *Engine) AggregateSealProofs(ctx context.Context, call engine.Call, req engine.AggregateRequest) (engine.Proof, error) {
	if err := ctx.Err(); err != nil {
		return engine.Proof{}, err
	}
	if len(req.Proofs) != len(req.Infos) {
		return engine.Proof{}, engine.Errorf("aggregate", call.Circuit,
			"%d proofs but %d public inputs", len(req.Proofs), len(req.Infos))
	}

	digests := make([][]byte, len(req.Proofs))
	for i, p := range req.Proofs {
		d := digest(domainAggregate, []byte(p.Circuit), p.Bytes)
		digests[i] = d[:]
	}

	final := foldAggregate(req.Scheme.String(), req.Infos, digests)
	out, err := json.Marshal(aggregateProof{
		Scheme:       req.Scheme.String(),
		ProofDigests: digests,
		Digest:       final[:],
	})
	if err != nil {
		return engine.Proof{}, engine.Errorf("aggregate", call.Circuit, "marshal: %w", err)
	}

	e.log.Debug().
		Str("circuit", call.Circuit).
		Str("scheme", req.Scheme.String()).
		Int("proofs", len(req.Proofs)).
		Msg("seal proofs aggregated")
	return engine.Proof{Circuit: call.Circuit, Bytes: out}, nil
}

// VerifyAggregateSealProofs recomputes the digest chain from the
// public inputs and the carried per-proof digests.
func (e *Engine) VerifyAggregateSealProofs(ctx context.Context, call engine.Call, info engine.AggregateVerifyInfo) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if info.Aggregate.Circuit != call.Circuit {
		return false, nil
	}
	var agg aggregateProof
	if err := json.Unmarshal(info.Aggregate.Bytes, &agg); err != nil {
		return false, engine.Errorf("verify-aggregate", call.Circuit, "parse aggregate: %w", err)
	}
	if agg.Scheme != info.Scheme.String() || len(agg.ProofDigests) != len(info.Infos) {
		return false, nil
	}

	final := foldAggregate(info.Scheme.String(), info.Infos, agg.ProofDigests)
	return bytes.Equal(final[:], agg.Digest), nil
}

// foldAggregate chains scheme, per-sector public inputs and proof
// digests in order.
func foldAggregate(scheme string, infos []engine.AggregateSealInfo, proofDigests [][]byte) [32]byte {
	parts := make([][]byte, 0, 1+3*len(infos))
	parts = append(parts, []byte(scheme))
	for i := range infos {
		parts = append(parts, infos[i].CommR[:], infos[i].Seed[:], proofDigests[i])
	}
	return digest(domainAggregate, parts...)
}
