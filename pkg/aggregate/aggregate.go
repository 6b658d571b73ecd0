// Package aggregate validates and shapes batches of seal proofs before
// handing them to the engine's aggregation scheme. Batches are padded
// to a power of two by repeating the last entry, the same way on the
// prover and verifier side, so both fold identical input sets.
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

var (
	// ErrAggregationSizeUnsupported rejects batch sizes outside the
	// scheme's supported range.
	ErrAggregationSizeUnsupported = errors.New("unsupported aggregation size")
	// ErrMixedProofFamily rejects batches mixing proofs of different
	// circuits.
	ErrMixedProofFamily = errors.New("aggregate mixes proof families")
)

// MinProofCount is the smallest batch any scheme accepts.
const MinProofCount = 2

// Coordinator drives proof aggregation through an engine.
type Coordinator struct {
	eng engine.Engine
	log zerolog.Logger
}

// New returns a coordinator proving through eng.
func New(eng engine.Engine, log zerolog.Logger) *Coordinator {
	return &Coordinator{eng: eng, log: log.With().Str("component", "aggregate").Logger()}
}

// Aggregate folds the seal proofs into one aggregate under the given
// scheme. Infos run parallel to proofs. The batch is padded to the
// next power of two by repeating the last entry.
func (c *Coordinator) Aggregate(ctx context.Context, call engine.Call, scheme registry.AggregationProof, infos []engine.AggregateSealInfo, proofs []engine.Proof) (engine.Proof, error) {
	if len(proofs) != len(infos) {
		return engine.Proof{}, fmt.Errorf("%d proofs but %d public inputs", len(proofs), len(infos))
	}
	if err := checkBatchSize(scheme, len(proofs)); err != nil {
		return engine.Proof{}, err
	}
	for i, p := range proofs {
		if p.Circuit != call.Circuit {
			return engine.Proof{}, fmt.Errorf("proof %d is for circuit %q, batch is %q: %w",
				i, p.Circuit, call.Circuit, ErrMixedProofFamily)
		}
	}

	paddedInfos, paddedProofs := padBatch(infos, proofs)
	c.log.Debug().
		Str("scheme", scheme.String()).
		Int("proofs", len(proofs)).
		Int("padded", len(paddedProofs)).
		Msg("aggregating seal proofs")

	return c.eng.AggregateSealProofs(ctx, call, engine.AggregateRequest{
		Scheme: scheme,
		Infos:  paddedInfos,
		Proofs: paddedProofs,
	})
}

// VerifyAggregate checks an aggregate against the per-sector public
// inputs, applying the same padding the prover did.
func (c *Coordinator) VerifyAggregate(ctx context.Context, call engine.Call, scheme registry.AggregationProof, infos []engine.AggregateSealInfo, aggregate engine.Proof) (bool, error) {
	if err := checkBatchSize(scheme, len(infos)); err != nil {
		return false, err
	}

	padded, _ := padBatch(infos, nil)
	return c.eng.VerifyAggregateSealProofs(ctx, call, engine.AggregateVerifyInfo{
		Scheme:    scheme,
		Infos:     padded,
		Aggregate: aggregate,
	})
}

func checkBatchSize(scheme registry.AggregationProof, n int) error {
	if !scheme.Registered() {
		return fmt.Errorf("%w: unknown scheme %s", ErrAggregationSizeUnsupported, scheme)
	}
	if n < MinProofCount {
		return fmt.Errorf("%w: %d proofs, need at least %d", ErrAggregationSizeUnsupported, n, MinProofCount)
	}
	if padded := nextPowerOfTwo(n); padded > scheme.MaxProofCount() {
		return fmt.Errorf("%w: %d proofs pad to %d, %s accepts at most %d",
			ErrAggregationSizeUnsupported, n, padded, scheme, scheme.MaxProofCount())
	}
	return nil
}

// padBatch repeats the last entry until the count is a power of two.
// proofs may be nil on the verifier side.
func padBatch(infos []engine.AggregateSealInfo, proofs []engine.Proof) ([]engine.AggregateSealInfo, []engine.Proof) {
	target := nextPowerOfTwo(len(infos))
	outInfos := make([]engine.AggregateSealInfo, 0, target)
	outInfos = append(outInfos, infos...)
	for len(outInfos) < target {
		outInfos = append(outInfos, infos[len(infos)-1])
	}

	var outProofs []engine.Proof
	if proofs != nil {
		outProofs = make([]engine.Proof, 0, target)
		outProofs = append(outProofs, proofs...)
		for len(outProofs) < target {
			outProofs = append(outProofs, proofs[len(proofs)-1])
		}
	}
	return outInfos, outProofs
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
