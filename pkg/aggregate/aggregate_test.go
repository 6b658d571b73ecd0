package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

// recordingEngine captures the aggregation requests the coordinator
// shapes, and answers with canned results.
type recordingEngine struct {
	engine.Engine

	lastAggregate engine.AggregateRequest
	lastVerify    engine.AggregateVerifyInfo
	verifyResult  bool
}

func (r *recordingEngine) AggregateSealProofs(ctx context.Context, call engine.Call, req engine.AggregateRequest) (engine.Proof, error) {
	r.lastAggregate = req
	return engine.Proof{Circuit: call.Circuit, Bytes: []byte("agg")}, nil
}

func (r *recordingEngine) VerifyAggregateSealProofs(ctx context.Context, call engine.Call, info engine.AggregateVerifyInfo) (bool, error) {
	r.lastVerify = info
	return r.verifyResult, nil
}

func testCall() engine.Call {
	p := registry.StackedDrg32GiBV1_1
	return engine.Call{
		Identity:   p.PorepID(),
		Circuit:    p.CircuitIdentifier(),
		SectorSize: p.SectorSize(),
	}
}

func makeBatch(call engine.Call, n int) ([]engine.AggregateSealInfo, []engine.Proof) {
	infos := make([]engine.AggregateSealInfo, n)
	proofs := make([]engine.Proof, n)
	for i := range infos {
		infos[i].CommR[0] = byte(i + 1)
		infos[i].Seed[0] = byte(i + 1)
		proofs[i] = engine.Proof{Circuit: call.Circuit, Bytes: []byte{byte(i)}}
	}
	return infos, proofs
}

func TestAggregatePadsToPowerOfTwo(t *testing.T) {
	eng := &recordingEngine{}
	c := New(eng, zerolog.Nop())
	call := testCall()
	infos, proofs := makeBatch(call, 5)

	if _, err := c.Aggregate(context.Background(), call, registry.SnarkPackV2, infos, proofs); err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if len(eng.lastAggregate.Proofs) != 8 {
		t.Fatalf("padded to %d proofs, want 8", len(eng.lastAggregate.Proofs))
	}
	if len(eng.lastAggregate.Infos) != 8 {
		t.Fatalf("padded to %d infos, want 8", len(eng.lastAggregate.Infos))
	}
	// Padding repeats the final entry.
	for i := 5; i < 8; i++ {
		if eng.lastAggregate.Infos[i] != infos[4] {
			t.Errorf("pad info %d is not the last real entry", i)
		}
		if string(eng.lastAggregate.Proofs[i].Bytes) != string(proofs[4].Bytes) {
			t.Errorf("pad proof %d is not the last real entry", i)
		}
	}
}

func TestVerifyAppliesSamePadding(t *testing.T) {
	eng := &recordingEngine{verifyResult: true}
	c := New(eng, zerolog.Nop())
	call := testCall()
	infos, _ := makeBatch(call, 3)

	ok, err := c.VerifyAggregate(context.Background(), call, registry.SnarkPackV2, infos,
		engine.Proof{Circuit: call.Circuit, Bytes: []byte("agg")})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("verify returned false")
	}
	if len(eng.lastVerify.Infos) != 4 {
		t.Fatalf("verifier padded to %d infos, want 4", len(eng.lastVerify.Infos))
	}
	if eng.lastVerify.Infos[3] != infos[2] {
		t.Error("verifier pad entry differs from prover padding rule")
	}
}

func TestAggregateSizeLimits(t *testing.T) {
	eng := &recordingEngine{}
	c := New(eng, zerolog.Nop())
	call := testCall()
	ctx := context.Background()

	// Below the minimum.
	infos, proofs := makeBatch(call, 1)
	if _, err := c.Aggregate(ctx, call, registry.SnarkPackV1, infos, proofs); !errors.Is(err, ErrAggregationSizeUnsupported) {
		t.Fatalf("expected size rejection for 1 proof, got %v", err)
	}

	// Above the scheme maximum: 1025 pads to 2048 > 1024 for V1.
	infos, proofs = makeBatch(call, 1025)
	if _, err := c.Aggregate(ctx, call, registry.SnarkPackV1, infos, proofs); !errors.Is(err, ErrAggregationSizeUnsupported) {
		t.Fatalf("expected size rejection above V1 maximum, got %v", err)
	}
	// The same batch fits V2.
	if _, err := c.Aggregate(ctx, call, registry.SnarkPackV2, infos, proofs); err != nil {
		t.Fatalf("batch within V2 limits rejected: %v", err)
	}
}

func TestAggregateRejectsMixedFamilies(t *testing.T) {
	eng := &recordingEngine{}
	c := New(eng, zerolog.Nop())
	call := testCall()
	infos, proofs := makeBatch(call, 2)
	proofs[1].Circuit = registry.StackedDrg64GiBV1_1.CircuitIdentifier()

	_, err := c.Aggregate(context.Background(), call, registry.SnarkPackV1, infos, proofs)
	if !errors.Is(err, ErrMixedProofFamily) {
		t.Fatalf("expected mixed family rejection, got %v", err)
	}
}

func TestAggregateRejectsMismatchedLengths(t *testing.T) {
	eng := &recordingEngine{}
	c := New(eng, zerolog.Nop())
	call := testCall()
	infos, proofs := makeBatch(call, 4)

	if _, err := c.Aggregate(context.Background(), call, registry.SnarkPackV1, infos[:3], proofs); err == nil {
		t.Fatal("expected rejection for mismatched lengths")
	}
}
