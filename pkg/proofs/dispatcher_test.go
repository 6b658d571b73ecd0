package proofs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

// fakeEngine records whether the dispatcher reached the backend and
// answers with canned results. Operations a test does not exercise
// panic through the embedded nil interface.
type fakeEngine struct {
	engine.Engine

	called     bool
	lastCall   engine.Call
	sealResult bool
	sealErr    error
	p1Err      error
}

func (f *fakeEngine) SealPreCommitPhase1(ctx context.Context, call engine.Call, req engine.PreCommit1Request) (engine.PreCommit1Output, error) {
	f.called = true
	f.lastCall = call
	if f.p1Err != nil {
		return nil, f.p1Err
	}
	return engine.PreCommit1Output("p1"), nil
}

func (f *fakeEngine) VerifySeal(ctx context.Context, call engine.Call, info engine.SealVerifyInfo) (bool, error) {
	f.called = true
	f.lastCall = call
	return f.sealResult, f.sealErr
}

func (f *fakeEngine) AggregateSealProofs(ctx context.Context, call engine.Call, req engine.AggregateRequest) (engine.Proof, error) {
	f.called = true
	f.lastCall = call
	return engine.Proof{Circuit: call.Circuit}, nil
}

func codeOf(t *testing.T, err error) ErrorCode {
	t.Helper()
	var coded *CodedError
	if !errors.As(err, &coded) {
		t.Fatalf("error is not a CodedError: %v", err)
	}
	return coded.Code
}

func TestAuthorizationPrecedesEngine(t *testing.T) {
	eng := &fakeEngine{}
	// Aggregation is a 1.1 feature; a 1.0 dispatcher must reject it
	// before touching the backend.
	d := New(eng, apiver.V1_0_0, zerolog.Nop())

	infos := make([]engine.AggregateSealInfo, 2)
	proofs := []engine.Proof{
		{Circuit: registry.StackedDrg32GiBV1.CircuitIdentifier()},
		{Circuit: registry.StackedDrg32GiBV1.CircuitIdentifier()},
	}
	_, err := d.AggregateSealProofs(context.Background(), registry.SnarkPackV1,
		registry.StackedDrg32GiBV1, infos, proofs)
	if err == nil {
		t.Fatal("expected version rejection")
	}
	if got := codeOf(t, err); got != CodeVersionError {
		t.Fatalf("code = %s, want %s", got, CodeVersionError)
	}
	if eng.called {
		t.Fatal("engine was invoked despite failed authorization")
	}
}

func TestSyntheticBelowSectorFloor(t *testing.T) {
	eng := &fakeEngine{}
	d := New(eng, apiver.V1_2_0, zerolog.Nop())

	_, err := d.SealPreCommitPhase1(context.Background(),
		registry.StackedDrg2KiBV1_1_Feat_SyntheticPoRep,
		engine.PreCommit1Request{UnsealedPath: "u", CacheDir: "c"})
	if err == nil {
		t.Fatal("expected sector floor rejection")
	}
	if got := codeOf(t, err); got != CodeUnsupportedSectorSize {
		t.Fatalf("code = %s, want %s", got, CodeUnsupportedSectorSize)
	}
	if eng.called {
		t.Fatal("engine was invoked despite failed authorization")
	}
}

func TestProofBelowDispatcherVersion(t *testing.T) {
	eng := &fakeEngine{}
	d := New(eng, apiver.V1_0_0, zerolog.Nop())

	// A V1_1 proof cannot run on a 1.0 dispatcher.
	_, err := d.SealPreCommitPhase1(context.Background(), registry.StackedDrg32GiBV1_1,
		engine.PreCommit1Request{UnsealedPath: "u", CacheDir: "c"})
	if got := codeOf(t, err); got != CodeVersionError {
		t.Fatalf("code = %s, want %s", got, CodeVersionError)
	}
}

func TestUnknownProofRejected(t *testing.T) {
	eng := &fakeEngine{}
	d := New(eng, apiver.V1_2_0, zerolog.Nop())

	_, err := d.SealPreCommitPhase1(context.Background(), registry.SealProof(99),
		engine.PreCommit1Request{UnsealedPath: "u", CacheDir: "c"})
	if got := codeOf(t, err); got != CodeInvalidRegisteredProof {
		t.Fatalf("code = %s, want %s", got, CodeInvalidRegisteredProof)
	}
}

func TestVerifyFalseIsNotAnError(t *testing.T) {
	eng := &fakeEngine{sealResult: false}
	d := New(eng, apiver.V1_2_0, zerolog.Nop())

	ok, err := d.VerifySeal(context.Background(), registry.StackedDrg32GiBV1_1, engine.SealVerifyInfo{
		Proof: engine.Proof{Circuit: registry.StackedDrg32GiBV1_1.CircuitIdentifier(), Bytes: []byte("x")},
	})
	if err != nil {
		t.Fatalf("failed verification must not be an error: %v", err)
	}
	if ok {
		t.Fatal("expected false verification result")
	}
}

func TestEngineFailureMapsToOperationCode(t *testing.T) {
	eng := &fakeEngine{p1Err: engine.Errorf("pre-commit1", "c", "disk on fire")}
	d := New(eng, apiver.V1_2_0, zerolog.Nop())

	_, err := d.SealPreCommitPhase1(context.Background(), registry.StackedDrg32GiBV1_1,
		engine.PreCommit1Request{UnsealedPath: "u", CacheDir: "c"})
	if got := codeOf(t, err); got != CodeSealFailed {
		t.Fatalf("code = %s, want %s", got, CodeSealFailed)
	}
	// The backend cause stays reachable through the coded wrapper.
	var eerr *engine.Error
	if !errors.As(err, &eerr) {
		t.Fatal("engine error lost in wrapping")
	}
}

func TestCallCarriesAuthorizedShape(t *testing.T) {
	eng := &fakeEngine{sealResult: true}
	d := New(eng, apiver.V1_2_0, zerolog.Nop())

	p := registry.StackedDrg32GiBV1_2_Feat_NonInteractivePoRep
	if _, err := d.VerifySeal(context.Background(), p, engine.SealVerifyInfo{
		Proof: engine.Proof{Circuit: p.CircuitIdentifier(), Bytes: []byte("x")},
	}); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if eng.lastCall.Identity != p.PorepID() {
		t.Error("call identity does not match the registered proof")
	}
	if eng.lastCall.Circuit != p.CircuitIdentifier() {
		t.Error("call circuit does not match the registered proof")
	}
	if eng.lastCall.SectorSize != p.SectorSize() {
		t.Error("call sector size does not match the registered proof")
	}
	if !eng.lastCall.HasFeature(apiver.FeatureNonInteractivePoRep) {
		t.Error("intrinsic feature missing from the authorized call")
	}
}

func TestInvalidInputs(t *testing.T) {
	eng := &fakeEngine{}
	d := New(eng, apiver.V1_2_0, zerolog.Nop())
	ctx := context.Background()

	_, err := d.SealPreCommitPhase1(ctx, registry.StackedDrg32GiBV1_1, engine.PreCommit1Request{})
	if got := codeOf(t, err); got != CodeInvalidInput {
		t.Fatalf("code = %s, want %s", got, CodeInvalidInput)
	}

	err = d.Unseal(ctx, registry.StackedDrg32GiBV1_1, nil, engine.UnsealRequest{Size: 1})
	if got := codeOf(t, err); got != CodeInvalidInput {
		t.Fatalf("code = %s, want %s", got, CodeInvalidInput)
	}

	_, err = d.GeneratePoSt(ctx, registry.StackedDrgWindow32GiBV1_2, engine.PoStRequest{})
	if got := codeOf(t, err); got != CodeInvalidInput {
		t.Fatalf("code = %s, want %s", got, CodeInvalidInput)
	}

	err = d.UpdateDecodeRange(ctx, registry.EmptySectorUpdate32GiBV1, nil, engine.UpdateDecodeRangeRequest{
		UpdatedRef: "u",
		SealedRef:  "s",
		Size:       1,
	})
	if got := codeOf(t, err); got != CodeInvalidInput {
		t.Fatalf("code = %s, want %s", got, CodeInvalidInput)
	}

	err = d.UpdateRemoveData(ctx, registry.EmptySectorUpdate32GiBV1, engine.UpdateRemoveDataRequest{})
	if got := codeOf(t, err); got != CodeInvalidInput {
		t.Fatalf("code = %s, want %s", got, CodeInvalidInput)
	}
}
