package policy

import (
	"errors"
	"testing"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// fakeDescriptor lets tests exercise the policy without depending on
// which variants the registry publishes.
type fakeDescriptor struct {
	version apiver.Version
	size    sector.Size
	feats   []apiver.Feature
	circuit string
}

func (d fakeDescriptor) Version() apiver.Version    { return d.version }
func (d fakeDescriptor) SectorSize() sector.Size    { return d.size }
func (d fakeDescriptor) Features() []apiver.Feature { return d.feats }
func (d fakeDescriptor) CircuitIdentifier() string  { return d.circuit }

func authorize(t *testing.T, p *Policy, d Descriptor, v apiver.Version, feats ...apiver.Feature) *AuthorizedCall {
	t.Helper()
	call, err := p.Authorize(d, v, feats...)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	return call
}

func TestAuthorizeVersionFloor(t *testing.T) {
	p := Default()
	d := fakeDescriptor{version: apiver.V1_1_0, size: sector.Size32GiB, circuit: "test-circuit"}

	authorize(t, p, d, apiver.V1_1_0)
	authorize(t, p, d, apiver.V1_2_0)

	_, err := p.Authorize(d, apiver.V1_0_0)
	var verr *VersionError
	if !errors.As(err, &verr) {
		t.Fatalf("expected VersionError, got %v", err)
	}
	if verr.Need != apiver.V1_1_0 {
		t.Errorf("need = %s, want %s", verr.Need, apiver.V1_1_0)
	}
}

// A feature introduced at version v must stay legal at every later
// version.
func TestFeatureMonotonicity(t *testing.T) {
	p := Default()
	versions := []apiver.Version{apiver.V1_0_0, apiver.V1_1_0, apiver.V1_2_0}
	feats := []apiver.Feature{
		apiver.FeatureAggregation,
		apiver.FeatureSyntheticPoRep,
		apiver.FeatureNonInteractivePoRep,
		apiver.FeatureFixedRowsToDiscard,
	}

	for _, f := range feats {
		intro, ok := p.IntroducedAt(f)
		if !ok {
			t.Fatalf("feature %s is not in the table", f)
		}
		d := fakeDescriptor{version: apiver.V1_0_0, size: sector.Size32GiB, circuit: "test-circuit"}
		for _, v := range versions {
			_, err := p.Authorize(d, v, f)
			if v.AtLeast(intro) && err != nil {
				t.Errorf("feature %s at %s: unexpected rejection: %v", f, v, err)
			}
			if !v.AtLeast(intro) && err == nil {
				t.Errorf("feature %s at %s: expected rejection before %s", f, v, intro)
			}
		}
	}
}

func TestAuthorizeSectorFloor(t *testing.T) {
	p := Default()
	small := fakeDescriptor{version: apiver.V1_0_0, size: sector.Size2KiB, circuit: "small"}

	_, err := p.Authorize(small, apiver.V1_2_0, apiver.FeatureSyntheticPoRep)
	if !errors.Is(err, ErrFeatureSectorFloor) {
		t.Fatalf("expected sector floor rejection, got %v", err)
	}
	_, err = p.Authorize(small, apiver.V1_1_0, apiver.FeatureAggregation)
	if !errors.Is(err, ErrFeatureSectorFloor) {
		t.Fatalf("expected sector floor rejection for aggregation, got %v", err)
	}

	big := fakeDescriptor{version: apiver.V1_0_0, size: sector.Size8MiB, circuit: "big"}
	authorize(t, p, big, apiver.V1_2_0, apiver.FeatureSyntheticPoRep)
}

func TestAuthorizeConflicts(t *testing.T) {
	p := Default()
	d := fakeDescriptor{version: apiver.V1_0_0, size: sector.Size32GiB, circuit: "test-circuit"}

	_, err := p.Authorize(d, apiver.V1_2_0,
		apiver.FeatureSyntheticPoRep, apiver.FeatureNonInteractivePoRep)
	var cerr *FeatureConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected FeatureConflictError, got %v", err)
	}

	// Intrinsic descriptor features join the conflict check too.
	ni := fakeDescriptor{
		version: apiver.V1_2_0,
		size:    sector.Size32GiB,
		feats:   []apiver.Feature{apiver.FeatureNonInteractivePoRep},
		circuit: "ni-circuit",
	}
	if _, err := p.Authorize(ni, apiver.V1_2_0, apiver.FeatureSyntheticPoRep); !errors.As(err, &cerr) {
		t.Fatalf("expected FeatureConflictError via intrinsic features, got %v", err)
	}
}

func TestAuthorizeMergesIntrinsicFeatures(t *testing.T) {
	p := Default()
	seal, err := registry.ResolveSeal(sector.Size32GiB, apiver.V1_2_0, apiver.FeatureSyntheticPoRep)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	call := authorize(t, p, seal, apiver.V1_2_0)
	if !apiver.HasFeature(call.Features, apiver.FeatureSyntheticPoRep) {
		t.Fatal("intrinsic synthetic feature missing from authorized call")
	}
	// Requesting the intrinsic feature again must not duplicate it.
	call = authorize(t, p, seal, apiver.V1_2_0, apiver.FeatureSyntheticPoRep)
	n := 0
	for _, f := range call.Features {
		if f == apiver.FeatureSyntheticPoRep {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("synthetic feature appears %d times, want 1", n)
	}
}

func TestRegistryDescriptorsAuthorizeAtOwnVersion(t *testing.T) {
	p := Default()
	for _, sp := range registry.SealProofs() {
		if _, err := p.Authorize(sp, apiver.V1_2_0); err != nil {
			t.Errorf("%s rejected at v1.2: %v", sp, err)
		}
	}
	for _, pp := range registry.PoStProofs() {
		if _, err := p.Authorize(pp, apiver.V1_2_0); err != nil {
			t.Errorf("%s rejected at v1.2: %v", pp, err)
		}
	}
	for _, up := range registry.UpdateProofs() {
		if _, err := p.Authorize(up, apiver.V1_2_0); err != nil {
			t.Errorf("%s rejected at v1.2: %v", up, err)
		}
	}
}
