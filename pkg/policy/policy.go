// Package policy decides which proof features a caller may exercise at a
// given API version. The rules are table-driven so version reviews can
// read the whole surface in one place, and monotonic: a feature legal at
// version v stays legal at every later version.
package policy

import (
	"fmt"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// Descriptor is the view of a registered proof the policy needs. All
// registered proof enums satisfy it.
type Descriptor interface {
	Version() apiver.Version
	SectorSize() sector.Size
	Features() []apiver.Feature
	CircuitIdentifier() string
}

// Rule introduces a set of features at one API version, with optional
// per-feature sector-size floors.
type Rule struct {
	Version  apiver.Version
	Features []apiver.Feature

	// MinSectorSize restricts a feature to sectors at or above the given
	// size. Features absent from the map have no floor.
	MinSectorSize map[apiver.Feature]sector.Size
}

// Conflict names a pair of features that can never be combined.
type Conflict struct {
	A, B apiver.Feature
}

// Policy is an ordered rule table plus the conflict set.
type Policy struct {
	rules     []Rule
	conflicts []Conflict
}

// New builds a policy from explicit tables. Rules must be given in
// ascending version order.
func New(rules []Rule, conflicts []Conflict) *Policy {
	return &Policy{rules: rules, conflicts: conflicts}
}

// Default returns the production policy table.
func Default() *Policy {
	return New(
		[]Rule{
			{
				Version: apiver.V1_0_0,
			},
			{
				Version:  apiver.V1_1_0,
				Features: []apiver.Feature{apiver.FeatureAggregation},
				MinSectorSize: map[apiver.Feature]sector.Size{
					apiver.FeatureAggregation: sector.Size8MiB,
				},
			},
			{
				Version: apiver.V1_2_0,
				Features: []apiver.Feature{
					apiver.FeatureSyntheticPoRep,
					apiver.FeatureNonInteractivePoRep,
					apiver.FeatureFixedRowsToDiscard,
				},
				MinSectorSize: map[apiver.Feature]sector.Size{
					apiver.FeatureSyntheticPoRep:      sector.Size8MiB,
					apiver.FeatureNonInteractivePoRep: sector.Size8MiB,
				},
			},
		},
		[]Conflict{
			{A: apiver.FeatureSyntheticPoRep, B: apiver.FeatureNonInteractivePoRep},
		},
	)
}

// IntroducedAt returns the version that introduces f, or false if no
// rule mentions it.
func (p *Policy) IntroducedAt(f apiver.Feature) (apiver.Version, bool) {
	for _, r := range p.rules {
		if apiver.HasFeature(r.Features, f) {
			return r.Version, true
		}
	}
	return apiver.Version{}, false
}

// AuthorizedCall is the outcome of a successful authorization: the
// descriptor, the version the caller ran at, and the full effective
// feature set (descriptor-intrinsic plus requested).
type AuthorizedCall struct {
	Descriptor Descriptor
	Version    apiver.Version
	Features   []apiver.Feature
}

// Authorize checks a call against the policy. The effective feature set
// is the union of the descriptor's intrinsic features and the
// explicitly requested ones. Every feature must be introduced at or
// before v, meet its sector-size floor, and avoid the conflict set.
func (p *Policy) Authorize(d Descriptor, v apiver.Version, requested ...apiver.Feature) (*AuthorizedCall, error) {
	if v.Compare(d.Version()) < 0 {
		return nil, &VersionError{
			Circuit: d.CircuitIdentifier(),
			Have:    v,
			Need:    d.Version(),
		}
	}

	feats := mergeFeatures(d.Features(), requested)
	for _, f := range feats {
		intro, ok := p.IntroducedAt(f)
		if !ok {
			return nil, &VersionError{Circuit: d.CircuitIdentifier(), Have: v, Feature: &f}
		}
		if !v.AtLeast(intro) {
			return nil, &VersionError{Circuit: d.CircuitIdentifier(), Have: v, Need: intro, Feature: &f}
		}
		for _, r := range p.rules {
			if r.Version != intro {
				continue
			}
			if floor, ok := r.MinSectorSize[f]; ok && d.SectorSize() < floor {
				return nil, fmt.Errorf("feature %s needs sectors of at least %s, circuit %s has %s: %w",
					f, floor, d.CircuitIdentifier(), d.SectorSize(), ErrFeatureSectorFloor)
			}
		}
	}

	for _, c := range p.conflicts {
		if apiver.HasFeature(feats, c.A) && apiver.HasFeature(feats, c.B) {
			return nil, &FeatureConflictError{A: c.A, B: c.B, Circuit: d.CircuitIdentifier()}
		}
	}

	return &AuthorizedCall{Descriptor: d, Version: v, Features: feats}, nil
}

func mergeFeatures(intrinsic, requested []apiver.Feature) []apiver.Feature {
	out := make([]apiver.Feature, 0, len(intrinsic)+len(requested))
	out = append(out, intrinsic...)
	for _, f := range requested {
		if !apiver.HasFeature(out, f) {
			out = append(out, f)
		}
	}
	return out
}
