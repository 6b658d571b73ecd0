// Package proofs is the stable entry layer of the proof subsystem.
// Callers name a registered proof; the dispatcher authorizes it against
// the API version policy, builds the engine call for the exact circuit
// variant, and routes it to the configured proving backend. All errors
// leave this package as *CodedError.
package proofs

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MuriData/muri-sector-proofs/pkg/aggregate"
	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/policy"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

// Dispatcher routes registered proof operations to an engine under one
// API version.
type Dispatcher struct {
	eng engine.Engine
	pol *policy.Policy
	ver apiver.Version
	agg *aggregate.Coordinator
	log zerolog.Logger
}

// New returns a dispatcher running at the given API version with the
// default policy.
func New(eng engine.Engine, ver apiver.Version, log zerolog.Logger) *Dispatcher {
	return NewWithPolicy(eng, policy.Default(), ver, log)
}

// NewWithPolicy returns a dispatcher with an explicit policy table.
// Test suites use it to exercise gating rules the production table
// does not expose.
func NewWithPolicy(eng engine.Engine, pol *policy.Policy, ver apiver.Version, log zerolog.Logger) *Dispatcher {
	l := log.With().Str("component", "proofs").Str("api_version", ver.String()).Logger()
	return &Dispatcher{
		eng: eng,
		pol: pol,
		ver: ver,
		agg: aggregate.New(eng, l),
		log: l,
	}
}

// Version returns the API version this dispatcher runs at.
func (d *Dispatcher) Version() apiver.Version {
	return d.ver
}

// sealCall authorizes a seal proof and builds its engine call.
func (d *Dispatcher) sealCall(p registry.SealProof, extra ...apiver.Feature) (engine.Call, error) {
	if !p.Registered() {
		return engine.Call{}, &CodedError{
			Code:    CodeInvalidRegisteredProof,
			Message: fmt.Sprintf("unknown seal proof %d", int(p)),
		}
	}
	auth, err := d.pol.Authorize(p, d.ver, extra...)
	if err != nil {
		return engine.Call{}, mapErr(CodeVersionError, err)
	}
	return engine.Call{
		Identity:   p.PorepID(),
		Circuit:    p.CircuitIdentifier(),
		Version:    auth.Version,
		Features:   auth.Features,
		SectorSize: p.SectorSize(),
	}, nil
}

// postCall authorizes a PoSt proof and builds its engine call,
// including the challenge and partition shape.
func (d *Dispatcher) postCall(p registry.PoStProof) (engine.Call, error) {
	if !p.Registered() {
		return engine.Call{}, &CodedError{
			Code:    CodeInvalidRegisteredProof,
			Message: fmt.Sprintf("unknown post proof %d", int(p)),
		}
	}
	auth, err := d.pol.Authorize(p, d.ver)
	if err != nil {
		return engine.Call{}, mapErr(CodeVersionError, err)
	}
	return engine.Call{
		Circuit:          p.CircuitIdentifier(),
		Version:          auth.Version,
		Features:         auth.Features,
		SectorSize:       p.SectorSize(),
		Challenges:       p.ChallengeCount(),
		PartitionSectors: p.SectorCount(),
	}, nil
}

// updateCall authorizes an update proof and builds its engine call.
func (d *Dispatcher) updateCall(p registry.UpdateProof) (engine.Call, error) {
	if !p.Registered() {
		return engine.Call{}, &CodedError{
			Code:    CodeInvalidRegisteredProof,
			Message: fmt.Sprintf("unknown update proof %d", int(p)),
		}
	}
	auth, err := d.pol.Authorize(p, d.ver)
	if err != nil {
		return engine.Call{}, mapErr(CodeVersionError, err)
	}
	return engine.Call{
		Identity:   p.PorepID(),
		Circuit:    p.CircuitIdentifier(),
		Version:    auth.Version,
		Features:   auth.Features,
		SectorSize: p.SectorSize(),
	}, nil
}
