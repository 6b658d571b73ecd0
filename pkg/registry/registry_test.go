package registry

import (
	"strings"
	"testing"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// Frozen identity vectors. These bytes are consensus-critical: if any of
// them changes, sectors sealed under the affected proof stop verifying.
func TestSealProofIdentityVectors(t *testing.T) {
	want := map[SealProof]string{
		StackedDrg2KiBV1:   "0000000000000000000000000000000000000000000000000000000000000000",
		StackedDrg8MiBV1:   "0100000000000000000000000000000000000000000000000000000000000000",
		StackedDrg512MiBV1: "0200000000000000000000000000000000000000000000000000000000000000",
		StackedDrg32GiBV1:  "0300000000000000000000000000000000000000000000000000000000000000",
		StackedDrg64GiBV1:  "0400000000000000000000000000000000000000000000000000000000000000",

		StackedDrg2KiBV1_1:   "0500000000000000000000000000000000000000000000000000000000000000",
		StackedDrg8MiBV1_1:   "0600000000000000000000000000000000000000000000000000000000000000",
		StackedDrg512MiBV1_1: "0700000000000000000000000000000000000000000000000000000000000000",
		StackedDrg32GiBV1_1:  "0800000000000000000000000000000000000000000000000000000000000000",
		StackedDrg64GiBV1_1:  "0900000000000000000000000000000000000000000000000000000000000000",

		StackedDrg2KiBV1_1_Feat_SyntheticPoRep:   "0a00000000000000000000000000000000000000000000000000000000000000",
		StackedDrg8MiBV1_1_Feat_SyntheticPoRep:   "0b00000000000000000000000000000000000000000000000000000000000000",
		StackedDrg512MiBV1_1_Feat_SyntheticPoRep: "0c00000000000000000000000000000000000000000000000000000000000000",
		StackedDrg32GiBV1_1_Feat_SyntheticPoRep:  "0d00000000000000000000000000000000000000000000000000000000000000",
		StackedDrg64GiBV1_1_Feat_SyntheticPoRep:  "0e00000000000000000000000000000000000000000000000000000000000000",

		StackedDrg2KiBV1_2_Feat_NonInteractivePoRep:   "0f00000000000000000000000000000000000000000000000000000000000000",
		StackedDrg8MiBV1_2_Feat_NonInteractivePoRep:   "1000000000000000000000000000000000000000000000000000000000000000",
		StackedDrg512MiBV1_2_Feat_NonInteractivePoRep: "1100000000000000000000000000000000000000000000000000000000000000",
		StackedDrg32GiBV1_2_Feat_NonInteractivePoRep:  "1200000000000000000000000000000000000000000000000000000000000000",
		StackedDrg64GiBV1_2_Feat_NonInteractivePoRep:  "1300000000000000000000000000000000000000000000000000000000000000",
	}

	if len(want) != len(SealProofs()) {
		t.Fatalf("expected %d vectors, have %d", len(SealProofs()), len(want))
	}
	for p, hex := range want {
		if got := p.PorepID().String(); got != hex {
			t.Errorf("%s: identity = %s, want %s", p, got, hex)
		}
	}
}

func TestSealProofIdentitiesDistinct(t *testing.T) {
	seen := make(map[ProofIdentity]SealProof)
	for _, p := range SealProofs() {
		id := p.PorepID()
		if prev, ok := seen[id]; ok {
			t.Fatalf("%s and %s share identity %s", prev, p, id)
		}
		seen[id] = p
	}
}

// Update proofs intentionally alias the identities of the V1 seal
// proofs for the same size. Pin the alias so it cannot drift.
func TestUpdateProofIdentityAliasesSealV1(t *testing.T) {
	pairs := []struct {
		update UpdateProof
		seal   SealProof
	}{
		{EmptySectorUpdate2KiBV1, StackedDrg2KiBV1},
		{EmptySectorUpdate8MiBV1, StackedDrg8MiBV1},
		{EmptySectorUpdate512MiBV1, StackedDrg512MiBV1},
		{EmptySectorUpdate32GiBV1, StackedDrg32GiBV1},
		{EmptySectorUpdate64GiBV1, StackedDrg64GiBV1},
	}
	for _, pair := range pairs {
		if pair.update.PorepID() != pair.seal.PorepID() {
			t.Errorf("%s identity does not alias %s", pair.update, pair.seal)
		}
	}
}

func TestProofIdentityLayout(t *testing.T) {
	id := deriveIdentity(0x1122334455667788, 0x99aabbccddeeff00)
	if id.ProofID() != 0x1122334455667788 {
		t.Errorf("proof id roundtrip failed: %x", id.ProofID())
	}
	if id.Nonce() != 0x99aabbccddeeff00 {
		t.Errorf("nonce roundtrip failed: %x", id.Nonce())
	}
	// Little-endian: the low byte of the proof id leads.
	if id[0] != 0x88 || id[8] != 0x00 {
		t.Errorf("unexpected byte layout: %s", id)
	}
	for i := 16; i < 32; i++ {
		if id[i] != 0 {
			t.Errorf("reserved byte %d is nonzero", i)
		}
	}
}

func TestResolveSeal(t *testing.T) {
	cases := []struct {
		name  string
		size  sector.Size
		v     apiver.Version
		feats []apiver.Feature
		want  SealProof
		fail  bool
	}{
		{name: "2kib v1_0", size: sector.Size2KiB, v: apiver.V1_0_0, want: StackedDrg2KiBV1},
		{name: "2kib v1_1", size: sector.Size2KiB, v: apiver.V1_1_0, want: StackedDrg2KiBV1_1},
		{name: "2kib v1_2 no feats", size: sector.Size2KiB, v: apiver.V1_2_0, want: StackedDrg2KiBV1_1},
		{name: "32gib v1_0", size: sector.Size32GiB, v: apiver.V1_0_0, want: StackedDrg32GiBV1},
		{name: "64gib synth", size: sector.Size64GiB, v: apiver.V1_2_0,
			feats: []apiver.Feature{apiver.FeatureSyntheticPoRep},
			want:  StackedDrg64GiBV1_1_Feat_SyntheticPoRep},
		{name: "8mib ni", size: sector.Size8MiB, v: apiver.V1_2_0,
			feats: []apiver.Feature{apiver.FeatureNonInteractivePoRep},
			want:  StackedDrg8MiBV1_2_Feat_NonInteractivePoRep},
		{name: "synth below minimum size", size: sector.Size2KiB, v: apiver.V1_2_0,
			feats: []apiver.Feature{apiver.FeatureSyntheticPoRep}, fail: true},
		{name: "ni below minimum size", size: sector.Size2KiB, v: apiver.V1_2_0,
			feats: []apiver.Feature{apiver.FeatureNonInteractivePoRep}, fail: true},
		{name: "synth before v1_2", size: sector.Size32GiB, v: apiver.V1_1_0,
			feats: []apiver.Feature{apiver.FeatureSyntheticPoRep}, fail: true},
		{name: "synth and ni conflict", size: sector.Size32GiB, v: apiver.V1_2_0,
			feats: []apiver.Feature{apiver.FeatureSyntheticPoRep, apiver.FeatureNonInteractivePoRep},
			fail: true},
		{name: "unknown size", size: sector.Size(1234), v: apiver.V1_0_0, fail: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveSeal(tc.size, tc.v, tc.feats...)
			if tc.fail {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResolvePoSt(t *testing.T) {
	cases := []struct {
		name string
		typ  PoStType
		size sector.Size
		v    apiver.Version
		want PoStProof
	}{
		{"winning 2kib", PoStWinning, sector.Size2KiB, apiver.V1_0_0, StackedDrgWinning2KiBV1},
		{"winning 64gib at v1_2", PoStWinning, sector.Size64GiB, apiver.V1_2_0, StackedDrgWinning64GiBV1},
		{"window 512mib v1", PoStWindow, sector.Size512MiB, apiver.V1_1_0, StackedDrgWindow512MiBV1},
		{"window 512mib v1_2", PoStWindow, sector.Size512MiB, apiver.V1_2_0, StackedDrgWindow512MiBV1_2},
		{"window 32gib v1_2", PoStWindow, sector.Size32GiB, apiver.V1_2_0, StackedDrgWindow32GiBV1_2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolvePoSt(tc.typ, tc.size, tc.v)
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}

	if _, err := ResolvePoSt(PoStWindow, sector.Size(7), apiver.V1_0_0); err == nil {
		t.Fatal("expected error for unknown size")
	}
}

func TestResolveUpdate(t *testing.T) {
	got, err := ResolveUpdate(sector.Size32GiB, apiver.V1_2_0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != EmptySectorUpdate32GiBV1 {
		t.Fatalf("got %s, want %s", got, EmptySectorUpdate32GiBV1)
	}

	if _, err := ResolveUpdate(sector.Size32GiB, apiver.V1_1_0); err == nil {
		t.Fatal("expected error before v1_2")
	}
	if _, err := ResolveUpdate(sector.Size(7), apiver.V1_2_0); err == nil {
		t.Fatal("expected error for unknown size")
	}
}

func TestDescriptorTables(t *testing.T) {
	for _, p := range SealProofs() {
		sp, err := p.Params()
		if err != nil {
			t.Fatalf("%s: params: %v", p, err)
		}
		if sp.Size != p.SectorSize() {
			t.Errorf("%s: params size %s, descriptor size %s", p, sp.Size, p.SectorSize())
		}
		wantPartitions := sp.Partitions
		if p.FeatureEnabled(apiver.FeatureNonInteractivePoRep) && p.SectorSize() >= sector.Size32GiB {
			if wantPartitions != 126 {
				t.Errorf("%s: non-interactive partitions = %d, want 126", p, wantPartitions)
			}
		}
		if !strings.HasPrefix(p.CircuitIdentifier(), "stacked-drg-seal-") {
			t.Errorf("%s: unexpected circuit identifier %q", p, p.CircuitIdentifier())
		}
	}

	for _, p := range PoStProofs() {
		if p.SectorCount() == 0 || p.ChallengeCount() == 0 {
			t.Errorf("%s: zero sector or challenge count", p)
		}
	}
	if StackedDrgWinning32GiBV1.SectorCount() != 1 {
		t.Errorf("winning post covers %d sectors, want 1", StackedDrgWinning32GiBV1.SectorCount())
	}
	if StackedDrgWindow32GiBV1.SectorCount() != 2349 {
		t.Errorf("32gib window post covers %d sectors, want 2349", StackedDrgWindow32GiBV1.SectorCount())
	}
	if StackedDrgWindow64GiBV1.SectorCount() != 2300 {
		t.Errorf("64gib window post covers %d sectors, want 2300", StackedDrgWindow64GiBV1.SectorCount())
	}
}

func TestCircuitIdentifiersDistinct(t *testing.T) {
	seen := make(map[string]string)
	record := func(id, owner string) {
		t.Helper()
		if prev, ok := seen[id]; ok {
			t.Errorf("circuit identifier %q shared by %s and %s", id, prev, owner)
		}
		seen[id] = owner
	}
	for _, p := range SealProofs() {
		record(p.CircuitIdentifier(), p.String())
	}
	for _, p := range PoStProofs() {
		record(p.CircuitIdentifier(), p.String())
	}
	for _, p := range UpdateProofs() {
		record(p.CircuitIdentifier(), p.String())
	}
}
