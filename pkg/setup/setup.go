// Package setup compiles circuits and produces their Groth16 keys,
// either through a single-party dev setup or a multi-party ceremony.
// Key files land in the parameter cache under the circuit identifier.
package setup

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/groth16/bn254/mpcsetup"
	"github.com/consensys/gnark/constraint"
	cs_bn254 "github.com/consensys/gnark/constraint/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/MuriData/muri-sector-proofs/pkg/params"
)

// CompileCircuit compiles a gnark circuit into an R1CS constraint system.
func CompileCircuit(circuit frontend.Circuit) (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	return ccs, nil
}

// DevSetup performs a single-party trusted setup (NOT for production)
// and writes the keys into cacheDir under the circuit identifier.
func DevSetup(circuit frontend.Circuit, cacheDir, circuitID string) error {
	fmt.Println("================================================================")
	fmt.Println("  WARNING: Single-party setup (1-of-1 trust assumption)")
	fmt.Println("  DO NOT use these keys in production.")
	fmt.Printf("  For production, run: go run ./cmd/compile %s ceremony --help\n", circuitID)
	fmt.Println("================================================================")

	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("groth16 setup: %w", err)
	}

	return ExportKeys(pk, vk, cacheDir, circuitID)
}

// ExportKeys writes the proving and verifying keys into cacheDir using
// the parameter cache naming scheme.
func ExportKeys(pk groth16.ProvingKey, vk groth16.VerifyingKey, cacheDir, circuitID string) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("create parameter cache: %w", err)
	}

	pkPath := params.ProvingKeyPath(cacheDir, circuitID)
	if err := saveObject(pkPath, pk); err != nil {
		return fmt.Errorf("write proving key: %w", err)
	}
	vkPath := params.VerifyingKeyPath(cacheDir, circuitID)
	if err := saveObject(vkPath, vk); err != nil {
		return fmt.Errorf("write verifying key: %w", err)
	}

	fmt.Printf("Exported: %s, %s\n", pkPath, vkPath)
	return nil
}

// LoadKeys loads a circuit's proving and verifying keys from cacheDir.
func LoadKeys(cacheDir, circuitID string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := loadObject(params.ProvingKeyPath(cacheDir, circuitID), pk); err != nil {
		return nil, nil, fmt.Errorf("load proving key: %w", err)
	}

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := loadObject(params.VerifyingKeyPath(cacheDir, circuitID), vk); err != nil {
		return nil, nil, fmt.Errorf("load verifying key: %w", err)
	}

	return pk, vk, nil
}

// ─── MPC Ceremony ───────────────────────────────────────────────────────────

// CeremonyDir is the default directory for ceremony files.
const CeremonyDir = "ceremony"

// CeremonyP1Init initializes Phase 1 (Powers of Tau).
func CeremonyP1Init(circuit frontend.Circuit) error {
	if err := os.MkdirAll(CeremonyDir, 0o755); err != nil {
		return fmt.Errorf("create ceremony dir: %w", err)
	}
	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}

	N := ecc.NextPowerOfTwo(uint64(ccs.GetNbConstraints()))
	fmt.Printf("Phase 1: domain size N = %d (2^%d), %d constraints\n", N, bits.Len64(N)-1, ccs.GetNbConstraints())

	p := mpcsetup.NewPhase1(N)
	path := nextContribPath("phase1")
	if err := saveObject(path, p); err != nil {
		return err
	}
	fmt.Printf("Wrote initial Phase 1 state to %s\n", path)
	return nil
}

// CeremonyP1Contribute adds a Phase 1 contribution.
func CeremonyP1Contribute() error {
	latest, err := latestContrib("phase1")
	if err != nil {
		return err
	}
	fmt.Printf("Loading %s\n", latest)

	var p mpcsetup.Phase1
	if err := loadObject(latest, &p); err != nil {
		return err
	}

	fmt.Println("Contributing randomness to Phase 1...")
	p.Contribute()

	path := nextContribPath("phase1")
	if err := saveObject(path, &p); err != nil {
		return err
	}
	fmt.Printf("Wrote Phase 1 contribution to %s\n", path)
	return nil
}

// CeremonyP1Verify verifies Phase 1 contributions and seals with a random beacon.
func CeremonyP1Verify(circuit frontend.Circuit, beaconHex string) error {
	beacon, err := parseBeacon(beaconHex)
	if err != nil {
		return err
	}
	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}
	N := ecc.NextPowerOfTwo(uint64(ccs.GetNbConstraints()))

	contribs := findContribs("phase1")
	if len(contribs) < 2 {
		return fmt.Errorf("need at least the init file + one contribution to verify")
	}

	// Skip the init file (index 0); only contributed states are passed to verify
	nContribs := len(contribs) - 1
	fmt.Printf("Verifying %d Phase 1 contribution(s)...\n", nContribs)

	phases := make([]*mpcsetup.Phase1, nContribs)
	for i, path := range contribs[1:] {
		phases[i] = new(mpcsetup.Phase1)
		if err := loadObject(path, phases[i]); err != nil {
			return err
		}
	}

	commons, err := mpcsetup.VerifyPhase1(N, beacon, phases...)
	if err != nil {
		return fmt.Errorf("Phase 1 verification FAILED: %w", err)
	}

	srsPath := filepath.Join(CeremonyDir, "srs_commons.bin")
	if err := saveObject(srsPath, &commons); err != nil {
		return err
	}
	fmt.Printf("Phase 1 verified and sealed. SRS commons written to %s\n", srsPath)
	return nil
}

// CeremonyP2Init initializes Phase 2 (circuit-specific).
func CeremonyP2Init(circuit frontend.Circuit) error {
	if err := os.MkdirAll(CeremonyDir, 0o755); err != nil {
		return fmt.Errorf("create ceremony dir: %w", err)
	}
	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}
	r1csConcrete := ccs.(*cs_bn254.R1CS)

	var commons mpcsetup.SrsCommons
	if err := loadObject(filepath.Join(CeremonyDir, "srs_commons.bin"), &commons); err != nil {
		return err
	}

	fmt.Println("Initializing Phase 2 with circuit and SRS commons...")
	var p mpcsetup.Phase2
	p.Initialize(r1csConcrete, &commons)

	path := nextContribPath("phase2")
	if err := saveObject(path, &p); err != nil {
		return err
	}
	fmt.Printf("Wrote initial Phase 2 state to %s\n", path)
	return nil
}

// CeremonyP2Contribute adds a Phase 2 contribution.
func CeremonyP2Contribute() error {
	latest, err := latestContrib("phase2")
	if err != nil {
		return err
	}
	fmt.Printf("Loading %s\n", latest)

	var p mpcsetup.Phase2
	if err := loadObject(latest, &p); err != nil {
		return err
	}

	fmt.Println("Contributing randomness to Phase 2...")
	p.Contribute()

	path := nextContribPath("phase2")
	if err := saveObject(path, &p); err != nil {
		return err
	}
	fmt.Printf("Wrote Phase 2 contribution to %s\n", path)
	return nil
}

// CeremonyP2Verify verifies Phase 2 contributions, seals, and exports
// final keys into the parameter cache.
func CeremonyP2Verify(circuit frontend.Circuit, beaconHex, cacheDir, circuitID string) error {
	beacon, err := parseBeacon(beaconHex)
	if err != nil {
		return err
	}
	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}
	r1csConcrete := ccs.(*cs_bn254.R1CS)

	var commons mpcsetup.SrsCommons
	if err := loadObject(filepath.Join(CeremonyDir, "srs_commons.bin"), &commons); err != nil {
		return err
	}

	contribs := findContribs("phase2")
	if len(contribs) < 2 {
		return fmt.Errorf("need at least the init file + one contribution to verify")
	}

	nContribs := len(contribs) - 1
	fmt.Printf("Verifying %d Phase 2 contribution(s)...\n", nContribs)

	phases := make([]*mpcsetup.Phase2, nContribs)
	for i, path := range contribs[1:] {
		phases[i] = new(mpcsetup.Phase2)
		if err := loadObject(path, phases[i]); err != nil {
			return err
		}
	}

	pk, vk, err := mpcsetup.VerifyPhase2(r1csConcrete, &commons, beacon, phases...)
	if err != nil {
		return fmt.Errorf("Phase 2 verification FAILED: %w", err)
	}

	if err := ExportKeys(pk, vk, cacheDir, circuitID); err != nil {
		return err
	}
	fmt.Println("Ceremony complete. Keys are production-ready.")
	return nil
}

// ─── Internal helpers ───────────────────────────────────────────────────────

func saveObject(path string, obj io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func loadObject(path string, obj io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.ReadFrom(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func parseBeacon(hexStr string) ([]byte, error) {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid beacon hex: %w", err)
	}
	if len(b) < 16 {
		return nil, fmt.Errorf("beacon must be at least 16 bytes for sufficient entropy")
	}
	return b, nil
}

// findContribs returns sorted paths matching ceremony/<prefix>_NNNN.bin
func findContribs(prefix string) []string {
	pattern := filepath.Join(CeremonyDir, prefix+"_????.bin")
	matches, _ := filepath.Glob(pattern)
	sort.Strings(matches)
	return matches
}

func latestContrib(prefix string) (string, error) {
	contribs := findContribs(prefix)
	if len(contribs) == 0 {
		return "", fmt.Errorf("no %s contributions found in %s/", prefix, CeremonyDir)
	}
	return contribs[len(contribs)-1], nil
}

func nextContribPath(prefix string) string {
	return filepath.Join(CeremonyDir, fmt.Sprintf("%s_%04d.bin", prefix, len(findContribs(prefix))))
}
