package main

import (
	"fmt"
	"log"
	"os"

	"github.com/consensys/gnark/frontend"

	"github.com/MuriData/muri-sector-proofs/circuits/porep"
	"github.com/MuriData/muri-sector-proofs/pkg/params"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
	"github.com/MuriData/muri-sector-proofs/pkg/setup"
)

// circuitRegistry maps circuit identifiers to their constructors. The
// seal circuit's tree-depth bound covers the 2KiB and 8MiB variants;
// larger sectors need partitioned circuits and are not provable here.
var circuitRegistry = buildCircuitRegistry()

func buildCircuitRegistry() map[string]func() frontend.Circuit {
	m := make(map[string]func() frontend.Circuit)
	for _, p := range registry.SealProofs() {
		if p.SectorSize() <= sector.Size8MiB {
			m[p.CircuitIdentifier()] = func() frontend.Circuit { return &porep.SealCircuit{} }
		}
	}
	return m
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cacheDir := params.CacheDir()

	if os.Args[1] == "publish" {
		publish(cacheDir)
		return
	}

	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	circuitID := os.Args[1]
	newCircuit, ok := circuitRegistry[circuitID]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown circuit: %s\n", circuitID)
		fmt.Fprintln(os.Stderr, "Available circuits:")
		for name := range circuitRegistry {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
		os.Exit(1)
	}

	switch os.Args[2] {
	case "dev":
		if err := setup.DevSetup(newCircuit(), cacheDir, circuitID); err != nil {
			log.Fatal(err)
		}
	case "ceremony":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		handleCeremony(circuitID, newCircuit, cacheDir)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleCeremony(circuitID string, newCircuit func() frontend.Circuit, cacheDir string) {
	switch os.Args[3] {
	case "p1-init":
		if err := setup.CeremonyP1Init(newCircuit()); err != nil {
			log.Fatal(err)
		}
	case "p1-contribute":
		if err := setup.CeremonyP1Contribute(); err != nil {
			log.Fatal(err)
		}
	case "p1-verify":
		if len(os.Args) < 5 {
			log.Fatalf("usage: go run ./cmd/compile %s ceremony p1-verify BEACON_HEX", circuitID)
		}
		if err := setup.CeremonyP1Verify(newCircuit(), os.Args[4]); err != nil {
			log.Fatal(err)
		}
	case "p2-init":
		if err := setup.CeremonyP2Init(newCircuit()); err != nil {
			log.Fatal(err)
		}
	case "p2-contribute":
		if err := setup.CeremonyP2Contribute(); err != nil {
			log.Fatal(err)
		}
	case "p2-verify":
		if len(os.Args) < 5 {
			log.Fatalf("usage: go run ./cmd/compile %s ceremony p2-verify BEACON_HEX", circuitID)
		}
		if err := setup.CeremonyP2Verify(newCircuit(), os.Args[4], cacheDir, circuitID); err != nil {
			log.Fatal(err)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

// publish content-addresses every circuit whose key pair is present in
// the cache and writes the manifest.
func publish(cacheDir string) {
	var ready []string
	for name := range circuitRegistry {
		if _, err := os.Stat(params.ProvingKeyPath(cacheDir, name)); err != nil {
			continue
		}
		if _, err := os.Stat(params.VerifyingKeyPath(cacheDir, name)); err != nil {
			continue
		}
		ready = append(ready, name)
	}
	if len(ready) == 0 {
		log.Fatalf("no key pairs found in %s; run dev or ceremony setup first", cacheDir)
	}

	m, err := params.Publish(cacheDir, ready)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Published manifest for %d file(s) to %s\n", len(m), cacheDir)
	for _, name := range m.Names() {
		e := m[name]
		fmt.Printf("  %s  %s  %d bytes\n", name, e.CID, e.SizeBytes)
	}
}

func printUsage() {
	fmt.Println(`Usage:
  go run ./cmd/compile <circuit> dev                         Dev mode (single-party setup, NOT for production)

  go run ./cmd/compile <circuit> ceremony p1-init            Initialize Phase 1 (Powers of Tau)
  go run ./cmd/compile <circuit> ceremony p1-contribute      Add a Phase 1 contribution
  go run ./cmd/compile <circuit> ceremony p1-verify HEX      Verify Phase 1 & seal with random beacon

  go run ./cmd/compile <circuit> ceremony p2-init            Initialize Phase 2 (circuit-specific)
  go run ./cmd/compile <circuit> ceremony p2-contribute      Add a Phase 2 contribution
  go run ./cmd/compile <circuit> ceremony p2-verify HEX      Verify Phase 2, seal & export keys

  go run ./cmd/compile publish                               Write the parameter manifest for cached keys

Keys land in the parameter cache (override with MURI_PROOFS_PARAMETER_CACHE).

Ceremony workflow:
  1. p1-init          Coordinator creates the initial Phase 1 state
  2. p1-contribute    Each participant contributes (repeat N times)
  3. p1-verify        Coordinator verifies all & seals with a public beacon
  4. p2-init          Coordinator initializes Phase 2 with the circuit
  5. p2-contribute    Each participant contributes (repeat M times)
  6. p2-verify        Coordinator verifies all, seals, and exports final keys

Security: 1-of-N honest: if any single contributor is honest, the setup is secure.
Beacon: use a public randomness source evaluated AFTER the last contribution.

Available circuits:`)
	for name := range circuitRegistry {
		fmt.Printf("  %s\n", name)
	}
}
