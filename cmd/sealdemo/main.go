// Command sealdemo walks a 2KiB sector through the whole proof
// lifecycle on the development engine: seal, verify, unseal, window
// PoSt and proof aggregation. Nothing here produces production proofs.
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/engine/devengine"
	"github.com/MuriData/muri-sector-proofs/pkg/policy"
	"github.com/MuriData/muri-sector-proofs/pkg/proofs"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// demoPolicy lifts the production sector-size floors so every code path
// can run on a 2KiB sector.
func demoPolicy() *policy.Policy {
	return policy.New(
		[]policy.Rule{
			{Version: apiver.V1_0_0},
			{Version: apiver.V1_1_0, Features: []apiver.Feature{apiver.FeatureAggregation}},
			{Version: apiver.V1_2_0, Features: []apiver.Feature{
				apiver.FeatureSyntheticPoRep,
				apiver.FeatureNonInteractivePoRep,
				apiver.FeatureFixedRowsToDiscard,
			}},
		},
		[]policy.Conflict{
			{A: apiver.FeatureSyntheticPoRep, B: apiver.FeatureNonInteractivePoRep},
		},
	)
}

type sealedSector struct {
	commitments engine.SealedCommitments
	proof       engine.Proof
	cacheDir    string
	sealedRef   string
	sectorID    engine.SectorID
	seed        engine.ChallengeSeed
	data        []byte
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	d := proofs.NewWithPolicy(devengine.New(logger), demoPolicy(), apiver.V1_2_0, logger)

	root, err := os.MkdirTemp("", "sealdemo")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(root)

	var prover engine.ProverID
	prover[0] = 1

	sealProof := registry.StackedDrg2KiBV1_1
	sectors := make([]sealedSector, 2)
	for i := range sectors {
		sectors[i] = seal(ctx, d, logger, root, prover, engine.SectorID(i+1), sealProof)
	}

	// Verify both seals.
	for _, s := range sectors {
		ok, err := d.VerifySeal(ctx, sealProof, engine.SealVerifyInfo{
			Sector: engine.SectorProver{
				ProverID: prover,
				SectorID: s.sectorID,
				Ticket:   ticketFor(s.sectorID),
				Seed:     s.seed,
			},
			CommR: s.commitments.CommR,
			CommD: s.commitments.CommD,
			Proof: s.proof,
		})
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			log.Fatalf("seal proof for sector %d rejected", s.sectorID)
		}
		logger.Info().Uint64("sector", uint64(s.sectorID)).Msg("seal proof verified")
	}

	// Ranged unseal against the original bytes.
	s := sectors[0]
	var buf bytes.Buffer
	if err := d.Unseal(ctx, sealProof, &buf, engine.UnsealRequest{
		ProverID:  prover,
		SectorID:  s.sectorID,
		Ticket:    ticketFor(s.sectorID),
		CommD:     s.commitments.CommD,
		SealedRef: s.sealedRef,
		Offset:    128,
		Size:      256,
	}); err != nil {
		log.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), s.data[128:128+256]) {
		log.Fatal("unsealed range does not match the original data")
	}
	logger.Info().Msg("ranged unseal matches original data")

	// Window PoSt over both sectors.
	postProof := registry.StackedDrgWindow2KiBV1_2
	var randomness engine.ChallengeSeed
	if _, err := rand.Read(randomness[:]); err != nil {
		log.Fatal(err)
	}
	private := make([]engine.PrivateReplica, len(sectors))
	public := make([]engine.PublicReplica, len(sectors))
	for i, s := range sectors {
		private[i] = engine.PrivateReplica{
			SectorID:  s.sectorID,
			CommR:     s.commitments.CommR,
			SealedRef: s.sealedRef,
			CacheDir:  s.cacheDir,
		}
		public[i] = engine.PublicReplica{SectorID: s.sectorID, CommR: s.commitments.CommR}
	}
	postProofs, err := d.GeneratePoSt(ctx, postProof, engine.PoStRequest{
		ProverID:   prover,
		Randomness: randomness,
		Replicas:   private,
	})
	if err != nil {
		log.Fatal(err)
	}
	ok, err := d.VerifyPoSt(ctx, postProof, engine.PoStVerifyInfo{
		ProverID:   prover,
		Randomness: randomness,
		Replicas:   public,
		Proofs:     postProofs,
	})
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		log.Fatal("window post rejected")
	}
	logger.Info().Int("partitions", len(postProofs)).Msg("window post verified")

	// Aggregate the two seal proofs.
	infos := make([]engine.AggregateSealInfo, len(sectors))
	sealProofs := make([]engine.Proof, len(sectors))
	for i, s := range sectors {
		infos[i] = engine.AggregateSealInfo{CommR: s.commitments.CommR, Seed: s.seed}
		sealProofs[i] = s.proof
	}
	agg, err := d.AggregateSealProofs(ctx, registry.SnarkPackV1, sealProof, infos, sealProofs)
	if err != nil {
		log.Fatal(err)
	}
	ok, err = d.VerifyAggregateSealProofs(ctx, registry.SnarkPackV1, sealProof, infos, agg)
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		log.Fatal("aggregate rejected")
	}
	logger.Info().Int("proofs", len(sealProofs)).Msg("aggregate verified, demo complete")
}

func ticketFor(id engine.SectorID) engine.Ticket {
	var t engine.Ticket
	t[0] = byte(id)
	t[1] = 0x42
	return t
}

func seal(ctx context.Context, d *proofs.Dispatcher, logger zerolog.Logger, root string, prover engine.ProverID, id engine.SectorID, p registry.SealProof) sealedSector {
	dir := filepath.Join(root, fmt.Sprintf("sector-%d", id))
	cacheDir := filepath.Join(dir, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Fatal(err)
	}

	data := make([]byte, sector.Size2KiB)
	if _, err := rand.Read(data); err != nil {
		log.Fatal(err)
	}
	unsealed := filepath.Join(dir, "unsealed")
	if err := os.WriteFile(unsealed, data, 0o644); err != nil {
		log.Fatal(err)
	}
	sealedRef := filepath.Join(dir, "sealed")

	ticket := ticketFor(id)
	var seed engine.ChallengeSeed
	if _, err := rand.Read(seed[:]); err != nil {
		log.Fatal(err)
	}

	p1, err := d.SealPreCommitPhase1(ctx, p, engine.PreCommit1Request{
		ProverID:     prover,
		SectorID:     id,
		Ticket:       ticket,
		UnsealedPath: unsealed,
		CacheDir:     cacheDir,
	})
	if err != nil {
		log.Fatal(err)
	}
	commitments, err := d.SealPreCommitPhase2(ctx, p, p1, cacheDir, sealedRef)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info().Uint64("sector", uint64(id)).Msg("sector sealed")

	c1, err := d.SealCommitPhase1(ctx, p, engine.Commit1Request{
		ProverID:     prover,
		SectorID:     id,
		Ticket:       ticket,
		Seed:         seed,
		CommR:        commitments.CommR,
		CommD:        commitments.CommD,
		CacheDir:     cacheDir,
		SealedRef:    sealedRef,
		UnsealedPath: unsealed,
	})
	if err != nil {
		log.Fatal(err)
	}
	proof, err := d.SealCommitPhase2(ctx, p, c1, prover, id)
	if err != nil {
		log.Fatal(err)
	}

	return sealedSector{
		commitments: commitments,
		proof:       proof,
		cacheDir:    cacheDir,
		sealedRef:   sealedRef,
		sectorID:    id,
		seed:        seed,
		data:        data,
	}
}
