package devengine

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/MuriData/muri-sector-proofs/config"
	"github.com/MuriData/muri-sector-proofs/pkg/crypto"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/merkle"
)

// updateOpening is one challenged node of an update proof: the new
// data chunk, the original replica chunk, the updated chunk and the
// paths tying data and updated chunks to their roots. The encoding
// relation (updated = old XOR data) is checked chunkwise.
type updateOpening struct {
	Index        uint64 `json:"index"`
	DataChunk    []byte `json:"data_chunk"`
	OldChunk     []byte `json:"old_chunk"`
	UpdatedChunk []byte `json:"updated_chunk"`
	DataPath     path   `json:"data_path"`
	UpdatedPath  path   `json:"updated_path"`
}

// updateProof is the wire form of a dev update proof.
type updateProof struct {
	UpdatedRoot []byte          `json:"updated_root"`
	Openings    []updateOpening `json:"openings"`
}

// UpdateEncode writes new deal data onto an existing replica:
// updated = sealed XOR data, per node. The new commitments bind the
// old replica commitment so an update cannot be replayed onto a
// different sector.
func (e *Engine) UpdateEncode(ctx context.Context, call engine.Call, req engine.UpdateRequest) (engine.UpdateCommitments, error) {
	if err := ctx.Err(); err != nil {
		return engine.UpdateCommitments{}, err
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return engine.UpdateCommitments{}, err
	}

	dataChunks, err := readChunks(req.UnsealedPath, leaves)
	if err != nil {
		return engine.UpdateCommitments{}, engine.Errorf("update-encode", call.Circuit, "read new data: %w", err)
	}
	oldChunks, err := readChunks(req.SealedRef, leaves)
	if err != nil {
		return engine.UpdateCommitments{}, engine.Errorf("update-encode", call.Circuit, "read replica: %w", err)
	}

	updatedChunks := make([][]byte, leaves)
	for i := range updatedChunks {
		chunk := make([]byte, config.NodeSize)
		for j := range chunk {
			chunk[j] = oldChunks[i][j] ^ dataChunks[i][j]
		}
		updatedChunks[i] = chunk
	}
	if err := writeChunks(req.UpdatedRef, updatedChunks); err != nil {
		return engine.UpdateCommitments{}, engine.Errorf("update-encode", call.Circuit, "%w", err)
	}

	dataTree, err := merkle.BuildTree(dataChunks, crypto.HashLeaf)
	if err != nil {
		return engine.UpdateCommitments{}, engine.Errorf("update-encode", call.Circuit, "build data tree: %w", err)
	}
	updatedTree, err := merkle.BuildTree(updatedChunks, crypto.HashLeaf)
	if err != nil {
		return engine.UpdateCommitments{}, engine.Errorf("update-encode", call.Circuit, "build updated tree: %w", err)
	}
	if err := saveTree(req.CacheDir, updateDataTreeFile, dataTree); err != nil {
		return engine.UpdateCommitments{}, engine.Errorf("update-encode", call.Circuit, "%w", err)
	}
	if err := saveTree(req.CacheDir, updateReplicaTreeFile, updatedTree); err != nil {
		return engine.UpdateCommitments{}, engine.Errorf("update-encode", call.Circuit, "%w", err)
	}

	commDNew := crypto.CommitmentFromElement(dataTree.Root())
	commRNewElem := crypto.HashElements(
		crypto.BindCommitment(req.CommROld),
		updatedTree.Root(),
		crypto.ElementFromCommitment(commDNew),
	)
	commRNew := crypto.CommitmentFromElement(commRNewElem)

	if err := saveJSON(req.CacheDir, updateAuxFile, updateAux{
		CommROld:   req.CommROld[:],
		CommRNew:   commRNew[:],
		CommDNew:   commDNew[:],
		SealedRef:  req.SealedRef,
		UpdatedRef: req.UpdatedRef,
		DataPath:   req.UnsealedPath,
	}); err != nil {
		return engine.UpdateCommitments{}, engine.Errorf("update-encode", call.Circuit, "%w", err)
	}

	e.log.Debug().
		Str("circuit", call.Circuit).
		Msg("update encoded")
	return engine.UpdateCommitments{CommRNew: commRNew, CommDNew: commDNew}, nil
}

// UpdateDecode recovers the deal data from an updated replica:
// data = updated XOR sealed.
func (e *Engine) UpdateDecode(ctx context.Context, call engine.Call, req engine.UpdateDecodeRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return err
	}

	updatedChunks, err := readChunks(req.UpdatedRef, leaves)
	if err != nil {
		return engine.Errorf("update-decode", call.Circuit, "read updated replica: %w", err)
	}
	oldChunks, err := readChunks(req.SealedRef, leaves)
	if err != nil {
		return engine.Errorf("update-decode", call.Circuit, "read replica: %w", err)
	}

	out, err := os.Create(req.OutPath)
	if err != nil {
		return engine.Errorf("update-decode", call.Circuit, "create output: %w", err)
	}
	defer out.Close()

	buf := make([]byte, config.NodeSize)
	for i := range updatedChunks {
		for j := range buf {
			buf[j] = updatedChunks[i][j] ^ oldChunks[i][j]
		}
		if _, err := out.Write(buf); err != nil {
			return engine.Errorf("update-decode", call.Circuit, "write output: %w", err)
		}
	}
	return out.Close()
}

// UpdateDecodeRange streams a byte range of the deal data into out:
// data = updated XOR sealed, byte for byte. Both replicas are read
// through fixed buffers, so memory stays constant regardless of the
// requested range.
func (e *Engine) UpdateDecodeRange(ctx context.Context, call engine.Call, out io.Writer, req engine.UpdateDecodeRangeRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Checked in two halves so an adversarial offset+size cannot wrap
	// around uint64.
	if size := uint64(call.SectorSize); size != 0 && (req.Offset > size || req.Size > size-req.Offset) {
		return engine.Errorf("update-decode-range", call.Circuit, "range at offset %d of %d bytes exceeds sector size %d",
			req.Offset, req.Size, size)
	}

	updated, err := os.Open(req.UpdatedRef)
	if err != nil {
		return engine.Errorf("update-decode-range", call.Circuit, "open updated replica: %w", err)
	}
	defer updated.Close()
	old, err := os.Open(req.SealedRef)
	if err != nil {
		return engine.Errorf("update-decode-range", call.Circuit, "open replica: %w", err)
	}
	defer old.Close()
	if _, err := updated.Seek(int64(req.Offset), io.SeekStart); err != nil {
		return engine.Errorf("update-decode-range", call.Circuit, "seek updated replica: %w", err)
	}
	if _, err := old.Seek(int64(req.Offset), io.SeekStart); err != nil {
		return engine.Errorf("update-decode-range", call.Circuit, "seek replica: %w", err)
	}

	remaining := req.Size
	updBuf := make([]byte, 64<<10)
	oldBuf := make([]byte, 64<<10)
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := uint64(len(updBuf))
		if n > remaining {
			n = remaining
		}
		// Short replica files decode as zero-padded data.
		read, err := io.ReadFull(updated, updBuf[:n])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			for i := read; i < int(n); i++ {
				updBuf[i] = 0
			}
		} else if err != nil {
			return engine.Errorf("update-decode-range", call.Circuit, "read updated replica: %w", err)
		}
		read, err = io.ReadFull(old, oldBuf[:n])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			for i := read; i < int(n); i++ {
				oldBuf[i] = 0
			}
		} else if err != nil {
			return engine.Errorf("update-decode-range", call.Circuit, "read replica: %w", err)
		}
		for i := 0; i < int(n); i++ {
			updBuf[i] ^= oldBuf[i]
		}
		if _, err := out.Write(updBuf[:n]); err != nil {
			return engine.Errorf("update-decode-range", call.Circuit, "write output: %w", err)
		}
		remaining -= n
	}
	return nil
}

// UpdateRemoveData strips the encoded deal data out of an updated
// replica, restoring the pre-update replica at OutPath:
// old = updated XOR data, per node.
func (e *Engine) UpdateRemoveData(ctx context.Context, call engine.Call, req engine.UpdateRemoveDataRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return err
	}

	updatedChunks, err := readChunks(req.UpdatedRef, leaves)
	if err != nil {
		return engine.Errorf("update-remove-data", call.Circuit, "read updated replica: %w", err)
	}
	dataChunks, err := readChunks(req.UnsealedPath, leaves)
	if err != nil {
		return engine.Errorf("update-remove-data", call.Circuit, "read data: %w", err)
	}

	out, err := os.Create(req.OutPath)
	if err != nil {
		return engine.Errorf("update-remove-data", call.Circuit, "create output: %w", err)
	}
	defer out.Close()

	buf := make([]byte, config.NodeSize)
	for i := range updatedChunks {
		for j := range buf {
			buf[j] = updatedChunks[i][j] ^ dataChunks[i][j]
		}
		if _, err := out.Write(buf); err != nil {
			return engine.Errorf("update-remove-data", call.Circuit, "write output: %w", err)
		}
	}
	return out.Close()
}

// UpdateProve opens the updated and data trees at challenges derived
// from the three public commitments.
func (e *Engine) UpdateProve(ctx context.Context, call engine.Call, req engine.UpdateProveRequest) (engine.Proof, error) {
	if err := ctx.Err(); err != nil {
		return engine.Proof{}, err
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return engine.Proof{}, err
	}

	var auxData updateAux
	if err := loadJSON(req.CacheDir, updateAuxFile, &auxData); err != nil {
		return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "%w", err)
	}
	dataTree, err := loadTree(req.CacheDir, updateDataTreeFile)
	if err != nil {
		return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "%w", err)
	}
	updatedTree, err := loadTree(req.CacheDir, updateReplicaTreeFile)
	if err != nil {
		return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "%w", err)
	}

	challenges := deriveChallenges(domainUpdateChal, e.sealChallenges, uint64(leaves),
		req.CommROld[:], req.CommRNew[:], req.CommDNew[:])

	openings := make([]updateOpening, len(challenges))
	for i, idx := range challenges {
		dataChunk, err := readChunkAt(auxData.DataPath, idx)
		if err != nil {
			return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "%w", err)
		}
		oldChunk, err := readChunkAt(auxData.SealedRef, idx)
		if err != nil {
			return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "%w", err)
		}
		updatedChunk, err := readChunkAt(auxData.UpdatedRef, idx)
		if err != nil {
			return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "%w", err)
		}
		dataPath, err := dataTree.Prove(int(idx))
		if err != nil {
			return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "open data tree: %w", err)
		}
		updatedPath, err := updatedTree.Prove(int(idx))
		if err != nil {
			return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "open updated tree: %w", err)
		}
		openings[i] = updateOpening{
			Index:        idx,
			DataChunk:    dataChunk,
			OldChunk:     oldChunk,
			UpdatedChunk: updatedChunk,
			DataPath:     pathFromProof(dataPath),
			UpdatedPath:  pathFromProof(updatedPath),
		}
	}

	updatedRoot := crypto.CommitmentFromElement(updatedTree.Root())
	out, err := json.Marshal(updateProof{
		UpdatedRoot: updatedRoot[:],
		Openings:    openings,
	})
	if err != nil {
		return engine.Proof{}, engine.Errorf("update-prove", call.Circuit, "marshal: %w", err)
	}
	return engine.Proof{Circuit: call.Circuit, Bytes: out}, nil
}

// UpdateVerify checks challenge derivation, both tree openings, the
// encoding relation and the CommRNew binding.
func (e *Engine) UpdateVerify(ctx context.Context, call engine.Call, info engine.UpdateVerifyInfo) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if info.Proof.Circuit != call.Circuit {
		return false, nil
	}
	var up updateProof
	if err := json.Unmarshal(info.Proof.Bytes, &up); err != nil {
		return false, engine.Errorf("update-verify", call.Circuit, "parse proof: %w", err)
	}
	leaves, err := e.leafCount(call)
	if err != nil {
		return false, err
	}

	updatedRoot, err := commitment(up.UpdatedRoot)
	if err != nil {
		return false, engine.Errorf("update-verify", call.Circuit, "%w", err)
	}

	// CommRNew must bind the old commitment, the updated tree root and
	// the new data commitment.
	commRNewElem := crypto.HashElements(
		crypto.BindCommitment(info.CommROld),
		crypto.ElementFromCommitment(updatedRoot),
		crypto.ElementFromCommitment(info.CommDNew),
	)
	if crypto.CommitmentFromElement(commRNewElem) != info.CommRNew {
		return false, nil
	}

	want := deriveChallenges(domainUpdateChal, e.sealChallenges, uint64(leaves),
		info.CommROld[:], info.CommRNew[:], info.CommDNew[:])
	if len(want) != len(up.Openings) {
		return false, nil
	}

	dataRoot := crypto.ElementFromCommitment(info.CommDNew)
	updRoot := crypto.ElementFromCommitment(updatedRoot)
	for i, o := range up.Openings {
		if o.Index != want[i] {
			return false, nil
		}
		if len(o.DataChunk) != config.NodeSize || len(o.OldChunk) != config.NodeSize || len(o.UpdatedChunk) != config.NodeSize {
			return false, nil
		}
		for j := range o.UpdatedChunk {
			if o.UpdatedChunk[j] != o.OldChunk[j]^o.DataChunk[j] {
				return false, nil
			}
		}
		if !merkle.VerifyProof(crypto.HashLeaf(o.DataChunk), o.DataPath.proof(), dataRoot) {
			return false, nil
		}
		if !merkle.VerifyProof(crypto.HashLeaf(o.UpdatedChunk), o.UpdatedPath.proof(), updRoot) {
			return false, nil
		}
	}
	return true, nil
}
