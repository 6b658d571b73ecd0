package devengine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MuriData/muri-sector-proofs/config"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/merkle"
)

// Sector cache layout. The trees persist between the pre-commit and
// commit phases; aux keeps the commitments a later phase re-derives
// its bindings from.
const (
	dataTreeFile    = "tree-d.bin"
	replicaTreeFile = "tree-r.bin"
	auxFile         = "aux.json"
	synthFile       = "synth-proofs.json"

	updateDataTreeFile    = "tree-d-update.bin"
	updateReplicaTreeFile = "tree-r-update.bin"
	updateAuxFile         = "update-aux.json"
)

// aux is the persisted commitment set of a sealed sector.
type aux struct {
	CommR     []byte `json:"comm_r"`
	CommD     []byte `json:"comm_d"`
	CommC     []byte `json:"comm_c"`
	CommRLast []byte `json:"comm_r_last"`
}

// updateAux is the persisted state of an encoded update. The source
// paths are kept so the prove phase can reopen the chunk files.
type updateAux struct {
	CommROld    []byte `json:"comm_r_old"`
	CommRNew    []byte `json:"comm_r_new"`
	CommDNew    []byte `json:"comm_d_new"`
	SealedRef   string `json:"sealed_ref"`
	UpdatedRef  string `json:"updated_ref"`
	DataPath    string `json:"data_path"`
}

func saveTree(dir, name string, t *merkle.Tree) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()
	if err := t.Save(f); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return f.Close()
}

func loadTree(dir, name string) (*merkle.Tree, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	t, err := merkle.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return t, nil
}

func saveJSON(dir, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func loadJSON(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// readChunks loads leafCount NodeSize chunks from path, zero-padding
// past the end of the file.
func readChunks(path string, leafCount int) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	chunks := make([][]byte, leafCount)
	for i := range chunks {
		chunk := make([]byte, config.NodeSize)
		if _, err := io.ReadFull(f, chunk); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("read %s chunk %d: %w", path, i, err)
		}
		chunks[i] = chunk
	}
	return chunks, nil
}

// readChunkAt reads the single NodeSize chunk at the given leaf index.
func readChunkAt(path string, index uint64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	chunk := make([]byte, config.NodeSize)
	if _, err := f.ReadAt(chunk, int64(index)*config.NodeSize); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s chunk %d: %w", path, index, err)
	}
	return chunk, nil
}

func writeChunks(path string, chunks [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	for i, chunk := range chunks {
		if _, err := f.Write(chunk); err != nil {
			return fmt.Errorf("write %s chunk %d: %w", path, i, err)
		}
	}
	return f.Close()
}

func commitment(b []byte) (engine.Commitment, error) {
	var c engine.Commitment
	if len(b) != len(c) {
		return c, fmt.Errorf("commitment is %d bytes, want %d", len(b), len(c))
	}
	copy(c[:], b)
	return c, nil
}
