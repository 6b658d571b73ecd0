package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ManifestFile is the manifest's file name inside the parameter cache.
const ManifestFile = "manifest.json"

var (
	ErrMissingEntry   = errors.New("parameter file not in manifest")
	ErrDigestMismatch = errors.New("parameter file digest mismatch")
)

// Entry content-addresses one parameter file.
type Entry struct {
	CID       string `json:"cid"`
	Digest    string `json:"digest"`
	SizeBytes uint64 `json:"size_bytes"`
}

// Manifest maps parameter file names to their content addresses.
type Manifest map[string]Entry

// Load reads a manifest from path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// Save writes the manifest to path.
func (m Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Lookup returns the entry for a parameter file name.
func (m Manifest) Lookup(name string) (Entry, error) {
	e, ok := m[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrMissingEntry, name)
	}
	return e, nil
}

// Names returns the manifest's file names in sorted order.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Publish content-addresses the key files of the given circuits in dir
// and writes the resulting manifest next to them. Both the proving and
// the verifying key of every circuit must be present.
func Publish(dir string, circuits []string) (Manifest, error) {
	m := make(Manifest, 2*len(circuits))
	for _, circuit := range circuits {
		for _, name := range []string{ProvingKeyFile(circuit), VerifyingKeyFile(circuit)} {
			entry, err := fileEntry(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("publish %s: %w", circuit, err)
			}
			m[name] = entry
		}
	}
	if err := m.Save(filepath.Join(dir, ManifestFile)); err != nil {
		return nil, err
	}
	return m, nil
}

// Check verifies that a cached parameter file matches its manifest
// entry before it is trusted.
func (m Manifest) Check(dir, name string) error {
	entry, err := m.Lookup(name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read parameter file: %w", err)
	}
	if uint64(len(data)) != entry.SizeBytes {
		return fmt.Errorf("%w: %s: size %d, manifest says %d",
			ErrDigestMismatch, name, len(data), entry.SizeBytes)
	}
	if got := fileDigest(data); got != entry.Digest {
		return fmt.Errorf("%w: %s: digest %s, manifest says %s",
			ErrDigestMismatch, name, got, entry.Digest)
	}
	return nil
}

// CheckAll verifies every file the manifest names.
func (m Manifest) CheckAll(dir string) error {
	for _, name := range m.Names() {
		if err := m.Check(dir, name); err != nil {
			return err
		}
	}
	return nil
}
