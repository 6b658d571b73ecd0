// Package params manages the parameter cache: the directory holding
// per-circuit proving and verifying keys, and the manifest that
// content-addresses them so mirrors can be checked before use.
package params

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/blake2b"
)

// EnvCacheDir overrides the parameter cache location.
const EnvCacheDir = "MURI_PROOFS_PARAMETER_CACHE"

const defaultCacheDir = "/var/tmp/muri-proof-parameters"

// digestPrefixLen is the number of hex characters of the blake2b-512
// digest kept in the manifest.
const digestPrefixLen = 32

// CacheDir returns the parameter cache directory, honoring EnvCacheDir.
func CacheDir() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return defaultCacheDir
}

// ProvingKeyFile returns the cache file name of a circuit's proving key.
func ProvingKeyFile(circuit string) string {
	return circuit + "_prover.key"
}

// VerifyingKeyFile returns the cache file name of a circuit's verifying key.
func VerifyingKeyFile(circuit string) string {
	return circuit + "_verifier.key"
}

// ProvingKeyPath returns the full cache path of a circuit's proving key.
func ProvingKeyPath(dir, circuit string) string {
	return filepath.Join(dir, ProvingKeyFile(circuit))
}

// VerifyingKeyPath returns the full cache path of a circuit's verifying key.
func VerifyingKeyPath(dir, circuit string) string {
	return filepath.Join(dir, VerifyingKeyFile(circuit))
}

// fileEntry content-addresses one cache file.
func fileEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("read parameter file: %w", err)
	}

	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return Entry{}, fmt.Errorf("multihash %s: %w", filepath.Base(path), err)
	}

	return Entry{
		CID:       cid.NewCidV1(cid.Raw, sum).String(),
		Digest:    fileDigest(data),
		SizeBytes: uint64(len(data)),
	}, nil
}

// fileDigest is the manifest digest of a parameter file: the leading
// hex characters of its blake2b-512 hash.
func fileDigest(data []byte) string {
	sum := blake2b.Sum512(data)
	return hex.EncodeToString(sum[:])[:digestPrefixLen]
}
