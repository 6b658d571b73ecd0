// Package apiver defines the proofs API version lattice and the optional
// feature tags gated on it. Versions are ordered semver triples; features
// are monotonic: once introduced at a version they stay legal for every
// later version unless explicitly deprecated.
package apiver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an ordered (major, minor, patch) triple.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// Published API versions. The set is append-only: the behavior of a
// released version is frozen forever.
var (
	V1_0_0 = Version{1, 0, 0}
	V1_1_0 = Version{1, 1, 0}
	V1_2_0 = Version{1, 2, 0}
)

// Parse reads a version from its "major.minor.patch" form.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid api version %q", s)
	}
	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid api version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{nums[0], nums[1], nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 as v orders before, equal to, or after o.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpUint(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpUint(v.Minor, o.Minor)
	default:
		return cmpUint(v.Patch, o.Patch)
	}
}

// AtLeast reports whether v >= o.
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Feature is an optional API capability introduced at some version.
type Feature uint8

const (
	FeatureAggregation Feature = iota
	FeatureSyntheticPoRep
	FeatureNonInteractivePoRep
	FeatureFixedRowsToDiscard
)

func (f Feature) String() string {
	switch f {
	case FeatureAggregation:
		return "aggregation"
	case FeatureSyntheticPoRep:
		return "synthetic-porep"
	case FeatureNonInteractivePoRep:
		return "non-interactive-porep"
	case FeatureFixedRowsToDiscard:
		return "fixed-rows-to-discard"
	default:
		return fmt.Sprintf("unknown-feature(%d)", uint8(f))
	}
}

// HasFeature reports whether f is present in feats.
func HasFeature(feats []Feature, f Feature) bool {
	for _, g := range feats {
		if g == f {
			return true
		}
	}
	return false
}

// FeatureNames renders a feature list for error messages and logs.
func FeatureNames(feats []Feature) string {
	names := make([]string, len(feats))
	for i, f := range feats {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}
