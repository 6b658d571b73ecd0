package policy

import (
	"errors"
	"fmt"

	"github.com/MuriData/muri-sector-proofs/pkg/apiver"
)

// ErrFeatureSectorFloor marks rejections where a feature is legal at the
// version but the sector is too small for it.
var ErrFeatureSectorFloor = errors.New("sector below feature minimum")

// VersionError reports a call made below the version a circuit or
// feature requires.
type VersionError struct {
	Circuit string
	Have    apiver.Version
	Need    apiver.Version
	Feature *apiver.Feature
}

func (e *VersionError) Error() string {
	if e.Feature != nil {
		if (e.Need == apiver.Version{}) {
			return fmt.Sprintf("feature %s is not introduced by any api version (circuit %s)",
				*e.Feature, e.Circuit)
		}
		return fmt.Sprintf("feature %s requires api version %s, call ran at %s (circuit %s)",
			*e.Feature, e.Need, e.Have, e.Circuit)
	}
	return fmt.Sprintf("circuit %s requires api version %s, call ran at %s",
		e.Circuit, e.Need, e.Have)
}

// FeatureConflictError reports two features that can never be combined.
type FeatureConflictError struct {
	A, B    apiver.Feature
	Circuit string
}

func (e *FeatureConflictError) Error() string {
	return fmt.Sprintf("features %s and %s are mutually exclusive (circuit %s)", e.A, e.B, e.Circuit)
}
