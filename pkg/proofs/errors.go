package proofs

import (
	"errors"
	"fmt"

	"github.com/MuriData/muri-sector-proofs/pkg/aggregate"
	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/policy"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
	"github.com/MuriData/muri-sector-proofs/pkg/sector"
)

// ErrorCode is the stable machine-readable classification callers
// switch on. Codes are part of the public API; add, never rename.
type ErrorCode string

const (
	CodeSealFailed                 ErrorCode = "SEAL_FAILED"
	CodeInvalidInput               ErrorCode = "INVALID_INPUT"
	CodeProofGenerationFailed      ErrorCode = "PROOF_GENERATION_FAILED"
	CodeAggregationSizeUnsupported ErrorCode = "AGGREGATION_SIZE_UNSUPPORTED"
	CodeMixedProofFamily           ErrorCode = "MIXED_PROOF_FAMILY"
	CodeVersionError               ErrorCode = "VERSION_ERROR"
	CodeIncompatibleFeatureCombo   ErrorCode = "INCOMPATIBLE_FEATURE_COMBINATION"
	CodeUnsupportedSectorSize      ErrorCode = "UNSUPPORTED_SECTOR_SIZE"
	CodeInvalidRegisteredProof     ErrorCode = "INVALID_REGISTERED_PROOF"
	CodeEngineError                ErrorCode = "ENGINE_ERROR"
)

// CodedError is the error type every dispatcher operation returns. It
// wraps the underlying cause, so errors.Is and errors.As keep working
// through it.
type CodedError struct {
	Code    ErrorCode
	Message string
	err     error
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.err
}

// Code extracts the error code, or CodeEngineError for errors that
// escaped classification.
func Code(err error) ErrorCode {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeEngineError
}

// mapErr classifies err into a CodedError. Authorization and registry
// failures carry their own codes; anything else falls back to the
// operation's code.
func mapErr(fallback ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return err
	}

	code := fallback
	var verr *policy.VersionError
	var cerr *policy.FeatureConflictError
	var eerr *engine.Error
	switch {
	case errors.As(err, &verr):
		code = CodeVersionError
	case errors.As(err, &cerr):
		code = CodeIncompatibleFeatureCombo
	case errors.Is(err, policy.ErrFeatureSectorFloor):
		code = CodeUnsupportedSectorSize
	case errors.Is(err, sector.ErrUnsupportedSectorSize):
		code = CodeUnsupportedSectorSize
	case errors.Is(err, registry.ErrInvalidRegisteredProof):
		code = CodeInvalidRegisteredProof
	case errors.Is(err, aggregate.ErrAggregationSizeUnsupported):
		code = CodeAggregationSizeUnsupported
	case errors.Is(err, aggregate.ErrMixedProofFamily):
		code = CodeMixedProofFamily
	case errors.As(err, &eerr) && fallback == "":
		code = CodeEngineError
	}
	if code == "" {
		code = CodeEngineError
	}

	return &CodedError{Code: code, Message: err.Error(), err: err}
}

// invalidInput builds an INVALID_INPUT error directly.
func invalidInput(format string, args ...any) error {
	return &CodedError{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}
