package proofs

import (
	"context"
	"io"

	"github.com/MuriData/muri-sector-proofs/pkg/engine"
	"github.com/MuriData/muri-sector-proofs/pkg/registry"
)

// UpdateEncode writes new deal data onto an existing sealed replica
// and returns the updated commitments.
func (d *Dispatcher) UpdateEncode(ctx context.Context, p registry.UpdateProof, req engine.UpdateRequest) (engine.UpdateCommitments, error) {
	call, err := d.updateCall(p)
	if err != nil {
		return engine.UpdateCommitments{}, err
	}
	if req.UnsealedPath == "" || req.SealedRef == "" || req.UpdatedRef == "" {
		return engine.UpdateCommitments{}, invalidInput("update encode needs data, replica and output paths")
	}

	d.log.Info().
		Str("circuit", call.Circuit).
		Msg("encoding sector update")
	out, err := d.eng.UpdateEncode(ctx, call, req)
	return out, mapErr(CodeSealFailed, err)
}

// UpdateDecode recovers deal data from an updated replica.
func (d *Dispatcher) UpdateDecode(ctx context.Context, p registry.UpdateProof, req engine.UpdateDecodeRequest) error {
	call, err := d.updateCall(p)
	if err != nil {
		return err
	}
	if req.UpdatedRef == "" || req.SealedRef == "" || req.OutPath == "" {
		return invalidInput("update decode needs replica and output paths")
	}
	return mapErr(CodeEngineError, d.eng.UpdateDecode(ctx, call, req))
}

// UpdateDecodeRange streams a byte range of the deal data from an
// updated replica into out.
func (d *Dispatcher) UpdateDecodeRange(ctx context.Context, p registry.UpdateProof, out io.Writer, req engine.UpdateDecodeRangeRequest) error {
	call, err := d.updateCall(p)
	if err != nil {
		return err
	}
	if out == nil {
		return invalidInput("nil decode output writer")
	}
	if req.UpdatedRef == "" || req.SealedRef == "" {
		return invalidInput("update decode needs updated and sealed replica paths")
	}
	if req.Size == 0 {
		return invalidInput("zero-length decode range")
	}
	return mapErr(CodeEngineError, d.eng.UpdateDecodeRange(ctx, call, out, req))
}

// UpdateRemoveData restores the pre-update replica from an updated
// replica and the deal data it encodes.
func (d *Dispatcher) UpdateRemoveData(ctx context.Context, p registry.UpdateProof, req engine.UpdateRemoveDataRequest) error {
	call, err := d.updateCall(p)
	if err != nil {
		return err
	}
	if req.UpdatedRef == "" || req.UnsealedPath == "" || req.OutPath == "" {
		return invalidInput("remove data needs replica, data and output paths")
	}
	return mapErr(CodeEngineError, d.eng.UpdateRemoveData(ctx, call, req))
}

// UpdateProve proves an update encoding.
func (d *Dispatcher) UpdateProve(ctx context.Context, p registry.UpdateProof, req engine.UpdateProveRequest) (engine.Proof, error) {
	call, err := d.updateCall(p)
	if err != nil {
		return engine.Proof{}, err
	}
	out, err := d.eng.UpdateProve(ctx, call, req)
	return out, mapErr(CodeProofGenerationFailed, err)
}

// UpdateVerify checks an update proof. A failed check returns
// (false, nil).
func (d *Dispatcher) UpdateVerify(ctx context.Context, p registry.UpdateProof, info engine.UpdateVerifyInfo) (bool, error) {
	call, err := d.updateCall(p)
	if err != nil {
		return false, err
	}
	ok, err := d.eng.UpdateVerify(ctx, call, info)
	return ok, mapErr(CodeEngineError, err)
}
