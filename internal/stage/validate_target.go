package stage

import (
	"context"

	"github.com/rp1-run/rp1/internal/validator"
)

// validate-target: L1 and L2 checks on the OpenCode records.
func validateTargetRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	return runRecordStage(ctx, in, deps, StageValidateTarget, func(r Record) (Record, []Warning, error) {
		if verr := validator.ValidateTarget(r.Locator, r.Target); verr != nil {
			return r, nil, verr
		}
		r.Validated = true
		return r, nil, nil
	}), nil
}
