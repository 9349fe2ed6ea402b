package stage

import (
	"context"
	"fmt"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/registry"
	"github.com/rp1-run/rp1/internal/transform"
)

// transform-artifacts: map each source record onto its OpenCode form. Under
// strict tools an unknown tool fails the record instead of warning.
func transformArtifactsRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	reg := deps.mappings()
	return runRecordStage(ctx, in, deps, StageTransform, func(r Record) (Record, []Warning, error) {
		return transformRecord(reg, r)
	}), nil
}

func transformRecord(reg *registry.Registry, r Record) (Record, []Warning, error) {
	var tw []transform.Warning
	switch src := r.Source.(type) {
	case *artifact.Command:
		r.Target, tw = transform.Command(src, reg)
	case *artifact.Agent:
		r.Target, tw = transform.Agent(src, reg)
	case *artifact.Skill:
		r.Target, tw = transform.Skill(src, reg)
	default:
		return r, nil, &transform.TransformError{File: r.Locator, Message: fmt.Sprintf("no parsed source for %s artifact", r.Kind)}
	}
	if reg.StrictTools() {
		if terr := transform.StrictError(r.Locator, tw); terr != nil {
			return r, nil, terr
		}
	}
	warnings := make([]Warning, 0, len(tw))
	for _, w := range tw {
		warnings = append(warnings, Warning{Stage: StageTransform, Locator: r.Locator, Code: w.Code, Message: w.Message})
	}
	r.Transformed = true
	return r, warnings, nil
}
