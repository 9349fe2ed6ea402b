package stage

import (
	"context"
	"fmt"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/validator"
)

// validate-source: L2 schema checks on the decoded frontmatter. Skills also
// must list only supporting files that exist next to SKILL.md.
func validateSourceRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	return runRecordStage(ctx, in, deps, StageValidateSource, validateSourceRecord), nil
}

func validateSourceRecord(r Record) (Record, []Warning, error) {
	if verr := validator.ValidateSchema(r.Kind, r.Locator, r.Frontmatter); verr != nil {
		return r, nil, verr
	}
	if r.Kind == artifact.KindSkill {
		if skill, ok := r.Source.(*artifact.Skill); ok {
			if verr := checkSupportingFiles(r.Locator, skill.SupportingFiles, r.SupportingFiles); verr != nil {
				return r, nil, verr
			}
		}
	}
	return r, nil, nil
}

func checkSupportingFiles(file string, declared, present []string) *validator.ValidationError {
	have := make(map[string]struct{}, len(present))
	for _, p := range present {
		have[p] = struct{}{}
	}
	for i, d := range declared {
		if _, ok := have[d]; !ok {
			return &validator.ValidationError{
				File:    file,
				Level:   validator.LevelSchema,
				Message: fmt.Sprintf("supportingFiles[%d] not found in skill directory: %q", i, d),
			}
		}
	}
	return nil
}
