package stage

import (
	"context"
	"path"

	"github.com/rp1-run/rp1/internal/generator"
	"github.com/rp1-run/rp1/internal/registry"
)

// generate-artifacts: render each validated target to its output text and
// compute its path below the output directory.
func generateArtifactsRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	reg := deps.mappings()
	return runRecordStage(ctx, in, deps, StageGenerate, func(r Record) (Record, []Warning, error) {
		return generateRecord(reg, r)
	}), nil
}

func generateRecord(reg *registry.Registry, r Record) (Record, []Warning, error) {
	text, err := generator.Generate(r.Locator, r.Target, reg)
	if err != nil {
		return r, nil, err
	}
	r.Output = text
	r.OutPath = outputPath(reg, r)
	r.Generated = true
	return r, nil, nil
}

// outputPath is <plugin>/<target dir>/<rel>, slash separated.
func outputPath(reg *registry.Registry, r Record) string {
	return path.Join(r.Plugin, reg.DirectoryMapping(r.Kind.SourceDir()), r.Rel)
}
