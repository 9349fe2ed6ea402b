package stage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rp1-run/rp1/internal/generator"
)

// write-manifest: write manifest.json into the staging directory. Only
// artifacts that were written appear in it.
func writeManifestRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	out := in
	if out.Meta == nil || out.Meta.StagingDir == "" {
		return Envelope{}, fmt.Errorf("%s: no staging directory; run %s first", StageWriteManifest, StageWrite)
	}
	results := artifactResults(out)
	for i, r := range out.Records {
		results[i].Success = results[i].Success && r.Written
	}
	info := generator.BuildInfo{
		Version:  out.Meta.Version,
		Plugin:   out.Meta.Plugin,
		Time:     generator.BuildTime(deps.now),
		Failed:   countFailed(out),
		Warnings: len(out.Warnings),
	}
	if out.Meta.Source != nil {
		info.Commit = out.Meta.Source.Commit
		info.Dirty = out.Meta.Source.Dirty
	}
	b, err := generator.MarshalManifest(generator.GenerateManifest(results, info))
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %v", StageWriteManifest, err)
	}
	if err := writeFile(filepath.Join(out.Meta.StagingDir, generator.ManifestFileName), b); err != nil {
		return Envelope{}, fmt.Errorf("%s: %v", StageWriteManifest, err)
	}
	meta := *out.Meta
	meta.Manifest = generator.ManifestFileName
	out.Meta = &meta
	return out, nil
}
