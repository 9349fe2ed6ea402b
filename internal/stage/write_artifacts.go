package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

const stagingPattern = ".rp1-staging-*"

// write-artifacts: write every generated record into a staging directory next
// to the output directory. Skill supporting files are copied verbatim beside
// the generated SKILL.md. The output directory itself is not touched here.
func writeArtifactsRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.OutputDir == "" {
		return Envelope{}, fmt.Errorf("%s: output directory not set", StageWrite)
	}
	absOut, err := filepath.Abs(in.Meta.OutputDir)
	if err != nil {
		return Envelope{}, err
	}
	absRoot, err := filepath.Abs(determineRoot(in.Meta))
	if err != nil {
		return Envelope{}, err
	}
	if err := checkReplaceable(absOut); err != nil {
		return Envelope{}, fmt.Errorf("%s: %v", StageWrite, err)
	}
	if err := os.MkdirAll(filepath.Dir(absOut), 0o755); err != nil {
		return Envelope{}, fmt.Errorf("%s: %v", StageWrite, err)
	}
	staging, err := os.MkdirTemp(filepath.Dir(absOut), stagingPattern)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %v", StageWrite, err)
	}

	meta := *in.Meta
	meta.StagingDir = staging
	in.Meta = &meta
	out := runRecordStage(ctx, in, deps, StageWrite, func(r Record) (Record, []Warning, error) {
		if !r.Generated {
			return r, nil, nil
		}
		return writeRecord(absRoot, staging, r)
	})
	deps.logger().Debug("artifacts staged", "dir", staging)
	return out, nil
}

func writeRecord(absRoot, staging string, r Record) (Record, []Warning, error) {
	dst := filepath.Join(staging, filepath.FromSlash(r.OutPath))
	if err := writeFile(dst, []byte(r.Output)); err != nil {
		return r, nil, fmt.Errorf("write %s: %v", r.OutPath, err)
	}
	if len(r.SupportingFiles) > 0 {
		srcDir := filepath.Dir(filepath.Join(absRoot, filepath.FromSlash(r.Locator)))
		dstDir := filepath.Dir(dst)
		for _, f := range r.SupportingFiles {
			if err := copyFile(filepath.Join(srcDir, filepath.FromSlash(f)), filepath.Join(dstDir, filepath.FromSlash(f))); err != nil {
				return r, nil, fmt.Errorf("copy %s: %v", path.Join(path.Dir(r.OutPath), f), err)
			}
		}
	}
	r.Written = true
	return r, nil, nil
}

func writeFile(dst string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	st, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
