package stage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rp1-run/rp1/internal/generator"
)

// commit-output: replace the output directory with the staging directory when
// the run is acceptable, i.e. no failures, or allowPartial with at least one
// written artifact. Otherwise the staging directory is discarded and the
// previous output stays as it was.
func commitOutputRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	out := in
	if out.Meta == nil || out.Meta.StagingDir == "" {
		return out, nil
	}
	meta := *out.Meta
	out.Meta = &meta
	staging := meta.StagingDir
	meta.StagingDir = ""

	if !Acceptable(countFailed(out), countWritten(out), meta.AllowPartial) {
		meta.Manifest = ""
		deps.logger().Debug("output not committed", "failed", countFailed(out))
		return out, os.RemoveAll(staging)
	}
	absOut, err := filepath.Abs(meta.OutputDir)
	if err != nil {
		_ = os.RemoveAll(staging)
		return Envelope{}, err
	}
	if err := swapDir(staging, absOut); err != nil {
		_ = os.RemoveAll(staging)
		return Envelope{}, fmt.Errorf("%s: %v", StageCommit, err)
	}
	meta.Committed = true
	deps.logger().Debug("output committed", "dir", absOut)
	return out, nil
}

// Acceptable reports whether a run with the given counts succeeds.
func Acceptable(failed, succeeded int, allowPartial bool) bool {
	if failed == 0 {
		return true
	}
	return allowPartial && succeeded > 0
}

func countWritten(env Envelope) int {
	n := 0
	for _, r := range env.Records {
		if r.Written && !r.Failed() {
			n++
		}
	}
	return n
}

// checkReplaceable accepts a missing dst, an empty directory, or a previous
// rp1 output (a directory holding manifest.json). Anything else is left alone.
func checkReplaceable(dst string) error {
	st, err := os.Stat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("output %s exists and is not a directory", dst)
	}
	entries, err := os.ReadDir(dst)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dst, generator.ManifestFileName)); err != nil {
		return fmt.Errorf("output %s is not empty and has no %s; refusing to replace it", dst, generator.ManifestFileName)
	}
	return nil
}

// swapDir moves src to dst. An existing dst must pass checkReplaceable; it is
// moved aside first and restored if the final rename fails.
func swapDir(src, dst string) error {
	if err := checkReplaceable(dst); err != nil {
		return err
	}
	backup := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".rp1-previous")
	if err := os.RemoveAll(backup); err != nil {
		return err
	}
	hadPrevious := true
	if err := os.Rename(dst, backup); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		hadPrevious = false
	}
	if err := os.Rename(src, dst); err != nil {
		if hadPrevious {
			if rerr := os.Rename(backup, dst); rerr != nil {
				return fmt.Errorf("%v (restoring previous output: %v)", err, rerr)
			}
		}
		return err
	}
	if hadPrevious {
		return os.RemoveAll(backup)
	}
	return nil
}

// discardStaging removes a staging directory left by an aborted run.
func discardStaging(env Envelope) {
	if env.Meta != nil && env.Meta.StagingDir != "" {
		_ = os.RemoveAll(env.Meta.StagingDir)
	}
}
