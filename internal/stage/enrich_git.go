package stage

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var errGitNoCommit = errors.New("git repo has no commits")

// enrich-git: record the source commit, and whether any discovered source file
// differs from the index, so the manifest names the revision it was built
// from. A root outside any repository leaves Meta.Source unset.
func enrichGitRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	out := in
	if out.Meta == nil || !out.Meta.GitEnabled {
		return out, nil
	}
	absRoot, err := filepath.Abs(determineRoot(out.Meta))
	if err != nil {
		return Envelope{}, err
	}
	src, err := sourceState(absRoot, out.Records)
	if err != nil {
		deps.logger().Debug("git state unavailable", "root", absRoot, "error", err)
		return out, nil
	}
	meta := *out.Meta
	meta.Source = src
	out.Meta = &meta
	return out, nil
}

func sourceState(absRoot string, records []Record) (*SourceMeta, error) {
	repo, err := openGitRepo(absRoot)
	if err != nil {
		return nil, err
	}
	commit, err := repo.head()
	if err != nil {
		return nil, err
	}
	if commit == "" {
		return nil, errGitNoCommit
	}
	tracked, err := repo.indexEntries()
	if err != nil {
		return nil, err
	}
	for _, f := range sourceFiles(absRoot, records) {
		if fileDirty(repo.worktree, f, tracked) {
			return &SourceMeta{Commit: commit, Dirty: true}, nil
		}
	}
	return &SourceMeta{Commit: commit}, nil
}

// sourceFiles lists every artifact file and skill supporting file, absolute.
func sourceFiles(absRoot string, records []Record) []string {
	var files []string
	for _, r := range records {
		files = append(files, filepath.Join(absRoot, filepath.FromSlash(r.Locator)))
		dir := path.Dir(r.Locator)
		for _, f := range r.SupportingFiles {
			files = append(files, filepath.Join(absRoot, filepath.FromSlash(path.Join(dir, f))))
		}
	}
	return files
}

// fileDirty reports an untracked, unreadable or modified file.
func fileDirty(worktree, abs string, tracked map[string]objectID) bool {
	rel, err := filepath.Rel(worktree, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	id, ok := tracked[filepath.ToSlash(rel)]
	if !ok {
		return true
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return true
	}
	return blobID(b) != id
}
