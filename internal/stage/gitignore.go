package stage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreSet answers .gitignore queries for paths below root. Each directory's
// .gitignore is read at most once. A nil set ignores nothing.
type ignoreSet struct {
	root  string
	byDir map[string][]gitignore.Pattern
}

func newIgnoreSet(root string) *ignoreSet {
	return &ignoreSet{root: root, byDir: map[string][]gitignore.Pattern{}}
}

// patternsIn returns the patterns of dir/.gitignore; dir is slash-separated
// and "" for the root.
func (s *ignoreSet) patternsIn(dir string) []gitignore.Pattern {
	if ps, ok := s.byDir[dir]; ok {
		return ps
	}
	var domain []string
	if dir != "" {
		domain = strings.Split(dir, "/")
	}
	var ps []gitignore.Pattern
	if b, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(dir), ".gitignore")); err == nil {
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			ps = append(ps, gitignore.ParsePattern(line, domain))
		}
	}
	s.byDir[dir] = ps
	return ps
}

// Ignored reports whether rel, relative to root, is excluded by any
// .gitignore between root and rel's parent.
func (s *ignoreSet) Ignored(rel string, isDir bool) bool {
	if s == nil || rel == "" || rel == "." {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	var ps []gitignore.Pattern
	for i := range parts {
		ps = append(ps, s.patternsIn(strings.Join(parts[:i], "/"))...)
	}
	if len(ps) == 0 {
		return false
	}
	return gitignore.NewMatcher(ps).Match(parts, isDir)
}
