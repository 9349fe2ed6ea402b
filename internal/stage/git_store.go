package stage

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	errGitRepoNotFound = errors.New("git repo not found")
	errIndexTruncated  = errors.New("index: truncated entry")
)

type objectID [sha1.Size]byte

// gitRepo is the part of a repository's metadata enrich-git reads: HEAD,
// refs and the index. Objects are never opened.
type gitRepo struct {
	worktree string
	dir      string
	common   string // shared git dir of a linked worktree, else dir
}

// openGitRepo walks up from start to the first directory holding .git.
func openGitRepo(start string) (*gitRepo, error) {
	cur := start
	for {
		dotGit := filepath.Join(cur, ".git")
		if st, err := os.Stat(dotGit); err == nil {
			dir := dotGit
			if !st.IsDir() {
				if dir, err = readGitFile(cur, dotGit); err != nil {
					return nil, err
				}
			}
			return &gitRepo{worktree: cur, dir: dir, common: commonDir(dir)}, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, errGitRepoNotFound
		}
		cur = parent
	}
}

// readGitFile follows the "gitdir: <path>" file used by worktrees and submodules.
func readGitFile(worktree, p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	target, ok := strings.CutPrefix(strings.TrimSpace(string(b)), "gitdir:")
	if !ok {
		return "", fmt.Errorf("%s: not a gitdir file", p)
	}
	return absUnder(worktree, strings.TrimSpace(target)), nil
}

func commonDir(dir string) string {
	b, err := os.ReadFile(filepath.Join(dir, "commondir"))
	if err != nil {
		return dir
	}
	return absUnder(dir, strings.TrimSpace(string(b)))
}

func absUnder(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// head resolves HEAD to a commit id. An unborn branch yields "".
func (g *gitRepo) head() (string, error) {
	b, err := os.ReadFile(filepath.Join(g.dir, "HEAD"))
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(string(b))
	ref, symbolic := strings.CutPrefix(content, "ref:")
	if !symbolic {
		return content, nil
	}
	return g.lookupRef(strings.TrimSpace(ref))
}

// lookupRef checks the loose ref first, then packed-refs.
func (g *gitRepo) lookupRef(name string) (string, error) {
	for _, dir := range []string{g.dir, g.common} {
		if b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name))); err == nil {
			return strings.TrimSpace(string(b)), nil
		}
	}
	b, err := os.ReadFile(filepath.Join(g.common, "packed-refs"))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(b), "\n") {
		id, ref, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok || strings.HasPrefix(id, "#") {
			continue
		}
		if ref == name {
			return id, nil
		}
	}
	return "", nil
}

// indexEntries maps path to blob id for every merged (stage 0) entry of a
// version 2 index. A repository without an index has no tracked files.
func (g *gitRepo) indexEntries() (map[string]objectID, error) {
	b, err := os.ReadFile(filepath.Join(g.dir, "index"))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]objectID{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) < 12 || string(b[:4]) != "DIRC" {
		return nil, errors.New("index: bad signature")
	}
	if v := binary.BigEndian.Uint32(b[4:8]); v != 2 {
		return nil, fmt.Errorf("index: unsupported version %d", v)
	}
	n := binary.BigEndian.Uint32(b[8:12])

	// Fixed part: ctime, mtime, dev, ino, mode, uid, gid, size (40 bytes),
	// object id (20) and flags (2). The NUL-terminated path follows and the
	// whole entry is padded to a multiple of 8.
	const fixed = 62
	out := make(map[string]objectID, n)
	off := 12
	for i := uint32(0); i < n; i++ {
		if off+fixed > len(b) {
			return nil, errIndexTruncated
		}
		end := bytes.IndexByte(b[off+fixed:], 0)
		if end < 0 {
			return nil, errIndexTruncated
		}
		var id objectID
		copy(id[:], b[off+40:off+60])
		flags := binary.BigEndian.Uint16(b[off+60 : off+62])
		if (flags>>12)&0x3 == 0 {
			out[string(b[off+fixed:off+fixed+end])] = id
		}
		off += (fixed + end + 8) &^ 7
	}
	return out, nil
}

// blobID is the id git assigns to content stored as a blob.
func blobID(content []byte) objectID {
	// nosemgrep: go.lang.security.audit.crypto.use_of_weak_crypto.use-of-sha1
	h := sha1.New()
	_, _ = h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	_, _ = h.Write(content)
	var id objectID
	h.Sum(id[:0])
	return id
}
