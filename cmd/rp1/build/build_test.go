package build

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp1-run/rp1/internal/stage"
	"github.com/rp1-run/rp1/internal/testutil"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func runCmd(t *testing.T, check bool, args ...string) result {
	t.Helper()
	t.Setenv("SOURCE_DATE_EPOCH", "1735689600")
	cmd := NewCmd()
	if check {
		cmd = NewCheckCmd()
	}
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitCodeSuccess
	}
	if ec, ok := err.(interface{ ExitCode() int }); ok {
		return ec.ExitCode()
	}
	return -1
}

func TestBuildCmd_HumanOutput(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.BaseTree())
	out := filepath.Join(t.TempDir(), "opencode")

	res := runCmd(t, false, "--root", root, "--output-dir", out, "--no-git")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "WARN plugins/base/agents/reviewer.md [tool-dropped]")
	assert.Contains(t, res.stdout, "discovered=3 parsed=3 transformed=3 validated=3 written=3 failed=0 warnings=1\n")
	assert.Contains(t, res.stdout, "wrote 3 artifacts to "+out)
	assert.Contains(t, testutil.ReadTree(t, out), "manifest.json")
}

func TestBuildCmd_JSONAndExitCode(t *testing.T) {
	root := t.TempDir()
	files := testutil.BaseTree()
	files["plugins/base/commands/broken.md"] = testutil.BrokenMD
	testutil.WriteTree(t, root, files)
	out := filepath.Join(t.TempDir(), "opencode")

	res := runCmd(t, false, "--root", root, "--output-dir", out, "--json", "--no-git", "--workers", "2")
	assert.Equal(t, exitCodeFailed, exitCode(res.err))
	assert.Equal(t, "build failed: 1 of 4 artifacts failed", res.err.Error())

	var sum stage.BuildSummary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &sum))
	assert.Equal(t, 1, sum.Failed)
	assert.False(t, sum.Committed)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, "plugins/base/commands/broken.md", sum.Errors[0].Locator)
	assert.Empty(t, testutil.ReadTree(t, out))

	res = runCmd(t, false, "--root", root, "--output-dir", out, "--json", "--no-git", "--allow-partial")
	require.NoError(t, res.err)
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &sum))
	assert.True(t, sum.Committed)
	assert.Equal(t, 3, sum.Succeeded())
}

func TestBuildCmd_UsageErrors(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.BaseTree())

	res := runCmd(t, false, "--root", root, "--plugin", "nightly")
	assert.Equal(t, exitCodeUsage, exitCode(res.err))

	res = runCmd(t, false, "--root", root, "--config", filepath.Join(root, "missing.cue"))
	assert.Equal(t, exitCodeUsage, exitCode(res.err))

	res = runCmd(t, false, "--root", root, "extra-arg")
	require.Error(t, res.err)
}

func TestBuildCmd_MissingPluginDir(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.BaseTree())
	res := runCmd(t, false, "--root", root, "--plugin", "dev", "--output-dir", filepath.Join(t.TempDir(), "o"))
	assert.Equal(t, exitCodeFailed, exitCode(res.err))
	assert.Contains(t, res.err.Error(), "plugin directory not found")
}

func TestBuildCmd_ProgressOnStderr(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.BaseTree())
	res := runCmd(t, false, "--root", root, "--output-dir", filepath.Join(t.TempDir(), "o"), "--no-git", "--progress")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "progress stage=discover-artifacts")
	assert.Contains(t, res.stderr, "progress stage=commit-output")
}

func TestCheckCmd_NoOutput(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.BaseTree())
	out := filepath.Join(t.TempDir(), "opencode")

	res := runCmd(t, true, "--root", root, "--output-dir", out)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "written=0 failed=0")
	assert.False(t, strings.Contains(res.stdout, "output left unchanged"))
	assert.Empty(t, testutil.ReadTree(t, out))
}

func TestBuildCmd_FilterFlag(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.BaseTree())
	out := filepath.Join(t.TempDir(), "opencode")

	res := runCmd(t, false, "--root", root, "--output-dir", out, "--no-git", "--filter", `kind == "command"`)
	require.NoError(t, res.err)
	assert.Equal(t, []string{"base/command/commit.md", "manifest.json"}, testutil.Paths(testutil.ReadTree(t, out)))
}
