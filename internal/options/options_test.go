package options

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp1-run/rp1/internal/testutil"
)

func changedSet(names ...string) func(string) bool {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestResolve_Defaults(t *testing.T) {
	root := t.TempDir()
	res, err := Resolve(Flags{Root: root, Changed: changedSet("root")}, "1.2.3", io.Discard)
	require.NoError(t, err)

	assert.Empty(t, res.ConfigPath)
	assert.Equal(t, root, res.Meta.Root)
	assert.Equal(t, "all", res.Meta.Plugin)
	assert.Equal(t, DefaultOutputDir, res.Meta.OutputDir)
	assert.Equal(t, 0, res.Meta.Workers)
	assert.True(t, res.Meta.GitEnabled)
	assert.False(t, res.Meta.AllowPartial)
	assert.Equal(t, "1.2.3", res.Meta.Version)
	assert.False(t, res.Deps.Mappings.StrictTools())
	require.NotNil(t, res.Deps.Logger)
	require.NotNil(t, res.Deps.Now)
}

func TestResolve_ConfigThenFlags(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"rp1.build.cue": `configVersion: "1"
plugin: "dev"
outputDir: "build/out"
workers: 3
strictTools: true
allowPartial: true
filter: inline: "kind == \"agent\""
luaSandbox: timeoutMs: 50
git: enabled: false
tools: { Read: "view", ExitPlanMode: "plan_exit" }
`,
	})

	res, err := Resolve(Flags{Root: root, Changed: changedSet("root")}, "dev", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "rp1.build.cue"), res.ConfigPath)
	assert.Equal(t, "dev", res.Meta.Plugin)
	assert.Equal(t, filepath.Join(root, "build/out"), res.Meta.OutputDir)
	assert.Equal(t, 3, res.Meta.Workers)
	assert.True(t, res.Meta.AllowPartial)
	assert.False(t, res.Meta.GitEnabled)
	assert.Equal(t, `kind == "agent"`, res.Meta.FilterInline)
	require.NotNil(t, res.Meta.LuaSandbox)
	assert.Equal(t, 50, res.Meta.LuaSandbox.TimeoutMs)
	assert.True(t, res.Deps.Mappings.StrictTools())
	got, ok := res.Deps.Mappings.ToolMapping("Read")
	assert.True(t, ok)
	assert.Equal(t, "view", got)
	got, ok = res.Deps.Mappings.ToolMapping("ExitPlanMode")
	assert.True(t, ok)
	assert.Equal(t, "plan_exit", got)

	res, err = Resolve(Flags{
		Root:         root,
		Plugin:       "base",
		OutputDir:    "elsewhere",
		Workers:      1,
		StrictTools:  false,
		AllowPartial: false,
		Filter:       "",
		Changed:      changedSet("root", "plugin", "output-dir", "workers", "strict-tools", "allow-partial", "filter"),
	}, "dev", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "base", res.Meta.Plugin)
	assert.Equal(t, "elsewhere", res.Meta.OutputDir)
	assert.Equal(t, 1, res.Meta.Workers)
	assert.False(t, res.Meta.AllowPartial)
	assert.Empty(t, res.Meta.FilterInline)
	assert.False(t, res.Deps.Mappings.StrictTools())
}

func TestResolve_UsageErrors(t *testing.T) {
	root := t.TempDir()
	cases := []struct {
		name  string
		flags Flags
	}{
		{"plugin", Flags{Root: root, Plugin: "nightly", Changed: changedSet("root", "plugin")}},
		{"workers", Flags{Root: root, Workers: 0, Changed: changedSet("root", "workers")}},
		{"output dir", Flags{Root: root, OutputDir: "", Changed: changedSet("root", "output-dir")}},
		{"log level", Flags{Root: root, LogLevel: "loud", Changed: changedSet("root", "log-level")}},
		{"log format", Flags{Root: root, LogFormat: "xml", Changed: changedSet("root", "log-format")}},
		{"config missing", Flags{Root: root, Config: filepath.Join(root, "nope.cue"), Changed: changedSet("root")}},
		{"config not cue", Flags{Root: root, Config: filepath.Join(root, "rp1.yaml"), Changed: changedSet("root")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.flags, "dev", io.Discard)
			require.Error(t, err)
			var uerr *UsageError
			assert.True(t, errors.As(err, &uerr))
		})
	}
}

func TestResolve_BadConfigVersion(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"rp1.build.cue": `configVersion: "9"` + "\n"})
	_, err := Resolve(Flags{Root: root, Changed: changedSet("root")}, "dev", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported configVersion")
}

func TestResolve_NoGitFlag(t *testing.T) {
	res, err := Resolve(Flags{Root: t.TempDir(), NoGit: true, NoGitignore: true, Changed: changedSet("root")}, "dev", io.Discard)
	require.NoError(t, err)
	assert.False(t, res.Meta.GitEnabled)
	assert.True(t, res.Meta.NoGitignore)
}

func TestUsageError_ExitCode(t *testing.T) {
	err := error(&UsageError{Err: errors.New("bad")})
	ec, ok := err.(interface{ ExitCode() int })
	require.True(t, ok)
	assert.Equal(t, 2, ec.ExitCode())
	assert.Equal(t, "bad", err.Error())
}

func TestResolve_OutputDirMustNotOverlapSources(t *testing.T) {
	root := t.TempDir()
	cases := []struct {
		name string
		out  string
	}{
		{"root itself", root},
		{"ancestor of root", filepath.Dir(root)},
		{"plugins dir", filepath.Join(root, "plugins")},
		{"inside a plugin", filepath.Join(root, "plugins", "base")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(Flags{Root: root, OutputDir: tc.out, Changed: changedSet("root", "output-dir")}, "dev", io.Discard)
			require.Error(t, err)
			var uerr *UsageError
			assert.True(t, errors.As(err, &uerr))
		})
	}

	res, err := Resolve(Flags{Root: root, OutputDir: filepath.Join(root, "dist", "opencode"), Changed: changedSet("root", "output-dir")}, "dev", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dist", "opencode"), res.Meta.OutputDir)
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/a/b", "/a"))
	assert.True(t, within("/a", "/a"))
	assert.True(t, within("/a/..b", "/a"))
	assert.False(t, within("/a", "/a/b"))
	assert.False(t, within("/ab", "/a"))
}
