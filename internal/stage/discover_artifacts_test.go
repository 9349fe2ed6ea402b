package stage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/testutil"
)

func locators(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Locator)
	}
	return out
}

func TestDiscover_KindsAndOrder(t *testing.T) {
	root := t.TempDir()
	files := testutil.BaseTree()
	files["plugins/base/commands/git/push.md"] = testutil.CommandMD
	files["plugins/base/commands/notes.txt"] = "ignored\n"
	files["plugins/base/skills/empty/readme.md"] = "no SKILL.md here\n"
	testutil.WriteTree(t, root, files)

	out, err := discoverArtifactsRunner(context.Background(), Envelope{Meta: &Meta{Root: root, Plugin: "base"}}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"plugins/base/agents/reviewer.md",
		"plugins/base/commands/commit.md",
		"plugins/base/commands/git/push.md",
		"plugins/base/skills/pdf/SKILL.md",
	}, locators(out.Records))
	assert.Equal(t, 4, out.Meta.Discovered)

	push := out.Records[2]
	assert.Equal(t, artifact.KindCommand, push.Kind)
	assert.Equal(t, "git/push.md", push.Rel)
	assert.Equal(t, "push", push.Name)

	skill := out.Records[3]
	assert.Equal(t, artifact.KindSkill, skill.Kind)
	assert.Equal(t, "pdf", skill.Name)
	assert.Equal(t, "pdf/SKILL.md", skill.Rel)
	assert.Equal(t, []string{"reference.md", "scripts/split.py"}, skill.SupportingFiles)
}

func TestDiscover_RespectsGitignore(t *testing.T) {
	root := t.TempDir()
	files := testutil.BaseTree()
	files[".gitignore"] = "plugins/base/commands/secret.md\n*.pyc\n"
	files["plugins/base/commands/secret.md"] = testutil.CommandMD
	files["plugins/base/skills/pdf/cache.pyc"] = "bytes"
	testutil.WriteTree(t, root, files)

	out, err := discoverArtifactsRunner(context.Background(), Envelope{Meta: &Meta{Root: root, Plugin: "base"}}, Deps{})
	require.NoError(t, err)
	assert.NotContains(t, locators(out.Records), "plugins/base/commands/secret.md")
	assert.Equal(t, []string{"reference.md", "scripts/split.py"}, out.Records[len(out.Records)-1].SupportingFiles)

	out, err = discoverArtifactsRunner(context.Background(), Envelope{Meta: &Meta{Root: root, Plugin: "base", NoGitignore: true}}, Deps{})
	require.NoError(t, err)
	assert.Contains(t, locators(out.Records), "plugins/base/commands/secret.md")
}

func TestDiscover_PluginScope(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.BaseTree())

	_, err := discoverArtifactsRunner(context.Background(), Envelope{Meta: &Meta{Root: root, Plugin: "dev"}}, Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugins/dev")

	out, err := discoverArtifactsRunner(context.Background(), Envelope{Meta: &Meta{Root: root, Plugin: "all"}}, Deps{})
	require.NoError(t, err)
	assert.Len(t, out.Records, 3)

	_, err = discoverArtifactsRunner(context.Background(), Envelope{Meta: &Meta{Root: t.TempDir(), Plugin: "all"}}, Deps{})
	require.Error(t, err)

	_, err = discoverArtifactsRunner(context.Background(), Envelope{Meta: &Meta{Root: root, Plugin: "nightly"}}, Deps{})
	require.Error(t, err)
}

func TestDiscover_AllPluginsTagged(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"plugins/base/commands/a.md": testutil.CommandMD,
		"plugins/dev/commands/b.md":  testutil.CommandMD,
	})
	out, err := discoverArtifactsRunner(context.Background(), Envelope{Meta: &Meta{Root: root, Plugin: "all"}}, Deps{})
	require.NoError(t, err)
	require.Len(t, out.Records, 2)
	assert.Equal(t, "base", out.Records[0].Plugin)
	assert.Equal(t, "dev", out.Records[1].Plugin)
}
