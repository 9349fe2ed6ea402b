package generator

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/parser"
	"github.com/rp1-run/rp1/internal/registry"
	"github.com/rp1-run/rp1/internal/transform"
)

func TestGenerateCommandFile_Demo(t *testing.T) {
	cmd := &artifact.OpenCodeCommand{
		Name:        "demo",
		Version:     "1.0.0",
		Description: "x",
		Tags:        []string{},
		Created:     "2025-01-01",
		Author:      "t",
		Body:        "# Demo\n",
	}
	got, err := GenerateCommandFile("command/demo.md", cmd, registry.Default())
	require.NoError(t, err)

	want := "---\n" +
		"name: demo\n" +
		"version: 1.0.0\n" +
		"description: x\n" +
		"tags: []\n" +
		"created: \"2025-01-01\"\n" +
		"author: t\n" +
		"---\n" +
		"# Demo\n"
	assert.Equal(t, want, got)
}

func TestGenerateAgentFile_FieldOrderIgnoresInputOrder(t *testing.T) {
	agent := &artifact.OpenCodeAgent{
		Name:        "reviewer",
		Description: "Reviews: code",
		Mode:        artifact.AgentModeSubagent,
		Tools:       []string{"read_file", "grep"},
		Model:       "sonnet",
		Body:        "Review.\n",
	}
	got, err := GenerateAgentFile("agent/reviewer.md", agent, registry.Default())
	require.NoError(t, err)
	want := "---\n" +
		"name: reviewer\n" +
		"description: 'Reviews: code'\n" +
		"mode: subagent\n" +
		"model: sonnet\n" +
		"tools:\n" +
		"  - read_file\n" +
		"  - grep\n" +
		"---\n" +
		"Review.\n"
	assert.Equal(t, want, got)
}

func TestGenerateAgentFile_EmptyToolList(t *testing.T) {
	agent := &artifact.OpenCodeAgent{Name: "a", Description: "d", Mode: "subagent", Tools: []string{}, Body: "b"}
	got, err := GenerateAgentFile("agent/a.md", agent, registry.Default())
	require.NoError(t, err)
	assert.Contains(t, got, "tools: []\n")

	agent.Tools = nil
	got, err = GenerateAgentFile("agent/a.md", agent, registry.Default())
	require.NoError(t, err)
	assert.NotContains(t, got, "tools")
}

func TestGenerateSkillFile_ExtrasSorted(t *testing.T) {
	skill := &artifact.OpenCodeSkill{
		Name:            "pdf",
		Description:     "d",
		Body:            "Use it.\n",
		SupportingFiles: []string{"reference.md"},
		Extra: map[string]any{
			"zeta":    "last",
			"license": "MIT",
			"meta":    map[string]any{"b": 2, "a": []any{"x"}},
		},
	}
	got, err := GenerateSkillFile("skill/pdf/SKILL.md", skill, registry.Default())
	require.NoError(t, err)
	want := "---\n" +
		"name: pdf\n" +
		"description: d\n" +
		"supportingFiles:\n" +
		"  - reference.md\n" +
		"license: MIT\n" +
		"meta:\n" +
		"  a:\n" +
		"    - x\n" +
		"  b: 2\n" +
		"zeta: last\n" +
		"---\n" +
		"Use it.\n"
	assert.Equal(t, want, got)
}

func TestGenerate_UnserializableExtra(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	cmd := &artifact.OpenCodeCommand{Name: "a", Body: "b", Extra: map[string]any{"loop": cyclic}}

	_, err := Generate("command/a.md", cmd, registry.Default())
	require.Error(t, err)
	var gerr *GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "command/a.md", gerr.File)
	assert.Contains(t, gerr.Message, "loop")

	_, err = Generate("x.md", struct{}{}, registry.Default())
	require.Error(t, err)
}

func TestRoundTripDeterminism(t *testing.T) {
	src := "---\n" +
		"x-owner: platform\n" +
		"author: t\n" +
		"created: 2025-01-01\n" +
		"tags: [b, a]\n" +
		"description: x\n" +
		"version: \"1.0.0\"\n" +
		"name: demo\n" +
		"allowed-tools: [Read, Bash]\n" +
		"---\n" +
		"Use Read then Bash.\n"

	reg := registry.Default()
	render := func() string {
		cmd, err := parser.ParseCommand(src, "commands/demo.md")
		require.NoError(t, err)
		target, _ := transform.Command(cmd, reg)
		out, err := GenerateCommandFile("command/demo.md", target, reg)
		require.NoError(t, err)
		return out
	}
	first := render()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, render())
	}
	assert.Contains(t, first, "name: demo\n")
	assert.Contains(t, first, "---\nUse read_file then bash_run.\n")
	assert.Contains(t, first, "tools:\n  - read_file\n  - bash_run\n")

	reparsed, err := parser.ParseCommand(first, "command/demo.md")
	require.NoError(t, err)
	assert.Equal(t, "demo", reparsed.Name)
	assert.Equal(t, []string{"b", "a"}, reparsed.Tags)
}

func TestGenerateManifest(t *testing.T) {
	results := []ArtifactResult{
		{Name: "zeta", Path: "base/command/zeta.md", Kind: "command", Plugin: "base", Success: true},
		{Name: "broken", Path: "base/agent/broken.md", Kind: "agent", Plugin: "base"},
		{Name: "pdf", Path: "dev/skill/pdf/SKILL.md", Kind: "skill", Plugin: "dev", Files: []string{"b.md", "a.md"}, Success: true},
		{Name: "alpha", Path: "base/agent/alpha.md", Kind: "agent", Plugin: "base", Success: true},
	}
	info := BuildInfo{Version: "1.2.3", Plugin: "all", Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), Failed: 1, Warnings: 2}
	m := GenerateManifest(results, info)

	require.Len(t, m.Entries, 3)
	assert.Equal(t, "base/agent/alpha.md", m.Entries[0].Path)
	assert.Equal(t, "base/command/zeta.md", m.Entries[1].Path)
	assert.Equal(t, []string{"a.md", "b.md"}, m.Entries[2].Files)
	assert.Equal(t, ManifestCounts{Artifacts: 3, Failed: 1, Warnings: 2}, m.Counts)
	assert.Equal(t, "2025-01-02T03:04:05Z", m.GeneratedAt)
	assert.Nil(t, m.Source)

	b, err := MarshalManifest(m)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), b[len(b)-1])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "1", decoded["schemaVersion"])
	assert.NotContains(t, decoded, "source")
}

func TestBuildTime_SourceDateEpoch(t *testing.T) {
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	got := BuildTime(time.Now)
	assert.Equal(t, int64(1700000000), got.Unix())

	t.Setenv("SOURCE_DATE_EPOCH", "not-a-number")
	fixed := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, fixed, BuildTime(func() time.Time { return fixed }))
}
