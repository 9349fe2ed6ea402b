package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp1-run/rp1/internal/artifact"
)

func TestGetToolMapping_KnownTools(t *testing.T) {
	reg := Default()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Read", want: "read_file"},
		{in: "Bash", want: "bash_run"},
		{in: "MultiEdit", want: "edit_file"},
	}
	for _, tt := range tests {
		got := GetToolMapping(reg, tt.in)
		require.NotNil(t, got, tt.in)
		assert.Equal(t, tt.want, *got)
	}
}

func TestGetToolMapping_Unsupported(t *testing.T) {
	reg := Default()
	for _, name := range []string{"ExitPlanMode", "EnterPlanMode"} {
		assert.Nil(t, GetToolMapping(reg, name), name)
		_, ok := reg.ToolMapping(name)
		assert.False(t, ok)
	}
}

func TestGetToolMapping_PassThrough(t *testing.T) {
	reg := Default()
	for _, name := range []string{"SomeCustomTool", "mcp__github__search", "", "read_file"} {
		got := GetToolMapping(reg, name)
		require.NotNil(t, got)
		assert.Equal(t, name, *got)
	}
}

func TestGetDirectoryMapping(t *testing.T) {
	reg := Default()
	assert.Equal(t, "agent", GetDirectoryMapping(reg, "agents"))
	assert.Equal(t, "command", GetDirectoryMapping(reg, "commands"))
	assert.Equal(t, "skill", GetDirectoryMapping(reg, "skills"))
	assert.Equal(t, "hooks", GetDirectoryMapping(reg, "hooks"))
}

func TestOptionsOverrideDefaults(t *testing.T) {
	custom := "custom_read"
	reg := New(
		WithTool("Read", &custom),
		WithTool("Bash", nil),
		WithTool("Fancy", nil),
		WithDirectory("hooks", "hook"),
		WithMetadataKey("owner", "author"),
		WithStrictTools(true),
	)

	got, ok := reg.ToolMapping("Read")
	assert.True(t, ok)
	assert.Equal(t, "custom_read", got)
	assert.Nil(t, GetToolMapping(reg, "Bash"))
	assert.True(t, reg.IsKnownTool("Fancy"))
	assert.Contains(t, reg.UnsupportedTools(), "Fancy")
	assert.Equal(t, "hook", reg.DirectoryMapping("hooks"))
	assert.Equal(t, "author", reg.MetadataKey("owner"))
	assert.True(t, reg.StrictTools())

	// The default registry is not affected by another registry's options.
	assert.Equal(t, "read_file", *GetToolMapping(Default(), "Read"))
}

func TestMetadataKeyIdentityDefault(t *testing.T) {
	reg := Default()
	assert.Equal(t, "name", reg.MetadataKey("name"))
	assert.Equal(t, "tools", reg.MetadataKey("allowed-tools"))
	assert.Equal(t, "x-custom", reg.MetadataKey("x-custom"))
}

func TestKnownToolsSorted(t *testing.T) {
	tools := Default().KnownTools()
	require.NotEmpty(t, tools)
	for i := 1; i < len(tools); i++ {
		assert.Less(t, tools[i-1], tools[i])
	}
}

func TestFieldOrderIsCopied(t *testing.T) {
	reg := Default()
	order := reg.FieldOrder(artifact.KindCommand)
	order[0] = "mutated"
	assert.Equal(t, "name", reg.FieldOrder(artifact.KindCommand)[0])
	assert.True(t, reg.IsReservedKey(artifact.KindAgent, "tools"))
	assert.False(t, reg.IsReservedKey(artifact.KindAgent, "color"))
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"ExitPlanMode":  "exit plan mode",
		"EnterPlanMode": "enter plan mode",
		"LS":            "ls",
		"NotebookEdit":  "notebook edit",
		"Read":          "read",
	}
	for in, want := range tests {
		assert.Equal(t, want, Humanize(in), in)
	}
}

func TestToolPattern(t *testing.T) {
	reg := New(WithTool("ReadLines", mapped("read_lines")))
	re := reg.ToolPattern()
	require.NotNil(t, re)

	assert.Equal(t, []string{"ReadLines", "Read", "Bash"}, re.FindAllString("ReadLines then Read, Bash", -1))
	assert.Empty(t, re.FindAllString("Reader BashScript preRead", -1))
	assert.Same(t, re, reg.ToolPattern())
}
