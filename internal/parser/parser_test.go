package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoCommand = `---
name: "demo"
version: "1.0.0"
description: "x"
tags: []
created: "2025-01-01"
author: "t"
x-owner: platform
---
# Demo

Run the demo.
`

func TestSplitFrontmatter(t *testing.T) {
	raw, body, err := SplitFrontmatter("---\nname: a\n---\nbody\n")
	require.NoError(t, err)
	assert.Equal(t, "name: a\n", raw)
	assert.Equal(t, "body\n", body)
}

func TestSplitFrontmatter_PreservesBodyVerbatim(t *testing.T) {
	body := "  indented\n\n---\ntrailing   \n\n"
	_, got, err := SplitFrontmatter("---\nname: a\n---\n" + body)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestSplitFrontmatter_CRLF(t *testing.T) {
	raw, body, err := SplitFrontmatter("---\r\nname: a\r\n---\r\nbody\r\n")
	require.NoError(t, err)
	assert.Equal(t, "name: a\r\n", raw)
	assert.Equal(t, "body\r\n", body)
}

func TestSplitFrontmatter_ClosingAtEOF(t *testing.T) {
	raw, body, err := SplitFrontmatter("---\nname: a\n---")
	require.NoError(t, err)
	assert.Equal(t, "name: a\n", raw)
	assert.Equal(t, "", body)
}

func TestSplitFrontmatter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMsg string
	}{
		{name: "empty", in: "", wantMsg: MsgMissingOpening},
		{name: "no opening", in: "name: a\n---\nbody", wantMsg: MsgMissingOpening},
		{name: "text before opening", in: "hello\n---\nname: a\n---\n", wantMsg: MsgMissingOpening},
		{name: "no closing", in: "---\nname: a\nbody\n", wantMsg: MsgMissingClosing},
		{name: "only opening", in: "---", wantMsg: MsgMissingClosing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitFrontmatter(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestDecodeFrontmatter_KeyOrder(t *testing.T) {
	meta, keys, err := DecodeFrontmatter("zeta: 1\nalpha: two\nmid: [a, b]\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
	assert.Equal(t, "two", meta["alpha"])
}

func TestDecodeFrontmatter_EmptyAndInvalid(t *testing.T) {
	meta, keys, err := DecodeFrontmatter("")
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.Empty(t, keys)

	_, _, err = DecodeFrontmatter("name: [unclosed\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML frontmatter")

	_, _, err = DecodeFrontmatter("- a\n- b\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top-level must be a mapping")
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand(demoCommand, "plugins/base/commands/demo.md")
	require.NoError(t, err)

	assert.Equal(t, "demo", cmd.Name)
	assert.Equal(t, "1.0.0", cmd.Version)
	assert.Equal(t, "x", cmd.Description)
	assert.Empty(t, cmd.Tags)
	assert.Equal(t, "2025-01-01", cmd.Created)
	assert.Equal(t, "t", cmd.Author)
	assert.Equal(t, "# Demo\n\nRun the demo.\n", cmd.Body)
	assert.Equal(t, []string{"x-owner"}, cmd.ExtraKeys)
	assert.Equal(t, "platform", cmd.Extra["x-owner"])
}

func TestParseCommand_UnquotedDate(t *testing.T) {
	cmd, err := ParseCommand("---\nname: a\ncreated: 2025-03-04\n---\nbody\n", "a.md")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", cmd.Created)
}

func TestParseAgent(t *testing.T) {
	content := "---\nname: reviewer\ndescription: Reviews code\ntools:\n  - Read\n  - ExitPlanMode\nmodel: sonnet\ncolor: blue\n---\nYou review code.\n"
	agent, err := ParseAgent(content, "agents/reviewer.md")
	require.NoError(t, err)
	assert.Equal(t, "reviewer", agent.Name)
	assert.Equal(t, []string{"Read", "ExitPlanMode"}, agent.Tools)
	assert.Equal(t, "sonnet", agent.Model)
	assert.Equal(t, []string{"color"}, agent.Dropped)
	assert.Equal(t, "You review code.\n", agent.Body)
}

func TestParseSkill(t *testing.T) {
	content := "---\nname: pdf\ndescription: Work with PDFs\nsupportingFiles:\n  - reference.md\n  - scripts/fill.py\nlicense: MIT\n---\nUse the scripts.\n"
	skill, err := ParseSkill(content, "skills/pdf/SKILL.md")
	require.NoError(t, err)
	assert.Equal(t, "pdf", skill.Name)
	assert.Equal(t, []string{"reference.md", "scripts/fill.py"}, skill.SupportingFiles)
	assert.Equal(t, "MIT", skill.Extra["license"])
}

func TestParse_ErrorCarriesFile(t *testing.T) {
	_, err := ParseAgent("---\nname: a\n", "agents/broken.md")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "agents/broken.md", perr.File)
	assert.Equal(t, MsgMissingClosing, perr.Message)
	assert.Contains(t, err.Error(), "agents/broken.md")
}
