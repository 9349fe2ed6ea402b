package testutil

// Fixture artifacts shared by pipeline tests.
const (
	CommandMD = `---
name: commit
version: 1.0.0
description: Create a git commit
tags: [git]
created: 2025-01-01
---
Use the Bash tool, then TodoWrite the plan.
`

	AgentMD = `---
name: reviewer
description: Reviews code
tools: [Read, Grep, ExitPlanMode]
model: sonnet
---
Read the diff. When done, call ExitPlanMode.
`

	SkillMD = `---
name: pdf
description: Work with PDF files
supportingFiles: [reference.md]
---
See reference.md. Use Read to open files.
`

	// BrokenMD has no closing frontmatter delimiter.
	BrokenMD = `---
name: broken
description: never closed
Body text.
`
)

// BaseTree is a base plugin with one artifact of each kind.
func BaseTree() map[string]string {
	return map[string]string{
		"plugins/base/commands/commit.md":          CommandMD,
		"plugins/base/agents/reviewer.md":          AgentMD,
		"plugins/base/skills/pdf/SKILL.md":         SkillMD,
		"plugins/base/skills/pdf/reference.md":     "# Reference\n",
		"plugins/base/skills/pdf/scripts/split.py": "print('split')\n",
	}
}
