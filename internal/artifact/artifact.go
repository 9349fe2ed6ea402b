// Package artifact defines the in-memory records the build pipeline moves
// between stages: Claude Code source artifacts (commands, agents, skills)
// and their OpenCode counterparts.
package artifact

import (
	"fmt"
	"strings"
)

// Kind identifies the artifact family.
type Kind string

const (
	KindCommand Kind = "command"
	KindAgent   Kind = "agent"
	KindSkill   Kind = "skill"
)

// Kinds lists every artifact kind in discovery order.
var Kinds = []Kind{KindCommand, KindAgent, KindSkill}

// SourceDir returns the Claude Code directory that holds artifacts of this kind.
func (k Kind) SourceDir() string {
	switch k {
	case KindCommand:
		return "commands"
	case KindAgent:
		return "agents"
	case KindSkill:
		return "skills"
	default:
		return string(k)
	}
}

// SkillFileName is the entry file of a skill directory.
const SkillFileName = "SKILL.md"

// Plugin scopes accepted by the build command.
const (
	PluginBase = "base"
	PluginDev  = "dev"
	PluginAll  = "all"
)

// Plugins returns the concrete plugin names covered by a scope.
func Plugins(scope string) ([]string, error) {
	switch strings.TrimSpace(scope) {
	case PluginBase:
		return []string{PluginBase}, nil
	case PluginDev:
		return []string{PluginDev}, nil
	case PluginAll, "":
		return []string{PluginBase, PluginDev}, nil
	default:
		return nil, fmt.Errorf("invalid plugin %q: expected one of %s, %s, %s", scope, PluginBase, PluginDev, PluginAll)
	}
}

// Command is a parsed Claude Code slash command.
type Command struct {
	Path         string
	Name         string
	Version      string
	Description  string
	Tags         []string
	Created      string
	Author       string
	ArgumentHint string
	Body         string
	// Extra holds frontmatter keys with no dedicated field, in source order.
	Extra     map[string]any
	ExtraKeys []string
}

// Agent is a parsed Claude Code subagent definition.
type Agent struct {
	Path        string
	Name        string
	Description string
	Tools       []string
	Model       string
	Body        string
	// Dropped lists frontmatter keys the OpenCode agent schema has no room for.
	Dropped []string
}

// Skill is a parsed Claude Code skill (SKILL.md plus supporting files).
type Skill struct {
	Path            string
	Name            string
	Description     string
	Body            string
	SupportingFiles []string
	Extra           map[string]any
	ExtraKeys       []string
}

// OpenCodeCommand is the OpenCode form of a Command.
type OpenCodeCommand struct {
	Name         string   `validate:"required"`
	Version      string   `validate:"required"`
	Description  string   `validate:"required"`
	Tags         []string `validate:"dive,required"`
	Created      string   `validate:"required"`
	Author       string
	ArgumentHint string
	Body         string `validate:"required"`
	Extra        map[string]any
}

// OpenCodeAgent is the OpenCode form of an Agent.
type OpenCodeAgent struct {
	Name        string   `validate:"required"`
	Description string   `validate:"required"`
	Mode        string   `validate:"required,oneof=subagent primary all"`
	Tools       []string `validate:"dive,toolname"`
	Model       string   `validate:"omitempty,model"`
	Body        string   `validate:"required"`
}

// OpenCodeSkill is the OpenCode form of a Skill.
type OpenCodeSkill struct {
	Name            string   `validate:"required"`
	Description     string   `validate:"required"`
	Body            string   `validate:"required"`
	SupportingFiles []string `validate:"dive,required,relpath"`
	Extra           map[string]any
}

// AgentModeSubagent is the OpenCode mode given to converted Claude Code agents.
const AgentModeSubagent = "subagent"

// AcceptedModels are the model identifiers a Claude Code agent may declare.
var AcceptedModels = []string{"sonnet", "opus", "haiku", "inherit"}

// IsAcceptedModel reports whether m is one of AcceptedModels.
func IsAcceptedModel(m string) bool {
	for _, a := range AcceptedModels {
		if a == m {
			return true
		}
	}
	return false
}
