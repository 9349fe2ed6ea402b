package parser

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rp1-run/rp1/internal/artifact"
)

// Frontmatter keys with a dedicated field per kind.
var (
	commandKeys = []string{"name", "version", "description", "tags", "created", "author", "argument-hint"}
	agentKeys   = []string{"name", "description", "tools", "model"}
	skillKeys   = []string{"name", "description", "supportingFiles"}
)

// ParseCommand parses a Claude Code command file.
func ParseCommand(content, path string) (*artifact.Command, error) {
	doc, err := ParseDocument(content, path)
	if err != nil {
		return nil, err
	}
	return CommandFromDocument(doc, path), nil
}

// CommandFromDocument builds a Command from an already decoded document.
func CommandFromDocument(doc *Document, path string) *artifact.Command {
	m := doc.Meta
	cmd := &artifact.Command{
		Path:         path,
		Name:         asString(m["name"]),
		Version:      asString(m["version"]),
		Description:  asString(m["description"]),
		Tags:         asStringList(m["tags"]),
		Created:      asString(m["created"]),
		Author:       asString(m["author"]),
		ArgumentHint: asString(m["argument-hint"]),
		Body:         doc.Body,
	}
	cmd.Extra, cmd.ExtraKeys = extras(doc, commandKeys)
	return cmd
}

// ParseAgent parses a Claude Code agent file.
func ParseAgent(content, path string) (*artifact.Agent, error) {
	doc, err := ParseDocument(content, path)
	if err != nil {
		return nil, err
	}
	return AgentFromDocument(doc, path), nil
}

// AgentFromDocument builds an Agent from an already decoded document. Keys
// outside the agent schema are listed in Dropped.
func AgentFromDocument(doc *Document, path string) *artifact.Agent {
	m := doc.Meta
	agent := &artifact.Agent{
		Path:        path,
		Name:        asString(m["name"]),
		Description: asString(m["description"]),
		Tools:       asStringList(m["tools"]),
		Model:       asString(m["model"]),
		Body:        doc.Body,
	}
	_, agent.Dropped = extras(doc, agentKeys)
	return agent
}

// ParseSkill parses a SKILL.md file.
func ParseSkill(content, path string) (*artifact.Skill, error) {
	doc, err := ParseDocument(content, path)
	if err != nil {
		return nil, err
	}
	return SkillFromDocument(doc, path), nil
}

// SkillFromDocument builds a Skill from an already decoded document.
func SkillFromDocument(doc *Document, path string) *artifact.Skill {
	m := doc.Meta
	skill := &artifact.Skill{
		Path:            path,
		Name:            asString(m["name"]),
		Description:     asString(m["description"]),
		Body:            doc.Body,
		SupportingFiles: asStringList(m["supportingFiles"]),
	}
	skill.Extra, skill.ExtraKeys = extras(doc, skillKeys)
	return skill
}

// extras returns the frontmatter entries whose keys are not in known, keeping
// source order for the key list.
func extras(doc *Document, known []string) (map[string]any, []string) {
	isKnown := make(map[string]struct{}, len(known))
	for _, k := range known {
		isKnown[k] = struct{}{}
	}
	keys := doc.Keys
	if len(keys) == 0 && len(doc.Meta) > 0 {
		for k := range doc.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	var out map[string]any
	var order []string
	for _, k := range keys {
		if _, ok := isKnown[k]; ok {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[k] = doc.Meta[k]
		order = append(order, k)
	}
	return out, order
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, asString(it))
	}
	return out
}
