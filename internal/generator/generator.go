// Package generator serializes OpenCode records into file text and builds
// the build manifest. Output is byte-for-byte deterministic: frontmatter keys
// follow the registry field order, extra keys follow in sorted order and
// nested mappings are sorted by key.
package generator

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/registry"
)

// GenerationError reports a record that cannot be serialized.
type GenerationError struct {
	File    string
	Message string
}

func (e *GenerationError) Error() string {
	if e.File == "" {
		return e.Message
	}
	return e.File + ": " + e.Message
}

// GenerateCommandFile renders a command file.
func GenerateCommandFile(file string, t *artifact.OpenCodeCommand, reg *registry.Registry) (string, error) {
	values := map[string]*yaml.Node{
		"name":        scalarNode(t.Name),
		"version":     scalarNode(t.Version),
		"description": scalarNode(t.Description),
		"tags":        stringListNode(t.Tags),
		"created":     scalarNode(t.Created),
	}
	if t.Author != "" {
		values["author"] = scalarNode(t.Author)
	}
	if t.ArgumentHint != "" {
		values["argument-hint"] = scalarNode(t.ArgumentHint)
	}
	return generate(file, reg.FieldOrder(artifact.KindCommand), values, t.Extra, t.Body)
}

// GenerateAgentFile renders an agent file. A nil tool list omits the tools key.
func GenerateAgentFile(file string, t *artifact.OpenCodeAgent, reg *registry.Registry) (string, error) {
	values := map[string]*yaml.Node{
		"name":        scalarNode(t.Name),
		"description": scalarNode(t.Description),
		"mode":        scalarNode(t.Mode),
	}
	if t.Model != "" {
		values["model"] = scalarNode(t.Model)
	}
	if t.Tools != nil {
		values["tools"] = stringListNode(t.Tools)
	}
	return generate(file, reg.FieldOrder(artifact.KindAgent), values, nil, t.Body)
}

// GenerateSkillFile renders a SKILL.md file.
func GenerateSkillFile(file string, t *artifact.OpenCodeSkill, reg *registry.Registry) (string, error) {
	values := map[string]*yaml.Node{
		"name":        scalarNode(t.Name),
		"description": scalarNode(t.Description),
	}
	if len(t.SupportingFiles) > 0 {
		values["supportingFiles"] = stringListNode(t.SupportingFiles)
	}
	return generate(file, reg.FieldOrder(artifact.KindSkill), values, t.Extra, t.Body)
}

// Generate dispatches on the concrete target type.
func Generate(file string, target any, reg *registry.Registry) (string, error) {
	switch t := target.(type) {
	case *artifact.OpenCodeCommand:
		return GenerateCommandFile(file, t, reg)
	case *artifact.OpenCodeAgent:
		return GenerateAgentFile(file, t, reg)
	case *artifact.OpenCodeSkill:
		return GenerateSkillFile(file, t, reg)
	default:
		return "", &GenerationError{File: file, Message: fmt.Sprintf("unsupported target type %T", target)}
	}
}

func generate(file string, order []string, values map[string]*yaml.Node, extra map[string]any, body string) (string, error) {
	fields := make([]field, 0, len(order)+len(extra))
	for _, key := range order {
		if n, ok := values[key]; ok {
			fields = append(fields, field{key: key, value: n})
		}
	}
	for _, key := range sortedKeys(extra) {
		if _, reserved := values[key]; reserved || contains(order, key) {
			continue
		}
		n, err := canonicalNode(extra[key], 0)
		if err != nil {
			return "", &GenerationError{File: file, Message: fmt.Sprintf("cannot serialize frontmatter key %q: %v", key, err)}
		}
		fields = append(fields, field{key: key, value: n})
	}
	out, err := renderDocument(fields, body)
	if err != nil {
		return "", &GenerationError{File: file, Message: fmt.Sprintf("cannot serialize frontmatter: %v", err)}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
