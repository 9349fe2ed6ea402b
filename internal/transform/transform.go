// Package transform maps parsed Claude Code artifacts onto their OpenCode
// form. Every function here is pure: it reads the registry and the source
// record and returns a new target record plus any warnings.
package transform

import (
	"fmt"
	"strings"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/registry"
)

// Warning codes.
const (
	CodeToolDropped       = "tool-dropped"
	CodeMetadataCollision = "metadata-collision"
	CodeUnknownTool       = "unknown-tool"
	CodeFieldDropped      = "field-dropped"
)

// Warning is a non-fatal note about a transformation.
type Warning struct {
	File    string
	Code    string
	Message string
}

// TransformError reports a transformation the registry cannot complete.
type TransformError struct {
	File    string
	Message string
}

func (e *TransformError) Error() string {
	if e.File == "" {
		return e.Message
	}
	return e.File + ": " + e.Message
}

// StrictError turns the unknown-tool warnings of a strict registry into a
// TransformError. It returns nil when there are none.
func StrictError(file string, warnings []Warning) *TransformError {
	var unknown []string
	for _, w := range warnings {
		if w.Code == CodeUnknownTool {
			unknown = append(unknown, w.Message)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return &TransformError{File: file, Message: strings.Join(unknown, "; ")}
}

// Command transforms a slash command.
func Command(src *artifact.Command, reg *registry.Registry) (*artifact.OpenCodeCommand, []Warning) {
	extra, warnings := rekeyExtras(src.Path, artifact.KindCommand, src.Extra, src.ExtraKeys, reg)
	body := RewriteBody(src.Body, reg)

	return &artifact.OpenCodeCommand{
		Name:         src.Name,
		Version:      src.Version,
		Description:  src.Description,
		Tags:         append([]string{}, src.Tags...),
		Created:      src.Created,
		Author:       src.Author,
		ArgumentHint: src.ArgumentHint,
		Body:         body,
		Extra:        extra,
	}, warnings
}

// Agent transforms a subagent. Tools with no OpenCode equivalent are removed
// from the tool list and reported as tool-dropped warnings. An agent without a
// tools key keeps a nil tool list; one whose tools were all dropped gets an
// empty one.
func Agent(src *artifact.Agent, reg *registry.Registry) (*artifact.OpenCodeAgent, []Warning) {
	var tools []string
	var warnings []Warning
	if src.Tools != nil {
		tools, warnings = mapTools(src.Path, src.Tools, reg)
	}
	for _, key := range src.Dropped {
		warnings = append(warnings, Warning{
			File:    src.Path,
			Code:    CodeFieldDropped,
			Message: fmt.Sprintf("frontmatter key %q has no OpenCode agent equivalent and was dropped", key),
		})
	}
	body := RewriteBody(src.Body, reg)

	return &artifact.OpenCodeAgent{
		Name:        src.Name,
		Description: src.Description,
		Mode:        artifact.AgentModeSubagent,
		Tools:       tools,
		Model:       src.Model,
		Body:        body,
	}, warnings
}

// Skill transforms a skill. Supporting file references are kept as-is since
// the files are copied alongside SKILL.md unchanged.
func Skill(src *artifact.Skill, reg *registry.Registry) (*artifact.OpenCodeSkill, []Warning) {
	extra, warnings := rekeyExtras(src.Path, artifact.KindSkill, src.Extra, src.ExtraKeys, reg)
	body := RewriteBody(src.Body, reg)

	return &artifact.OpenCodeSkill{
		Name:            src.Name,
		Description:     src.Description,
		Body:            body,
		SupportingFiles: append([]string(nil), src.SupportingFiles...),
		Extra:           extra,
	}, warnings
}

// mapTools applies the tool table to an ordered tool list. Duplicates after
// mapping keep their first position.
func mapTools(file string, tools []string, reg *registry.Registry) ([]string, []Warning) {
	var warnings []Warning
	out := make([]string, 0, len(tools))
	seen := make(map[string]struct{}, len(tools))
	for _, name := range tools {
		if reg.StrictTools() && !reg.IsKnownTool(name) {
			warnings = append(warnings, Warning{
				File:    file,
				Code:    CodeUnknownTool,
				Message: fmt.Sprintf("unknown tool %q has no mapping", name),
			})
		}
		target, ok := reg.ToolMapping(name)
		if !ok {
			warnings = append(warnings, Warning{
				File:    file,
				Code:    CodeToolDropped,
				Message: fmt.Sprintf("tool %q is not supported on OpenCode and was dropped", name),
			})
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out, warnings
}

// rekeyExtras renames extra frontmatter keys through the metadata table. A key
// that lands on a dedicated target field, or on a key already taken by an
// earlier extra, is dropped with a metadata-collision warning.
func rekeyExtras(file string, kind artifact.Kind, extra map[string]any, order []string, reg *registry.Registry) (map[string]any, []Warning) {
	if len(extra) == 0 {
		return nil, nil
	}
	if len(order) == 0 {
		order = sortedKeys(extra)
	}
	var warnings []Warning
	out := make(map[string]any, len(extra))
	for _, key := range order {
		value, ok := extra[key]
		if !ok {
			continue
		}
		target := reg.MetadataKey(key)
		if reg.IsReservedKey(kind, target) {
			warnings = append(warnings, Warning{
				File:    file,
				Code:    CodeMetadataCollision,
				Message: fmt.Sprintf("frontmatter key %q maps to reserved key %q and was dropped", key, target),
			})
			continue
		}
		if _, taken := out[target]; taken {
			warnings = append(warnings, Warning{
				File:    file,
				Code:    CodeMetadataCollision,
				Message: fmt.Sprintf("frontmatter key %q maps to %q which is already set and was dropped", key, target),
			})
			continue
		}
		if target == "tools" {
			var tw []Warning
			value, tw = mapToolValue(file, value, reg)
			warnings = append(warnings, tw...)
		}
		out[target] = value
	}
	return out, warnings
}

// mapToolValue maps a tools-like frontmatter value, either a YAML list or the
// comma-separated string form ("Bash(git add:*), Read").
func mapToolValue(file string, value any, reg *registry.Registry) (any, []Warning) {
	switch v := value.(type) {
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return value, nil
			}
			names = append(names, s)
		}
		mappedNames, warnings := mapTools(file, names, reg)
		out := make([]any, 0, len(mappedNames))
		for _, n := range mappedNames {
			out = append(out, n)
		}
		return out, warnings
	case string:
		var warnings []Warning
		var parts []string
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			name, rest := item, ""
			if i := strings.IndexByte(item, '('); i > 0 {
				name, rest = item[:i], item[i:]
			}
			mappedNames, tw := mapTools(file, []string{name}, reg)
			warnings = append(warnings, tw...)
			if len(mappedNames) == 0 {
				continue
			}
			parts = append(parts, mappedNames[0]+rest)
		}
		return strings.Join(parts, ", "), warnings
	default:
		return value, nil
	}
}
