package config

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
)

func optionalString(v cue.Value, path string) (string, bool) {
	var s string
	f := v.LookupPath(cue.ParsePath(path))
	if f.Exists() && f.Kind() == cue.StringKind {
		if err := f.Decode(&s); err == nil {
			return s, true
		}
	}
	return "", false
}

func optionalBool(v cue.Value, path string) (bool, bool) {
	var b bool
	f := v.LookupPath(cue.ParsePath(path))
	if f.Exists() && f.Kind() == cue.BoolKind {
		if err := f.Decode(&b); err == nil {
			return b, true
		}
	}
	return false, false
}

func optionalInt(v cue.Value, path string) (int, bool) {
	var n int
	f := v.LookupPath(cue.ParsePath(path))
	if f.Exists() && f.Kind() == cue.IntKind {
		if err := f.Decode(&n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// parseFilterSection extracts optional filter.inline.
func parseFilterSection(v cue.Value) Filter {
	var f Filter
	f.Inline, f.HasInline = optionalString(v, "filter.inline")
	return f
}

// parseLuaSandboxSection extracts optional luaSandbox limits.
func parseLuaSandboxSection(v cue.Value) LuaSandbox {
	var s LuaSandbox
	s.TimeoutMs, s.HasTimeoutMs = optionalInt(v, "luaSandbox.timeoutMs")
	s.InstructionLimit, s.HasInstructionLimit = optionalInt(v, "luaSandbox.instructionLimit")
	return s
}

// parseLoggingSection extracts optional logging.level and logging.format.
func parseLoggingSection(v cue.Value) (Logging, error) {
	var l Logging
	if s, ok := optionalString(v, "logging.level"); ok {
		switch LogLevel(s) {
		case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
			l.Level, l.HasLevel = LogLevel(s), true
		default:
			return Logging{}, fmt.Errorf("invalid value for logging.level: %q (expected debug, info, warn or error)", s)
		}
	}
	if s, ok := optionalString(v, "logging.format"); ok {
		switch LogFormat(s) {
		case LogFormatJSON, LogFormatText:
			l.Format, l.HasFormat = LogFormat(s), true
		default:
			return Logging{}, fmt.Errorf("invalid value for logging.format: %q (expected json or text)", s)
		}
	}
	return l, nil
}

// parseGitSection extracts optional git.enabled.
func parseGitSection(v cue.Value) Git {
	var g Git
	g.Enabled, g.HasEnabled = optionalBool(v, "git.enabled")
	return g
}

// parseToolsSection extracts tool mapping overrides. Values are a target tool
// name or null.
func parseToolsSection(v cue.Value) (map[string]*string, error) {
	tv := v.LookupPath(cue.ParsePath("tools"))
	if !tv.Exists() {
		return nil, nil
	}
	if tv.Kind() != cue.StructKind {
		return nil, fmt.Errorf("invalid type for field: tools (expected struct)")
	}
	it, err := tv.Fields()
	if err != nil {
		return nil, fmt.Errorf("invalid tools: %v", err)
	}
	out := map[string]*string{}
	for it.Next() {
		name := it.Selector().Unquoted()
		val := it.Value()
		switch val.Kind() {
		case cue.NullKind:
			out[name] = nil
		case cue.StringKind:
			s, _ := val.String()
			out[name] = &s
		default:
			return nil, fmt.Errorf("invalid value for tools.%s (expected string or null)", name)
		}
	}
	return out, nil
}

// ToolNames returns the override keys in sorted order.
func (b Build) ToolNames() []string {
	names := make([]string, 0, len(b.Tools))
	for n := range b.Tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
