// Package registry holds the declarative tables that translate Claude Code
// vocabulary (tool names, directory names, frontmatter keys) into OpenCode
// vocabulary.
//
// A Registry is built once at startup and passed to the stages that need it.
// Lookups are total: a name without an entry passes through unchanged.
package registry

import (
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/rp1-run/rp1/internal/artifact"
)

// ToolMapping is one row of the tool table. A nil Target marks a tool that has
// no OpenCode equivalent and must be dropped.
type ToolMapping struct {
	Source string
	Target *string
}

// Registry is an immutable set of mapping tables.
type Registry struct {
	tools       map[string]*string
	toolOrder   []string
	directories map[string]string
	metadata    map[string]string
	fieldOrder  map[artifact.Kind][]string
	strictTools bool
	toolPattern *regexp.Regexp
}

// Option customizes a Registry at construction time.
type Option func(*Registry)

// WithStrictTools makes tools absent from the tool table reportable instead
// of silently passed through.
func WithStrictTools(strict bool) Option {
	return func(r *Registry) { r.strictTools = strict }
}

// WithTool adds or overrides a tool mapping. A nil target marks the tool unsupported.
func WithTool(source string, target *string) Option {
	return func(r *Registry) {
		if _, ok := r.tools[source]; !ok {
			r.toolOrder = append(r.toolOrder, source)
		}
		r.tools[source] = target
	}
}

// WithDirectory adds or overrides a directory mapping.
func WithDirectory(source, target string) Option {
	return func(r *Registry) { r.directories[source] = target }
}

// WithMetadataKey adds or overrides a frontmatter key mapping.
func WithMetadataKey(source, target string) Option {
	return func(r *Registry) { r.metadata[source] = target }
}

func mapped(s string) *string { return &s }

// DefaultToolMappings is the built-in Claude Code to OpenCode tool table.
func DefaultToolMappings() []ToolMapping {
	return []ToolMapping{
		{Source: "Read", Target: mapped("read_file")},
		{Source: "Write", Target: mapped("write_file")},
		{Source: "Edit", Target: mapped("edit_file")},
		{Source: "MultiEdit", Target: mapped("edit_file")},
		{Source: "Bash", Target: mapped("bash_run")},
		{Source: "Glob", Target: mapped("glob")},
		{Source: "Grep", Target: mapped("grep")},
		{Source: "LS", Target: mapped("list")},
		{Source: "WebFetch", Target: mapped("web_fetch")},
		{Source: "WebSearch", Target: mapped("web_search")},
		{Source: "TodoWrite", Target: mapped("todo_write")},
		{Source: "TodoRead", Target: mapped("todo_read")},
		{Source: "Task", Target: mapped("task")},
		{Source: "Skill", Target: mapped("skill")},
		{Source: "NotebookEdit", Target: nil},
		{Source: "ExitPlanMode", Target: nil},
		{Source: "EnterPlanMode", Target: nil},
		{Source: "SlashCommand", Target: nil},
		{Source: "KillShell", Target: nil},
		{Source: "BashOutput", Target: nil},
	}
}

// DefaultDirectoryMappings is the built-in directory table.
func DefaultDirectoryMappings() map[string]string {
	return map[string]string{
		"agents":   "agent",
		"commands": "command",
		"skills":   "skill",
	}
}

// DefaultMetadataMappings is the built-in frontmatter key table.
func DefaultMetadataMappings() map[string]string {
	return map[string]string{
		"name":          "name",
		"description":   "description",
		"version":       "version",
		"tags":          "tags",
		"created":       "created",
		"author":        "author",
		"model":         "model",
		"tools":         "tools",
		"argument-hint": "argument-hint",
		"allowed-tools": "tools",
	}
}

// defaultFieldOrder fixes the frontmatter key order of generated files.
func defaultFieldOrder() map[artifact.Kind][]string {
	return map[artifact.Kind][]string{
		artifact.KindCommand: {"name", "version", "description", "tags", "created", "author", "argument-hint"},
		artifact.KindAgent:   {"name", "description", "mode", "model", "tools"},
		artifact.KindSkill:   {"name", "description", "supportingFiles"},
	}
}

// New builds a registry from the default tables and applies opts in order.
func New(opts ...Option) *Registry {
	r := &Registry{
		tools:       map[string]*string{},
		directories: DefaultDirectoryMappings(),
		metadata:    DefaultMetadataMappings(),
		fieldOrder:  defaultFieldOrder(),
	}
	for _, m := range DefaultToolMappings() {
		r.tools[m.Source] = m.Target
		r.toolOrder = append(r.toolOrder, m.Source)
	}
	for _, opt := range opts {
		opt(r)
	}
	r.toolPattern = compileToolPattern(r.toolOrder)
	return r
}

// Default returns the registry used by `rp1 build` unless configured otherwise.
func Default() *Registry {
	return New()
}

// StrictTools reports whether unknown tools should be reported.
func (r *Registry) StrictTools() bool { return r.strictTools }

// ToolMapping resolves a source tool name.
//
// It returns (name, true) for tools absent from the table, (target, true) for
// mapped tools, and ("", false) for tools explicitly unsupported on OpenCode.
func (r *Registry) ToolMapping(name string) (string, bool) {
	target, ok := r.tools[name]
	if !ok {
		return name, true
	}
	if target == nil {
		return "", false
	}
	return *target, true
}

// GetToolMapping resolves a source tool name against r. A nil result means the
// tool is intentionally unsupported on OpenCode and the caller must drop it.
func GetToolMapping(r *Registry, name string) *string {
	target, ok := r.ToolMapping(name)
	if !ok {
		return nil
	}
	return &target
}

// GetDirectoryMapping resolves a source directory name against r.
func GetDirectoryMapping(r *Registry, dir string) string {
	return r.DirectoryMapping(dir)
}

// IsKnownTool reports whether name has an entry in the tool table.
func (r *Registry) IsKnownTool(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// KnownTools returns every source tool name in the table, sorted.
func (r *Registry) KnownTools() []string {
	out := append([]string(nil), r.toolOrder...)
	sort.Strings(out)
	return out
}

// UnsupportedTools returns the sorted source tools that map to nothing.
func (r *Registry) UnsupportedTools() []string {
	var out []string
	for _, name := range r.toolOrder {
		if r.tools[name] == nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// DirectoryMapping returns the OpenCode directory for a Claude Code directory.
func (r *Registry) DirectoryMapping(dir string) string {
	if target, ok := r.directories[dir]; ok {
		return target
	}
	return dir
}

// MetadataKey returns the OpenCode frontmatter key for a Claude Code key.
func (r *Registry) MetadataKey(key string) string {
	if target, ok := r.metadata[key]; ok {
		return target
	}
	return key
}

// FieldOrder returns the generated frontmatter key order for a kind.
func (r *Registry) FieldOrder(kind artifact.Kind) []string {
	return append([]string(nil), r.fieldOrder[kind]...)
}

// IsReservedKey reports whether key is a dedicated field of the kind's target schema.
func (r *Registry) IsReservedKey(kind artifact.Kind, key string) bool {
	for _, k := range r.fieldOrder[kind] {
		if k == key {
			return true
		}
	}
	return false
}

// Humanize turns a CamelCase tool name into lowercase words
// ("ExitPlanMode" -> "exit plan mode").
func Humanize(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, c := range runes {
		if unicode.IsUpper(c) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return b.String()
}

func compileToolPattern(names []string) *regexp.Regexp {
	if len(names) == 0 {
		return nil
	}
	// Longest first so alternation never settles on a prefix.
	sorted := slices.Clone(names)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, n := range sorted {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// ToolPattern matches any known tool name as a whole token. It is nil when
// the tool table is empty.
func (r *Registry) ToolPattern() *regexp.Regexp { return r.toolPattern }
