package validator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/rp1-run/rp1/internal/artifact"
)

// constraintsCUE holds the value-level constraints shared by the L2 checks.
const constraintsCUE = `
#Model:    "sonnet" | "opus" | "haiku" | "inherit"
#ToolName: =~"^[A-Za-z][A-Za-z0-9_\\-]*$"
#RelPath:  string & =~"^[^/\\\\]" & !~"(^|/)\\.\\.(/|$)"
#Date:     =~"^[0-9]{4}-[0-9]{2}-[0-9]{2}([T ].*)?$"
`

// schemaChecker evaluates frontmatter against the compiled constraints. A
// cue.Context is not safe for concurrent use, so calls are serialized.
type schemaChecker struct {
	mu   sync.Mutex
	ctx  *cue.Context
	defs cue.Value
}

var (
	checkerOnce sync.Once
	checker     *schemaChecker
)

func schemas() *schemaChecker {
	checkerOnce.Do(func() {
		ctx := cuecontext.New()
		defs := ctx.CompileString(constraintsCUE)
		if err := defs.Err(); err != nil {
			panic(fmt.Sprintf("validator: invalid built-in constraints: %v", err))
		}
		checker = &schemaChecker{ctx: ctx, defs: defs}
	})
	return checker
}

// check encodes frontmatter and runs fn against it while holding the lock.
func (c *schemaChecker) check(path string, frontmatter map[string]any, fn func(v cue.Value) string) *ValidationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	if frontmatter == nil {
		frontmatter = map[string]any{}
	}
	v := c.ctx.Encode(frontmatter)
	if err := v.Err(); err != nil {
		return schemaError(path, "frontmatter cannot be checked: %v", err)
	}
	if msg := fn(v); msg != "" {
		return schemaError(path, "%s", msg)
	}
	return nil
}

func (c *schemaChecker) matches(def string, v cue.Value) bool {
	d := c.defs.LookupPath(cue.ParsePath(def))
	return d.Unify(v).Validate(cue.Concrete(true)) == nil
}

func lookup(v cue.Value, name string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(name)))
}

func requireString(v cue.Value, name string) string {
	f := lookup(v, name)
	if !f.Exists() {
		return fmt.Sprintf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Sprintf("invalid type for field: %s (expected string)", name)
	}
	s, _ := f.String()
	if strings.TrimSpace(s) == "" {
		return fmt.Sprintf("field %s must not be empty", name)
	}
	return ""
}

func optionalString(v cue.Value, name string) string {
	f := lookup(v, name)
	if !f.Exists() {
		return ""
	}
	if f.Kind() != cue.StringKind {
		return fmt.Sprintf("invalid type for field: %s (expected string)", name)
	}
	return ""
}

// stringList checks name is a list of strings and applies each to every element.
func stringList(v cue.Value, name string, required bool, each func(i int, s string, e cue.Value) string) string {
	f := lookup(v, name)
	if !f.Exists() {
		if required {
			return fmt.Sprintf("missing required field: %s", name)
		}
		return ""
	}
	if f.Kind() != cue.ListKind {
		return fmt.Sprintf("invalid type for field: %s (expected a list of strings)", name)
	}
	it, err := f.List()
	if err != nil {
		return fmt.Sprintf("invalid type for field: %s (expected a list of strings)", name)
	}
	for i := 0; it.Next(); i++ {
		e := it.Value()
		if e.Kind() != cue.StringKind {
			return fmt.Sprintf("invalid type for field: %s[%d] (expected string)", name, i)
		}
		s, _ := e.String()
		if each != nil {
			if msg := each(i, s, e); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func firstFailure(checks ...func() string) string {
	for _, c := range checks {
		if msg := c(); msg != "" {
			return msg
		}
	}
	return ""
}

// isDate accepts YYYY-MM-DD and RFC3339 timestamps.
func isDate(s string) bool {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// ValidateCommandSchema applies the L2 command rules: name, version and
// description are non-empty strings, tags is a list of non-empty strings and created
// is a date.
func ValidateCommandSchema(path string, frontmatter map[string]any) *ValidationError {
	c := schemas()
	return c.check(path, frontmatter, func(v cue.Value) string {
		return firstFailure(
			func() string { return requireString(v, "name") },
			func() string { return requireString(v, "version") },
			func() string { return requireString(v, "description") },
			func() string {
				return stringList(v, "tags", true, func(i int, s string, _ cue.Value) string {
					if s == "" {
						return fmt.Sprintf("field tags[%d] must not be empty", i)
					}
					return ""
				})
			},
			func() string {
				if msg := requireString(v, "created"); msg != "" {
					return msg
				}
				f := lookup(v, "created")
				s, _ := f.String()
				if !c.matches("#Date", f) || !isDate(s) {
					return fmt.Sprintf("field created must be a date (YYYY-MM-DD or RFC3339), got %q", s)
				}
				return ""
			},
			func() string { return optionalString(v, "author") },
			func() string { return optionalString(v, "argument-hint") },
		)
	})
}

// ValidateAgentSchema applies the L2 agent rules: name and description are
// non-empty strings, tools (when present) lists well-formed tool names and
// model (when present) is an accepted model.
func ValidateAgentSchema(path string, frontmatter map[string]any) *ValidationError {
	c := schemas()
	return c.check(path, frontmatter, func(v cue.Value) string {
		return firstFailure(
			func() string { return requireString(v, "name") },
			func() string { return requireString(v, "description") },
			func() string {
				return stringList(v, "tools", false, func(i int, s string, e cue.Value) string {
					if s == "" || !c.matches("#ToolName", e) {
						return fmt.Sprintf("invalid tool name at tools[%d]: %q", i, s)
					}
					return ""
				})
			},
			func() string {
				f := lookup(v, "model")
				if !f.Exists() {
					return ""
				}
				s, _ := f.String()
				if f.Kind() != cue.StringKind || !c.matches("#Model", f) {
					return fmt.Sprintf("field model must be one of %s, got %q", strings.Join(artifact.AcceptedModels, ", "), s)
				}
				return ""
			},
		)
	})
}

// ValidateSkillSchema applies the L2 skill rules: name and description are
// non-empty strings and supportingFiles (when present) lists relative paths.
func ValidateSkillSchema(path string, frontmatter map[string]any) *ValidationError {
	c := schemas()
	return c.check(path, frontmatter, func(v cue.Value) string {
		return firstFailure(
			func() string { return requireString(v, "name") },
			func() string { return requireString(v, "description") },
			func() string {
				return stringList(v, "supportingFiles", false, func(i int, s string, e cue.Value) string {
					if !c.matches("#RelPath", e) {
						return fmt.Sprintf("supportingFiles[%d] must be a relative path inside the skill, got %q", i, s)
					}
					return ""
				})
			},
		)
	})
}
