package stage

import "github.com/rp1-run/rp1/internal/artifact"

// Record is one artifact moving through the pipeline. Each stage fills in the
// fields it owns and skips records that already carry an Error.
type Record struct {
	Locator string        `json:"locator"`
	Kind    artifact.Kind `json:"kind"`
	Plugin  string        `json:"plugin"`
	Name    string        `json:"name"`
	// Rel is the path below the kind directory, e.g. "git/commit.md" or
	// "pdf/SKILL.md".
	Rel string `json:"rel"`
	// SupportingFiles are skill siblings of SKILL.md, relative to the skill
	// directory.
	SupportingFiles []string `json:"supportingFiles,omitempty"`

	Content     string         `json:"-"`
	Frontmatter map[string]any `json:"-"`
	Source      any            `json:"-"`
	Target      any            `json:"-"`
	Output      string         `json:"-"`
	OutPath     string         `json:"outPath,omitempty"`

	Parsed      bool `json:"parsed,omitempty"`
	Transformed bool `json:"transformed,omitempty"`
	Validated   bool `json:"validated,omitempty"`
	Generated   bool `json:"generated,omitempty"`
	Written     bool `json:"written,omitempty"`

	Error *Error `json:"error,omitempty"`
}

// Failed reports whether the record reached a terminal failure.
func (r Record) Failed() bool { return r.Error != nil }
