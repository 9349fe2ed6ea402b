package stage

// Error is a per-artifact failure recorded by a stage.
type Error struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Locator string `json:"locator,omitempty"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}

// Error kinds.
const (
	ErrorKindParse      = "parse"
	ErrorKindValidation = "validation"
	ErrorKindTransform  = "transform"
	ErrorKindGeneration = "generation"
	ErrorKindFilter     = "filter"
	ErrorKindIO         = "io"
)

// Warning is a non-fatal note attached to an artifact.
type Warning struct {
	Stage   string `json:"stage"`
	Locator string `json:"locator"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LuaSandboxMeta bounds Lua filter execution.
type LuaSandboxMeta struct {
	TimeoutMs        int `json:"timeoutMs"`
	InstructionLimit int `json:"instructionLimit"`
}

// SourceMeta describes the git state of the source tree.
type SourceMeta struct {
	Commit string `json:"commit"`
	Dirty  bool   `json:"dirty"`
}

// Meta holds run options and run-level results with deterministic JSON order.
type Meta struct {
	Root         string          `json:"root"`
	Plugin       string          `json:"plugin"`
	OutputDir    string          `json:"outputDir,omitempty"`
	Workers      int             `json:"workers,omitempty"`
	AllowPartial bool            `json:"allowPartial,omitempty"`
	NoGitignore  bool            `json:"noGitignore,omitempty"`
	FilterInline string          `json:"filterInline,omitempty"`
	LuaSandbox   *LuaSandboxMeta `json:"luaSandbox,omitempty"`
	GitEnabled   bool            `json:"gitEnabled,omitempty"`
	Version      string          `json:"version,omitempty"`

	Source      *SourceMeta `json:"source,omitempty"`
	StagingDir  string      `json:"-"`
	Committed   bool        `json:"committed,omitempty"`
	Manifest    string      `json:"manifest,omitempty"`
	Discovered  int         `json:"discovered"`
	FilteredOut int         `json:"filteredOut,omitempty"`
}

// Envelope is the value passed from stage to stage.
type Envelope struct {
	Records  []Record  `json:"records"`
	Meta     *Meta     `json:"meta,omitempty"`
	Errors   []Error   `json:"errors,omitempty"`
	Warnings []Warning `json:"warnings,omitempty"`
}
