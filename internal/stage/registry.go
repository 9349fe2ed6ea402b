package stage

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/rp1-run/rp1/internal/logging"
	"github.com/rp1-run/rp1/internal/registry"
)

// Deps carries the collaborators stages need.
type Deps struct {
	Mappings *registry.Registry
	Logger   *slog.Logger
	Now      func() time.Time
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return logging.NewForTest()
	}
	return d.Logger
}

func (d Deps) mappings() *registry.Registry {
	if d.Mappings == nil {
		return registry.Default()
	}
	return d.Mappings
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// Runner executes a stage.
type Runner func(ctx context.Context, in Envelope, deps Deps) (Envelope, error)

// Registry maps stage names to runners. It is built explicitly; see Default.
type Registry struct {
	runners map[string]Runner
}

// NewRegistry returns an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{runners: map[string]Runner{}}
}

// Register adds or replaces a stage runner.
func (r *Registry) Register(name string, fn Runner) {
	r.runners[name] = fn
}

// Names returns the registered stage names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.runners))
	for n := range r.runners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run executes a registered stage by name.
func (r *Registry) Run(ctx context.Context, name string, in Envelope, deps Deps) (Envelope, error) {
	fn, ok := r.runners[name]
	if !ok {
		return Envelope{}, ErrUnknown{name: name}
	}
	return fn(ctx, in, deps)
}

// ErrUnknown is returned when a stage is not found.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown stage: " + e.name }

// Stage names.
const (
	StageDiscover       = "discover-artifacts"
	StageLuaFilter      = "lua-filter"
	StageParse          = "parse-artifacts"
	StageValidateSource = "validate-source"
	StageTransform      = "transform-artifacts"
	StageValidateTarget = "validate-target"
	StageGenerate       = "generate-artifacts"
	StageEnrichGit      = "enrich-git"
	StageWrite          = "write-artifacts"
	StageWriteManifest  = "write-manifest"
	StageCommit         = "commit-output"
)

// BuildStages is the full `rp1 build` pipeline.
var BuildStages = []string{
	StageDiscover,
	StageLuaFilter,
	StageParse,
	StageValidateSource,
	StageTransform,
	StageValidateTarget,
	StageGenerate,
	StageEnrichGit,
	StageWrite,
	StageWriteManifest,
	StageCommit,
}

// CheckStages runs everything up to generation without touching the output.
var CheckStages = []string{
	StageDiscover,
	StageLuaFilter,
	StageParse,
	StageValidateSource,
	StageTransform,
	StageValidateTarget,
	StageGenerate,
}

// Default returns a registry holding every rp1 stage.
func Default() *Registry {
	r := NewRegistry()
	r.Register(StageDiscover, discoverArtifactsRunner)
	r.Register(StageLuaFilter, luaFilterRunner)
	r.Register(StageParse, parseArtifactsRunner)
	r.Register(StageValidateSource, validateSourceRunner)
	r.Register(StageTransform, transformArtifactsRunner)
	r.Register(StageValidateTarget, validateTargetRunner)
	r.Register(StageGenerate, generateArtifactsRunner)
	r.Register(StageEnrichGit, enrichGitRunner)
	r.Register(StageWrite, writeArtifactsRunner)
	r.Register(StageWriteManifest, writeManifestRunner)
	r.Register(StageCommit, commitOutputRunner)
	return r
}
