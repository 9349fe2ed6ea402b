// Package options resolves a build invocation: command-line flags override
// rp1.build.cue, which overrides built-in defaults.
package options

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/config"
	"github.com/rp1-run/rp1/internal/logging"
	"github.com/rp1-run/rp1/internal/registry"
	"github.com/rp1-run/rp1/internal/stage"
)

// Defaults.
const (
	DefaultRoot      = "."
	DefaultOutputDir = "dist/opencode"
	DefaultPlugin    = artifact.PluginAll
)

// Flags are the raw command-line values. Changed reports whether a flag was
// set explicitly; unset flags fall back to config.
type Flags struct {
	Root         string
	Config       string
	Plugin       string
	OutputDir    string
	Workers      int
	StrictTools  bool
	AllowPartial bool
	NoGitignore  bool
	NoGit        bool
	Filter       string
	LogLevel     string
	LogFormat    string

	Changed func(name string) bool
}

func (f Flags) changed(name string) bool {
	return f.Changed != nil && f.Changed(name)
}

// Resolved is everything needed to run the stage pipeline.
type Resolved struct {
	ConfigPath string
	Meta       *stage.Meta
	Deps       stage.Deps
}

// UsageError marks a bad flag or config value. It exits with status 2.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }
func (e *UsageError) ExitCode() int { return 2 }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// Resolve layers flags over config over defaults. Logs go to logOut.
func Resolve(f Flags, version string, logOut io.Writer) (Resolved, error) {
	root := DefaultRoot
	if f.changed("root") && f.Root != "" {
		root = f.Root
	}
	cfgPath, err := config.Find(f.Config, root)
	if err != nil {
		return Resolved{}, &UsageError{Err: err}
	}
	var cfg config.Build
	if cfgPath != "" {
		if cfg, err = config.Load(cfgPath); err != nil {
			return Resolved{}, &UsageError{Err: fmt.Errorf("%s: %w", cfgPath, err)}
		}
	}
	cfgDir := filepath.Dir(cfgPath)

	meta := &stage.Meta{
		Root:       root,
		Plugin:     DefaultPlugin,
		OutputDir:  DefaultOutputDir,
		GitEnabled: true,
		Version:    version,
	}
	if cfg.HasRoot && !f.changed("root") {
		meta.Root = relativeTo(cfgDir, cfg.Root)
	}
	if cfg.HasPlugin {
		meta.Plugin = cfg.Plugin
	}
	if f.changed("plugin") {
		meta.Plugin = f.Plugin
	}
	if _, err := artifact.Plugins(meta.Plugin); err != nil {
		return Resolved{}, &UsageError{Err: err}
	}
	if cfg.HasOutputDir {
		meta.OutputDir = relativeTo(cfgDir, cfg.OutputDir)
	}
	if f.changed("output-dir") {
		meta.OutputDir = f.OutputDir
	}
	if meta.OutputDir == "" {
		return Resolved{}, usageErrorf("output directory must not be empty")
	}
	if err := checkOutputDir(meta.Root, meta.OutputDir); err != nil {
		return Resolved{}, &UsageError{Err: err}
	}
	if cfg.HasWorkers {
		meta.Workers = cfg.Workers
	}
	if f.changed("workers") {
		if f.Workers < 1 {
			return Resolved{}, usageErrorf("invalid value for --workers: %d (expected >= 1)", f.Workers)
		}
		meta.Workers = f.Workers
	}
	if cfg.HasAllowPartial {
		meta.AllowPartial = cfg.AllowPartial
	}
	if f.changed("allow-partial") {
		meta.AllowPartial = f.AllowPartial
	}
	meta.NoGitignore = f.NoGitignore
	if cfg.Git.HasEnabled {
		meta.GitEnabled = cfg.Git.Enabled
	}
	if f.NoGit {
		meta.GitEnabled = false
	}
	if cfg.Filter.HasInline {
		meta.FilterInline = cfg.Filter.Inline
	}
	if f.changed("filter") {
		meta.FilterInline = f.Filter
	}
	if cfg.LuaSandbox.HasTimeoutMs || cfg.LuaSandbox.HasInstructionLimit {
		meta.LuaSandbox = &stage.LuaSandboxMeta{
			TimeoutMs:        cfg.LuaSandbox.TimeoutMs,
			InstructionLimit: cfg.LuaSandbox.InstructionLimit,
		}
	}

	strict := cfg.HasStrictTools && cfg.StrictTools
	if f.changed("strict-tools") {
		strict = f.StrictTools
	}
	logger, err := newLogger(f, cfg.Logging, logOut)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{
		ConfigPath: cfgPath,
		Meta:       meta,
		Deps: stage.Deps{
			Mappings: newRegistry(cfg, strict),
			Logger:   logger,
			Now:      time.Now,
		},
	}, nil
}

func newRegistry(cfg config.Build, strict bool) *registry.Registry {
	opts := []registry.Option{registry.WithStrictTools(strict)}
	for _, name := range cfg.ToolNames() {
		opts = append(opts, registry.WithTool(name, cfg.Tools[name]))
	}
	return registry.New(opts...)
}

func newLogger(f Flags, cfg config.Logging, w io.Writer) (*slog.Logger, error) {
	level, format := cfg.Level, cfg.Format
	if f.changed("log-level") {
		switch l := config.LogLevel(f.LogLevel); l {
		case config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError:
			level = l
		default:
			return nil, usageErrorf("invalid value for --log-level: %q (expected debug, info, warn or error)", f.LogLevel)
		}
	}
	if f.changed("log-format") {
		switch lf := config.LogFormat(f.LogFormat); lf {
		case config.LogFormatJSON, config.LogFormatText:
			format = lf
		default:
			return nil, usageErrorf("invalid value for --log-format: %q (expected json or text)", f.LogFormat)
		}
	}
	return logging.New(w, level, format), nil
}

// relativeTo resolves p against dir unless p is absolute.
func relativeTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || dir == "" || dir == "." {
		return p
	}
	return filepath.Join(dir, p)
}

// checkOutputDir keeps the output away from the sources: it may not be the
// root, an ancestor of the root, or anything at or below <root>/plugins.
func checkOutputDir(root, out string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	if within(absRoot, absOut) {
		return fmt.Errorf("output directory %s must not be or contain the build root %s", out, absRoot)
	}
	if plugins := filepath.Join(absRoot, stage.PluginsDir); within(absOut, plugins) {
		return fmt.Errorf("output directory %s lies inside the plugin sources %s", out, plugins)
	}
	return nil
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
