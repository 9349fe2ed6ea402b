// Package config loads the optional rp1.build.cue build configuration.
//
// Every optional field carries a Has* flag so callers can tell "unset" from
// a zero value when layering flags over config over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultFileName is looked up in the build root when --config is not given.
const DefaultFileName = "rp1.build.cue"

// Build is the parsed build configuration.
type Build struct {
	ConfigVersion string

	Root         string
	HasRoot      bool
	Plugin       string
	HasPlugin    bool
	OutputDir    string
	HasOutputDir bool

	Workers         int
	HasWorkers      bool
	StrictTools     bool
	HasStrictTools  bool
	AllowPartial    bool
	HasAllowPartial bool

	Filter     Filter
	LuaSandbox LuaSandbox
	Logging    Logging
	Git        Git
	// Tools overrides registry tool mappings; a nil value marks the tool unsupported.
	Tools map[string]*string
}

// Filter holds the optional Lua artifact selector.
type Filter struct {
	Inline    string
	HasInline bool
}

// LuaSandbox bounds filter execution.
type LuaSandbox struct {
	TimeoutMs           int
	HasTimeoutMs        bool
	InstructionLimit    int
	HasInstructionLimit bool
}

// LogLevel is a logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat is a log record encoding.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// Logging holds log settings.
type Logging struct {
	Level     LogLevel
	HasLevel  bool
	Format    LogFormat
	HasFormat bool
}

// Git controls the source commit lookup for the manifest.
type Git struct {
	Enabled    bool
	HasEnabled bool
}

// Load reads and validates a CUE build config.
func Load(path string) (Build, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Build{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Build{}, err
	}
	var b Build
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&b.ConfigVersion); err != nil {
		return Build{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if err := checkConfigVersion(b.ConfigVersion); err != nil {
		return Build{}, err
	}

	b.Root, b.HasRoot = optionalString(v, "root")
	b.Plugin, b.HasPlugin = optionalString(v, "plugin")
	b.OutputDir, b.HasOutputDir = optionalString(v, "outputDir")
	b.StrictTools, b.HasStrictTools = optionalBool(v, "strictTools")
	b.AllowPartial, b.HasAllowPartial = optionalBool(v, "allowPartial")
	if b.Workers, b.HasWorkers = optionalInt(v, "workers"); b.HasWorkers && b.Workers < 1 {
		return Build{}, fmt.Errorf("invalid value for workers: %d (expected >= 1)", b.Workers)
	}

	b.Filter = parseFilterSection(v)
	b.LuaSandbox = parseLuaSandboxSection(v)
	if b.Logging, err = parseLoggingSection(v); err != nil {
		return Build{}, err
	}
	b.Git = parseGitSection(v)
	if b.Tools, err = parseToolsSection(v); err != nil {
		return Build{}, err
	}
	return b, nil
}

// Find returns the config path to use: explicit when set, else the default
// file in root if it exists, else "".
func Find(explicit, root string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	p := filepath.Join(root, DefaultFileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat config: %w", err)
	}
	return p, nil
}

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}
