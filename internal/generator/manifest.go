package generator

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ManifestSchemaVersion is bumped on incompatible manifest changes.
const ManifestSchemaVersion = "1"

// ManifestFileName is written at the root of the output directory.
const ManifestFileName = "manifest.json"

// Manifest indexes every artifact a build produced.
type Manifest struct {
	SchemaVersion string          `json:"schemaVersion" jsonschema:"description=Manifest format version"`
	Generator     string          `json:"generator" jsonschema:"description=rp1 version that produced the build"`
	GeneratedAt   string          `json:"generatedAt" jsonschema:"description=Build time (RFC3339 UTC; honours SOURCE_DATE_EPOCH)"`
	Plugin        string          `json:"plugin" jsonschema:"enum=base,enum=dev,enum=all"`
	Source        *ManifestSource `json:"source,omitempty"`
	Counts        ManifestCounts  `json:"counts"`
	Entries       []ManifestEntry `json:"entries"`
}

// ManifestSource describes the source checkout when it is a git repository.
type ManifestSource struct {
	Commit string `json:"commit"`
	Dirty  bool   `json:"dirty"`
}

// ManifestCounts summarises the run the manifest came from.
type ManifestCounts struct {
	Artifacts int `json:"artifacts"`
	Failed    int `json:"failed"`
	Warnings  int `json:"warnings"`
}

// ManifestEntry is one generated artifact.
type ManifestEntry struct {
	Name   string   `json:"name"`
	Path   string   `json:"path" jsonschema:"description=Slash-separated path relative to the output directory"`
	Kind   string   `json:"kind" jsonschema:"enum=command,enum=agent,enum=skill"`
	Plugin string   `json:"plugin"`
	Files  []string `json:"files,omitempty" jsonschema:"description=Supporting files copied with a skill"`
}

// ArtifactResult is the per-artifact outcome the manifest is built from.
type ArtifactResult struct {
	Name    string   `json:"name"`
	Path    string   `json:"path,omitempty"`
	Kind    string   `json:"kind"`
	Plugin  string   `json:"plugin"`
	Files   []string `json:"files,omitempty"`
	Success bool     `json:"success"`
}

// BuildInfo carries run-level manifest fields.
type BuildInfo struct {
	Version  string
	Plugin   string
	Time     time.Time
	Commit   string
	Dirty    bool
	Failed   int
	Warnings int
}

// GenerateManifest lists every successful result, sorted by path.
// Failed results are left out.
func GenerateManifest(results []ArtifactResult, info BuildInfo) Manifest {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		e := ManifestEntry{Name: r.Name, Path: r.Path, Kind: r.Kind, Plugin: r.Plugin}
		if len(r.Files) > 0 {
			e.Files = append([]string(nil), r.Files...)
			sort.Strings(e.Files)
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	m := Manifest{
		SchemaVersion: ManifestSchemaVersion,
		Generator:     info.Version,
		GeneratedAt:   info.Time.UTC().Format(time.RFC3339),
		Plugin:        info.Plugin,
		Counts: ManifestCounts{
			Artifacts: len(entries),
			Failed:    info.Failed,
			Warnings:  info.Warnings,
		},
		Entries: entries,
	}
	if info.Commit != "" {
		m.Source = &ManifestSource{Commit: info.Commit, Dirty: info.Dirty}
	}
	return m
}

// MarshalManifest returns indented JSON with a trailing newline.
func MarshalManifest(m Manifest) ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// BuildTime returns SOURCE_DATE_EPOCH when set to a valid integer, otherwise now.
func BuildTime(now func() time.Time) time.Time {
	if v := strings.TrimSpace(os.Getenv("SOURCE_DATE_EPOCH")); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}
	return now().UTC()
}
