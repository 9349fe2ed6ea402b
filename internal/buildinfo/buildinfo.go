// Package buildinfo exposes version metadata for the rp1 binary. Values are
// set at build time via -ldflags, e.g.
//
//	-ldflags "-X 'github.com/rp1-run/rp1/internal/buildinfo.Version=1.2.3'"
package buildinfo

import "strings"

var (
	// Version is the semantic version or custom string. Empty means "dev".
	Version = "dev"
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time in RFC3339 or similar (optional).
	Date = ""
	// BuiltBy is an optional builder identifier (optional).
	BuiltBy = ""
)

// Short returns the bare version, "dev" when unset. It is the generator
// version recorded in manifests.
func Short() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// Summary returns a concise single-line version string.
func Summary() string {
	v := Short()
	parts := make([]string, 0, 2)
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if Date != "" {
		parts = append(parts, "date="+Date)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}
