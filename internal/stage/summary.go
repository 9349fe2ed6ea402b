package stage

import (
	"path"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/generator"
)

// BuildSummary is the aggregate report of one run.
type BuildSummary struct {
	Discovered  int                        `json:"discovered"`
	FilteredOut int                        `json:"filteredOut,omitempty"`
	Parsed      int                        `json:"parsed"`
	Transformed int                        `json:"transformed"`
	Validated   int                        `json:"validated"`
	Written     int                        `json:"written"`
	Failed      int                        `json:"failed"`
	Warnings    int                        `json:"warnings"`
	Committed   bool                       `json:"committed"`
	OutputDir   string                     `json:"outputDir,omitempty"`
	Manifest    string                     `json:"manifest,omitempty"`
	Results     []generator.ArtifactResult `json:"results"`
	Errors      []Error                    `json:"errors"`
	WarningList []Warning                  `json:"warningList"`
}

// Succeeded counts artifacts that reached generation without failing.
func (s BuildSummary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// Summarize builds the run summary from the final envelope.
func Summarize(env Envelope) BuildSummary {
	s := BuildSummary{
		Results:     artifactResults(env),
		Errors:      append([]Error{}, env.Errors...),
		WarningList: append([]Warning{}, env.Warnings...),
		Warnings:    len(env.Warnings),
	}
	if env.Meta != nil {
		s.Discovered = env.Meta.Discovered
		s.FilteredOut = env.Meta.FilteredOut
		s.Committed = env.Meta.Committed
		s.Manifest = env.Meta.Manifest
		if env.Meta.Committed {
			s.OutputDir = env.Meta.OutputDir
		}
	}
	for _, r := range env.Records {
		if r.Parsed {
			s.Parsed++
		}
		if r.Transformed {
			s.Transformed++
		}
		if r.Validated {
			s.Validated++
		}
		if r.Written {
			s.Written++
		}
		if r.Failed() {
			s.Failed++
		}
	}
	return s
}

// artifactResults lists one result per record in locator order.
func artifactResults(env Envelope) []generator.ArtifactResult {
	out := make([]generator.ArtifactResult, 0, len(env.Records))
	for _, r := range env.Records {
		res := generator.ArtifactResult{
			Name:    r.Name,
			Path:    r.OutPath,
			Kind:    string(r.Kind),
			Plugin:  r.Plugin,
			Success: !r.Failed() && r.Generated,
		}
		if r.Kind == artifact.KindSkill && r.OutPath != "" {
			dir := path.Dir(r.OutPath)
			for _, f := range r.SupportingFiles {
				res.Files = append(res.Files, path.Join(dir, f))
			}
		}
		out = append(out, res)
	}
	return out
}

func countFailed(env Envelope) int {
	n := 0
	for _, r := range env.Records {
		if r.Failed() {
			n++
		}
	}
	return n
}
