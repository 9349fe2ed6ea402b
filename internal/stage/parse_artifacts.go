package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rp1-run/rp1/internal/artifact"
	"github.com/rp1-run/rp1/internal/parser"
	"github.com/rp1-run/rp1/internal/validator"
)

// parse-artifacts: read each file, check L1 syntax, then decode it into its
// source record. A file that fails L1 never reaches the parser.
func parseArtifactsRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	absRoot, err := filepath.Abs(determineRoot(in.Meta))
	if err != nil {
		return Envelope{}, err
	}
	return runRecordStage(ctx, in, deps, StageParse, func(r Record) (Record, []Warning, error) {
		return parseRecord(absRoot, r)
	}), nil
}

func parseRecord(absRoot string, r Record) (Record, []Warning, error) {
	b, err := os.ReadFile(filepath.Join(absRoot, filepath.FromSlash(r.Locator)))
	if err != nil {
		return r, nil, fmt.Errorf("read failed: %v", err)
	}
	r.Content = string(b)

	if verr := syntaxCheck(r.Kind, r.Locator, r.Content); verr != nil {
		return r, nil, verr
	}
	doc, err := parser.ParseDocument(r.Content, r.Locator)
	if err != nil {
		return r, nil, err
	}
	r.Frontmatter = doc.Meta
	switch r.Kind {
	case artifact.KindCommand:
		r.Source = parser.CommandFromDocument(doc, r.Locator)
	case artifact.KindAgent:
		r.Source = parser.AgentFromDocument(doc, r.Locator)
	case artifact.KindSkill:
		r.Source = parser.SkillFromDocument(doc, r.Locator)
	default:
		return r, nil, &parser.ParseError{File: r.Locator, Message: fmt.Sprintf("unknown artifact kind %q", r.Kind)}
	}
	if name, ok := doc.Meta["name"].(string); ok && name != "" {
		r.Name = name
	}
	r.Parsed = true
	return r, nil, nil
}

func syntaxCheck(kind artifact.Kind, file, content string) error {
	var verr *validator.ValidationError
	switch kind {
	case artifact.KindCommand:
		verr = validator.ValidateCommandSyntax(file, content)
	case artifact.KindAgent:
		verr = validator.ValidateAgentSyntax(file, content)
	case artifact.KindSkill:
		verr = validator.ValidateSkillSyntax(file, content)
	}
	if verr != nil {
		return verr
	}
	return nil
}
