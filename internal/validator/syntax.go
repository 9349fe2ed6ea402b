package validator

import (
	"strings"

	"github.com/rp1-run/rp1/internal/parser"
)

// ValidateCommandSyntax checks a command file is well formed.
func ValidateCommandSyntax(path, content string) *ValidationError {
	return validateSyntax(path, content)
}

// ValidateAgentSyntax checks an agent file is well formed.
func ValidateAgentSyntax(path, content string) *ValidationError {
	return validateSyntax(path, content)
}

// ValidateSkillSyntax checks a SKILL.md file is well formed.
func ValidateSkillSyntax(path, content string) *ValidationError {
	return validateSyntax(path, content)
}

// validateSyntax applies the L1 rules shared by every kind: an opening
// delimiter on the first line, a closing delimiter after it, YAML that decodes
// to a mapping, and a body that is not blank.
func validateSyntax(path, content string) *ValidationError {
	raw, body, err := parser.SplitFrontmatter(content)
	if err != nil {
		return syntaxError(path, "%s", err.Error())
	}
	if _, _, err := parser.DecodeFrontmatter(raw); err != nil {
		return syntaxError(path, "%s", err.Error())
	}
	if strings.TrimSpace(body) == "" {
		return syntaxError(path, "body is empty")
	}
	return nil
}

// splitAndDecode returns the decoded frontmatter of content that already
// passed L1.
func splitAndDecode(path, content string) (map[string]any, *ValidationError) {
	doc, err := parser.ParseDocument(content, "")
	if err != nil {
		return nil, syntaxError(path, "%s", err.Error())
	}
	return doc.Meta, nil
}
