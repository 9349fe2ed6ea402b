// Package validator checks artifacts at two levels: L1 (syntax: frontmatter
// delimiters, YAML, body) and L2 (schema: required and typed fields).
//
// Validation never panics across the pipeline boundary; every check returns a
// *ValidationError or nil.
package validator

import (
	"fmt"

	"github.com/rp1-run/rp1/internal/artifact"
)

// Level is the validation level a failure belongs to.
type Level string

const (
	LevelSyntax Level = "L1"
	LevelSchema Level = "L2"
)

// ValidationError is a single L1 or L2 rule violation.
type ValidationError struct {
	File    string
	Level   Level
	Message string
}

func (e *ValidationError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Level, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Level, e.Message)
}

func syntaxError(file, format string, args ...any) *ValidationError {
	return &ValidationError{File: file, Level: LevelSyntax, Message: fmt.Sprintf(format, args...)}
}

func schemaError(file, format string, args ...any) *ValidationError {
	return &ValidationError{File: file, Level: LevelSchema, Message: fmt.Sprintf(format, args...)}
}

// ValidateCommand runs L1 then L2 on a command file. L2 is skipped when L1 fails.
func ValidateCommand(path, content string) *ValidationError {
	return validateComposite(path, content, ValidateCommandSyntax, ValidateCommandSchema)
}

// ValidateAgent runs L1 then L2 on an agent file.
func ValidateAgent(path, content string) *ValidationError {
	return validateComposite(path, content, ValidateAgentSyntax, ValidateAgentSchema)
}

// ValidateSkill runs L1 then L2 on a SKILL.md file.
func ValidateSkill(path, content string) *ValidationError {
	return validateComposite(path, content, ValidateSkillSyntax, ValidateSkillSchema)
}

// Validate dispatches to the composite validator for kind.
func Validate(kind artifact.Kind, path, content string) *ValidationError {
	switch kind {
	case artifact.KindCommand:
		return ValidateCommand(path, content)
	case artifact.KindAgent:
		return ValidateAgent(path, content)
	case artifact.KindSkill:
		return ValidateSkill(path, content)
	default:
		return syntaxError(path, "unknown artifact kind %q", kind)
	}
}

// ValidateSchema dispatches to the L2 validator for kind.
func ValidateSchema(kind artifact.Kind, path string, frontmatter map[string]any) *ValidationError {
	switch kind {
	case artifact.KindCommand:
		return ValidateCommandSchema(path, frontmatter)
	case artifact.KindAgent:
		return ValidateAgentSchema(path, frontmatter)
	case artifact.KindSkill:
		return ValidateSkillSchema(path, frontmatter)
	default:
		return schemaError(path, "unknown artifact kind %q", kind)
	}
}

type syntaxFunc func(path, content string) *ValidationError
type schemaFunc func(path string, frontmatter map[string]any) *ValidationError

func validateComposite(path, content string, l1 syntaxFunc, l2 schemaFunc) *ValidationError {
	if verr := l1(path, content); verr != nil {
		return verr
	}
	doc, verr := splitAndDecode(path, content)
	if verr != nil {
		return verr
	}
	return l2(path, doc)
}
