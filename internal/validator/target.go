package validator

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rp1-run/rp1/internal/artifact"
)

var toolNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\-]*$`)

var targetValidate = newTargetValidator()

func newTargetValidator() *playground.Validate {
	v := playground.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("toolname", func(fl playground.FieldLevel) bool {
		return toolNamePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("model", func(fl playground.FieldLevel) bool {
		return artifact.IsAcceptedModel(fl.Field().String())
	}))
	must(v.RegisterValidation("relpath", func(fl playground.FieldLevel) bool {
		return IsRelPath(fl.Field().String())
	}))
	return v
}

// IsRelPath reports whether p is a slash-separated path that stays inside its
// base directory.
func IsRelPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return false
	}
	clean := path.Clean(p)
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

// ValidateTarget re-checks a transformed OpenCode record. L1 requires a
// non-blank body and serializable extra metadata; L2 applies the struct rules.
func ValidateTarget(file string, target any) *ValidationError {
	body, extra, err := targetParts(target)
	if err != nil {
		return syntaxError(file, "%v", err)
	}
	if strings.TrimSpace(body) == "" {
		return syntaxError(file, "body is empty")
	}
	if len(extra) > 0 {
		if _, err := yaml.Marshal(extra); err != nil {
			return syntaxError(file, "frontmatter cannot be serialized: %v", err)
		}
	}

	if err := targetValidate.Struct(target); err != nil {
		var fieldErrs playground.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return schemaError(file, "%s", describeFieldError(fieldErrs[0]))
		}
		return schemaError(file, "%v", err)
	}
	return nil
}

func targetParts(target any) (string, map[string]any, error) {
	switch t := target.(type) {
	case *artifact.OpenCodeCommand:
		return t.Body, t.Extra, nil
	case *artifact.OpenCodeAgent:
		return t.Body, nil, nil
	case *artifact.OpenCodeSkill:
		return t.Body, t.Extra, nil
	default:
		return "", nil, fmt.Errorf("unsupported target type %T", target)
	}
}

func describeFieldError(fe playground.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing required field: %s", field)
	case "oneof":
		return fmt.Sprintf("field %s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "toolname":
		return fmt.Sprintf("invalid tool name at %s: %q", field, fmt.Sprint(fe.Value()))
	case "model":
		return fmt.Sprintf("field %s must be one of %s, got %q", field, strings.Join(artifact.AcceptedModels, ", "), fmt.Sprint(fe.Value()))
	case "relpath":
		return fmt.Sprintf("%s must be a relative path inside the skill, got %q", field, fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("field %s failed %q validation", field, fe.Tag())
	}
}
