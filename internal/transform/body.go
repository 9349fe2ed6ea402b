package transform

import (
	"sort"

	"github.com/rp1-run/rp1/internal/registry"
)

// RewriteBody substitutes whole-token tool names in body text. Tools with no
// OpenCode equivalent become plain words so the token never survives.
func RewriteBody(body string, reg *registry.Registry) string {
	re := reg.ToolPattern()
	if re == nil || body == "" {
		return body
	}
	return re.ReplaceAllStringFunc(body, func(tok string) string {
		if target, ok := reg.ToolMapping(tok); ok {
			return target
		}
		return registry.Humanize(tok)
	})
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
