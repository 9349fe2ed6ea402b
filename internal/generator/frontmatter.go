package generator

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// maxDepth bounds nested metadata so self-referencing maps fail instead of
// recursing forever.
const maxDepth = 32

// field is one top-level frontmatter entry in output order.
type field struct {
	key   string
	value *yaml.Node
}

// renderDocument assembles "---", the frontmatter mapping, "---" and body.
func renderDocument(fields []field, body string) (string, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		top.Content = append(top.Content, scalarNode(f.key), f.value)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	if len(top.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(top); err != nil {
			_ = enc.Close()
			return "", err
		}
		if err := enc.Close(); err != nil {
			return "", err
		}
	}
	buf.WriteString("---\n")
	buf.WriteString(body)
	return buf.String(), nil
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func stringListNode(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	if len(items) == 0 {
		n.Style = yaml.FlowStyle
	}
	for _, it := range items {
		n.Content = append(n.Content, scalarNode(it))
	}
	return n
}

func scalarFrom(v any) (*yaml.Node, error) {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

// canonicalNode converts decoded YAML values into a node tree whose mappings
// are sorted by key.
func canonicalNode(v any, depth int) (*yaml.Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("metadata nested deeper than %d levels (cyclic value?)", maxDepth)
	}
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return scalarNode(x), nil
	case map[string]any:
		return canonicalMapNode(x, depth)
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("metadata key %v is not a string", k)
			}
			m[ks] = vv
		}
		return canonicalMapNode(m, depth)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		if len(x) == 0 {
			n.Style = yaml.FlowStyle
		}
		for _, it := range x {
			child, err := canonicalNode(it, depth+1)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case []string:
		return stringListNode(x), nil
	default:
		return scalarFrom(x)
	}
}

func canonicalMapNode(m map[string]any, depth int) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if len(m) == 0 {
		n.Style = yaml.FlowStyle
		return n, nil
	}
	for _, k := range sortedKeys(m) {
		child, err := canonicalNode(m[k], depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		n.Content = append(n.Content, scalarNode(k), child)
	}
	return n, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
