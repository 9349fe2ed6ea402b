// Package parser reads Claude Code artifact files (Markdown with a YAML
// frontmatter block) into typed records.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes the frontmatter block.
const Delimiter = "---"

// ParseError reports a file that could not be split or decoded.
type ParseError struct {
	File    string
	Message string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Split failure messages. Validators reuse them so L1 and parse errors read the same.
const (
	MsgMissingOpening = "missing opening frontmatter delimiter '---' on the first line"
	MsgMissingClosing = "missing closing frontmatter delimiter '---'"
)

// Document is a file split into its frontmatter and body.
type Document struct {
	// Raw is the frontmatter text between the delimiters.
	Raw string
	// Body is everything after the closing delimiter line, byte for byte.
	Body string
	// Meta is the decoded frontmatter mapping.
	Meta map[string]any
	// Keys lists top-level frontmatter keys in source order.
	Keys []string
}

func cutLine(s string) (line, rest string, found bool) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == Delimiter
}

// SplitFrontmatter separates the raw frontmatter text from the body. The body
// is returned verbatim.
func SplitFrontmatter(content string) (raw string, body string, err error) {
	content = strings.TrimPrefix(content, "\ufeff")
	line, rest, found := cutLine(content)
	if !isDelimiter(line) {
		return "", "", errors.New(MsgMissingOpening)
	}
	if !found {
		return "", "", errors.New(MsgMissingClosing)
	}
	var fm strings.Builder
	for {
		line, next, found := cutLine(rest)
		if isDelimiter(line) {
			return fm.String(), next, nil
		}
		if !found {
			return "", "", errors.New(MsgMissingClosing)
		}
		fm.WriteString(line)
		fm.WriteByte('\n')
		rest = next
	}
}

// DecodeFrontmatter decodes raw YAML into a mapping and its key order. An
// empty block decodes to an empty mapping.
func DecodeFrontmatter(raw string) (map[string]any, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &root); err != nil {
		return nil, nil, fmt.Errorf("invalid YAML frontmatter: %v", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return map[string]any{}, nil, nil
	}
	doc := root.Content[0]
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return map[string]any{}, nil, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("invalid YAML frontmatter: top-level must be a mapping")
	}
	keys := make([]string, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keys = append(keys, doc.Content[i].Value)
	}
	meta := map[string]any{}
	if err := doc.Decode(&meta); err != nil {
		return nil, nil, fmt.Errorf("invalid YAML frontmatter: %v", err)
	}
	return meta, keys, nil
}

// ParseDocument splits and decodes content. Errors are *ParseError.
func ParseDocument(content, path string) (*Document, error) {
	raw, body, err := SplitFrontmatter(content)
	if err != nil {
		return nil, &ParseError{File: path, Message: err.Error()}
	}
	meta, keys, err := DecodeFrontmatter(raw)
	if err != nil {
		return nil, &ParseError{File: path, Message: err.Error()}
	}
	return &Document{Raw: raw, Body: body, Meta: meta, Keys: keys}, nil
}
