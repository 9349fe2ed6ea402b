// Package schema implements `rp1 schema`, which prints JSON Schemas for the
// documents rp1 emits.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/rp1-run/rp1/internal/generator"
	"github.com/rp1-run/rp1/internal/stage"
	"github.com/spf13/cobra"
)

// documents maps schema names to a zero value of the Go type they describe.
var documents = map[string]any{
	"manifest": &generator.Manifest{},
	"summary":  &stage.BuildSummary{},
}

// Names returns the known schema names, sorted.
func Names() []string {
	names := make([]string, 0, len(documents))
	for n := range documents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Generate returns the indented JSON Schema for a named document.
func Generate(name string) ([]byte, error) {
	v, ok := documents[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q (expected one of %s)", name, strings.Join(Names(), ", "))
	}
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := reflector.Reflect(v)
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return append(b, '\n'), nil
}

// NewCmd creates `rp1 schema <name>`.
func NewCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "schema <" + strings.Join(Names(), "|") + ">",
		Short:         "Print the JSON Schema of an rp1 output document",
		Args:          cobra.ExactArgs(1),
		ValidArgs:     Names(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := Generate(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
