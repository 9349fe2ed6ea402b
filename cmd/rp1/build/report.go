package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rp1-run/rp1/internal/stage"
)

// encodeJSON returns the JSON encoding with HTML escaping disabled.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONSummary(w io.Writer, sum stage.BuildSummary) error {
	b, err := encodeJSON(sum)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// writeHumanSummary prints one line per failure and warning, then the counts.
func writeHumanSummary(w io.Writer, sum stage.BuildSummary, meta *stage.Meta, wrote bool) error {
	var buf bytes.Buffer
	for _, e := range sum.Errors {
		where := e.Stage
		if e.Level != "" {
			where += " " + e.Level
		}
		fmt.Fprintf(&buf, "FAIL %s [%s] %s\n", locatorOr(e.Locator), where, e.Message)
	}
	for _, wn := range sum.WarningList {
		fmt.Fprintf(&buf, "WARN %s [%s] %s\n", locatorOr(wn.Locator), wn.Code, wn.Message)
	}
	fmt.Fprintf(&buf, "discovered=%d parsed=%d transformed=%d validated=%d written=%d failed=%d warnings=%d\n",
		sum.Discovered, sum.Parsed, sum.Transformed, sum.Validated, sum.Written, sum.Failed, sum.Warnings)
	if wrote {
		switch {
		case sum.Committed:
			fmt.Fprintf(&buf, "wrote %d artifacts to %s\n", sum.Succeeded(), meta.OutputDir)
		case sum.Failed > 0 && !meta.AllowPartial:
			fmt.Fprintf(&buf, "output left unchanged: %d artifacts failed (use --allow-partial to keep the rest)\n", sum.Failed)
		default:
			fmt.Fprintln(&buf, "output left unchanged")
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func locatorOr(l string) string {
	if l == "" {
		return "-"
	}
	return l
}
