package version

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/rp1-run/rp1/internal/buildinfo"
	"github.com/spf13/cobra"
)

// Info is the `rp1 version --json` document.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
	BuiltBy string `json:"built_by,omitempty"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

func current() Info {
	return Info{
		Version: buildinfo.Short(),
		Commit:  buildinfo.Commit,
		Date:    buildinfo.Date,
		BuiltBy: buildinfo.BuiltBy,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// NewCmd returns `rp1 version`.
func NewCmd() *cobra.Command {
	var short, asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the rp1 version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			switch {
			case short:
				_, err := fmt.Fprintln(w, buildinfo.Short())
				return err
			case asJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(current())
			default:
				_, err := fmt.Fprintf(w, "rp1 %s\n", buildinfo.Summary())
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version string")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version details as JSON")
	return cmd
}
