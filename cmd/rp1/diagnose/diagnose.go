// Package diagnose implements `rp1 diagnose`, which runs the read-only part
// of the build pipeline and prints the resulting envelope as JSON.
package diagnose

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rp1-run/rp1/internal/buildinfo"
	"github.com/rp1-run/rp1/internal/options"
	"github.com/rp1-run/rp1/internal/stage"
	"github.com/spf13/cobra"
)

type flags struct {
	opts       options.Flags
	untilStage string
	dumpDir    string
	pretty     bool
	list       bool
}

// NewCmd creates `rp1 diagnose`.
func NewCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "diagnose",
		Short:         "Run the pipeline up to a stage and print the envelope as JSON",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.list {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(diagnosable(), "\n"))
				return err
			}
			return runDiagnose(cmd, f)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.untilStage, "until-stage", stage.StageGenerate, "Run the pipeline through this stage (inclusive)")
	fs.StringVar(&f.dumpDir, "dump-dir", "", "Directory to write per-stage dumps (<seq>_<stage>.json)")
	fs.BoolVar(&f.pretty, "pretty", false, "Pretty JSON")
	fs.BoolVar(&f.list, "list", false, "List the stages diagnose can run")
	fs.StringVar(&f.opts.Root, "root", options.DefaultRoot, "Repository root holding plugins/<plugin>/")
	fs.StringVarP(&f.opts.Config, "config", "c", "", "Path to config file (.cue)")
	fs.StringVar(&f.opts.Plugin, "plugin", options.DefaultPlugin, "Plugin scope: base, dev or all")
	fs.StringVar(&f.opts.Filter, "filter", "", "Lua expression selecting artifacts")
	fs.BoolVar(&f.opts.StrictTools, "strict-tools", false, "Fail artifacts that reference unmapped tools")
	fs.BoolVar(&f.opts.NoGitignore, "no-gitignore", false, "Disable .gitignore during discovery")
	fs.BoolVar(&f.opts.NoGit, "no-git", false, "Skip the git lookup")
	return cmd
}

// diagnosable lists the stages that never write outside a dump directory.
func diagnosable() []string {
	return append(append([]string{}, stage.CheckStages...), stage.StageEnrichGit)
}

// stagesUntil returns the diagnosable stages up to and including name.
func stagesUntil(name string) ([]string, error) {
	all := diagnosable()
	for i, s := range all {
		if s == name {
			return all[:i+1], nil
		}
	}
	return nil, &options.UsageError{Err: fmt.Errorf("invalid --until-stage %q (expected one of %s)", name, strings.Join(all, ", "))}
}

func runDiagnose(cmd *cobra.Command, f *flags) error {
	names, err := stagesUntil(f.untilStage)
	if err != nil {
		return err
	}
	f.opts.Changed = cmd.Flags().Changed
	res, err := options.Resolve(f.opts, buildinfo.Short(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	run := stage.Default().Run
	if f.dumpDir != "" {
		run = dumping(f.dumpDir, run)
	}
	in := stage.Envelope{Records: []stage.Record{}, Meta: res.Meta}
	env, err := stage.RunStages(ctx, run, in, names, res.Deps)
	if err != nil {
		return err
	}
	return printEnvelope(cmd.OutOrStdout(), env, f.pretty)
}

// dumping writes the output envelope of every stage to dir.
func dumping(dir string, run stage.StageFunc) stage.StageFunc {
	seq := 0
	return func(ctx context.Context, name string, in stage.Envelope, deps stage.Deps) (stage.Envelope, error) {
		out, err := run(ctx, name, in, deps)
		if err != nil {
			return out, err
		}
		p := filepath.Join(dir, fmt.Sprintf("%02d_%s.json", seq, name))
		seq++
		if err := writeJSONFile(p, out); err != nil {
			return stage.Envelope{}, err
		}
		return out, nil
	}
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dump dir: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func printEnvelope(w io.Writer, env stage.Envelope, pretty bool) error {
	stage.SortEnvelopeErrors(&env)
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(env, "", "  ")
	} else {
		b, err = json.Marshal(env)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
