// Package build implements `rp1 build` and `rp1 check`.
package build

import (
	"context"

	"github.com/rp1-run/rp1/internal/buildinfo"
	"github.com/rp1-run/rp1/internal/options"
	"github.com/rp1-run/rp1/internal/stage"
	"github.com/spf13/cobra"
)

// NewCmd creates `rp1 build`.
func NewCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:           "build",
		Short:         "Convert plugins to OpenCode and write them to the output directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, stage.BuildStages, true)
		},
	}
	bindRunFlags(cmd, f)
	return cmd
}

// NewCheckCmd creates `rp1 check`: the build pipeline without writing output.
func NewCheckCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:           "check",
		Short:         "Parse, validate and transform plugins without writing output",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, stage.CheckStages, false)
		},
	}
	bindRunFlags(cmd, f)
	return cmd
}

func run(cmd *cobra.Command, f *runFlags, stages []string, writes bool) error {
	f.opts.Changed = cmd.Flags().Changed
	res, err := options.Resolve(f.opts, buildinfo.Short(), cmd.ErrOrStderr())
	if err != nil {
		return runError(err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reporter := newProgress(f.progress, f.progressIntervalMs, cmd.ErrOrStderr())
	in := stage.Envelope{Records: []stage.Record{}, Meta: res.Meta}
	env, err := stage.RunStages(ctx, reporter.wrap(stage.Default().Run), in, stages, res.Deps)
	if err != nil {
		return runError(err)
	}

	sum := stage.Summarize(env)
	if f.json {
		err = writeJSONSummary(cmd.OutOrStdout(), sum)
	} else {
		err = writeHumanSummary(cmd.OutOrStdout(), sum, env.Meta, writes)
	}
	if err != nil {
		return runError(err)
	}
	return evaluateExit(sum, res.Meta.AllowPartial)
}
