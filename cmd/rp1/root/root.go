package root

import (
	"github.com/rp1-run/rp1/cmd/rp1/build"
	"github.com/rp1-run/rp1/cmd/rp1/diagnose"
	"github.com/rp1-run/rp1/cmd/rp1/schema"
	"github.com/rp1-run/rp1/cmd/rp1/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for rp1.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rp1",
		Short: "Build OpenCode plugins from Claude Code commands, agents and skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(version.NewCmd())
	cmd.AddCommand(build.NewCmd())
	cmd.AddCommand(build.NewCheckCmd())
	cmd.AddCommand(diagnose.NewCmd())
	cmd.AddCommand(schema.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
