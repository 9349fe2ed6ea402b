package build

import (
	"github.com/rp1-run/rp1/internal/options"
	"github.com/spf13/cobra"
)

// runFlags are the flags shared by build and check.
type runFlags struct {
	opts               options.Flags
	json               bool
	progress           bool
	progressIntervalMs int
}

func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.opts.Root, "root", options.DefaultRoot, "Repository root holding plugins/<plugin>/")
	fs.StringVarP(&f.opts.Config, "config", "c", "", "Path to config file (.cue); defaults to <root>/rp1.build.cue when present")
	fs.StringVar(&f.opts.Plugin, "plugin", options.DefaultPlugin, "Plugin scope: base, dev or all")
	fs.StringVar(&f.opts.OutputDir, "output-dir", options.DefaultOutputDir, "Output directory")
	fs.IntVar(&f.opts.Workers, "workers", 0, "Parallel workers (default: number of CPUs)")
	fs.BoolVar(&f.opts.StrictTools, "strict-tools", false, "Fail artifacts that reference tools missing from the mapping table")
	fs.BoolVar(&f.opts.AllowPartial, "allow-partial", false, "Succeed when at least one artifact was built")
	fs.BoolVar(&f.opts.NoGitignore, "no-gitignore", false, "Do not honour .gitignore during discovery")
	fs.BoolVar(&f.opts.NoGit, "no-git", false, "Do not record the source commit in the manifest")
	fs.StringVar(&f.opts.Filter, "filter", "", "Lua expression selecting artifacts (globals: name, kind, plugin, path)")
	fs.StringVar(&f.opts.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	fs.StringVar(&f.opts.LogFormat, "log-format", "text", "Log format: text or json")
	fs.BoolVar(&f.json, "json", false, "Print the build summary as JSON on stdout")
	fs.BoolVar(&f.progress, "progress", false, "Report stage progress on stderr")
	fs.IntVar(&f.progressIntervalMs, "progress-interval-ms", 500, "Progress report interval")
}
