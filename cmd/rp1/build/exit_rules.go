package build

import (
	"errors"
	"fmt"

	"github.com/rp1-run/rp1/internal/options"
	"github.com/rp1-run/rp1/internal/stage"
)

const (
	exitCodeSuccess = 0
	exitCodeFailed  = 1
	exitCodeUsage   = 2
)

type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string { return e.msg }
func (e exitError) ExitCode() int { return e.code }

// evaluateExit maps a finished run onto the process exit status.
func evaluateExit(sum stage.BuildSummary, allowPartial bool) error {
	if stage.Acceptable(sum.Failed, sum.Succeeded(), allowPartial) {
		return nil
	}
	total := len(sum.Results)
	if allowPartial {
		return exitError{code: exitCodeFailed, msg: fmt.Sprintf("build failed: all %d artifacts failed", total)}
	}
	return exitError{code: exitCodeFailed, msg: fmt.Sprintf("build failed: %d of %d artifacts failed", sum.Failed, total)}
}

// runError classifies an error that stopped the pipeline itself.
func runError(err error) error {
	var uerr *options.UsageError
	if errors.As(err, &uerr) {
		return exitError{code: exitCodeUsage, msg: err.Error()}
	}
	return exitError{code: exitCodeFailed, msg: err.Error()}
}
