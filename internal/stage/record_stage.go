package stage

import (
	"context"
	"errors"
	"strings"

	"github.com/rp1-run/rp1/internal/generator"
	"github.com/rp1-run/rp1/internal/logging"
	"github.com/rp1-run/rp1/internal/parser"
	"github.com/rp1-run/rp1/internal/transform"
	"github.com/rp1-run/rp1/internal/validator"
)

// recordFunc processes one healthy record. A non-nil error marks the record
// failed; warnings are kept either way.
type recordFunc func(rec Record) (Record, []Warning, error)

type recordResult struct {
	rec      Record
	warnings []Warning
	envE     *Error
}

// runRecordStage applies fn to every record without an error, in parallel,
// and merges results back by index so the outcome matches a sequential run.
func runRecordStage(_ context.Context, in Envelope, deps Deps, stageName string, fn recordFunc) Envelope {
	log := logging.WithStage(deps.logger(), stageName)
	n := len(in.Records)
	results := runIndexed(n, getWorkers(in.Meta), func(idx int) recordResult {
		r := in.Records[idx]
		if r.Failed() {
			return recordResult{rec: r}
		}
		rec, warnings, err := fn(r)
		if err != nil {
			e := recordError(stageName, r.Locator, err)
			rec = r
			rec.Error = &e
			logging.WithArtifact(log, r.Locator, string(r.Kind)).Warn("artifact failed", "error", e.Message)
			return recordResult{rec: rec, warnings: warnings, envE: &e}
		}
		return recordResult{rec: rec, warnings: warnings}
	})

	out := in
	out.Records = make([]Record, n)
	var envErrs []Error
	var warnings []Warning
	for i, rr := range results {
		out.Records[i] = rr.rec
		if rr.envE != nil {
			envErrs = append(envErrs, *rr.envE)
		}
		warnings = append(warnings, rr.warnings...)
	}
	appendErrors(&out, envErrs)
	appendWarnings(&out, warnings)
	return out
}

// recordError converts a tagged pipeline error into an envelope Error.
func recordError(stageName, locator string, err error) Error {
	e := Error{Stage: stageName, Kind: ErrorKindIO, Locator: locator, Message: err.Error()}
	var (
		verr *validator.ValidationError
		perr *parser.ParseError
		terr *transform.TransformError
		gerr *generator.GenerationError
		ferr *filterError
	)
	switch {
	case errors.As(err, &verr):
		e.Kind = ErrorKindValidation
		e.Level = string(verr.Level)
		e.Message = verr.Message
	case errors.As(err, &perr):
		e.Kind = ErrorKindParse
		e.Message = perr.Message
	case errors.As(err, &terr):
		e.Kind = ErrorKindTransform
		e.Message = terr.Message
	case errors.As(err, &gerr):
		e.Kind = ErrorKindGeneration
		e.Message = gerr.Message
	case errors.As(err, &ferr):
		e.Kind = ErrorKindFilter
		e.Message = ferr.msg
	}
	e.Message = oneLine(e.Message)
	return e
}

// oneLine collapses whitespace runs so every message prints on a single line.
func oneLine(msg string) string {
	if s := strings.Join(strings.Fields(msg), " "); s != "" {
		return s
	}
	return "error"
}

func appendErrors(out *Envelope, envErrs []Error) {
	if len(envErrs) == 0 {
		return
	}
	out.Errors = append(out.Errors, envErrs...)
	SortEnvelopeErrors(out)
}

func appendWarnings(out *Envelope, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}
	for _, w := range warnings {
		w.Message = oneLine(w.Message)
		out.Warnings = append(out.Warnings, w)
	}
	SortEnvelopeWarnings(out)
}
