package stage

import (
	"context"
	"time"
)

// StageFunc runs one named stage. Registry.Run satisfies it; callers wrap it
// to observe progress.
type StageFunc func(ctx context.Context, name string, in Envelope, deps Deps) (Envelope, error)

// RunStages executes the named stages in order. A stage error aborts the run
// and removes any staging directory already created.
func RunStages(ctx context.Context, run StageFunc, in Envelope, names []string, deps Deps) (Envelope, error) {
	log := deps.logger()
	out := in
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			discardStaging(out)
			return Envelope{}, err
		}
		start := time.Now()
		next, err := run(ctx, name, out, deps)
		if err != nil {
			discardStaging(out)
			return Envelope{}, err
		}
		out = next
		log.Debug("stage done", "stage", name, "records", len(out.Records), "errors", len(out.Errors), "elapsed", time.Since(start))
	}
	return out, nil
}
