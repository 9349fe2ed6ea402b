package build

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rp1-run/rp1/internal/stage"
)

const defaultProgressInterval = 500 * time.Millisecond

// progress prints "progress stage=<name> records=<n> errors=<n>" when a stage
// starts, every interval while it runs, and when it finishes. A nil
// *progress prints nothing.
type progress struct {
	w        io.Writer
	interval time.Duration
	mu       sync.Mutex
}

func newProgress(enabled bool, intervalMs int, w io.Writer) *progress {
	if !enabled || w == nil {
		return nil
	}
	interval := defaultProgressInterval
	if intervalMs > 0 {
		interval = time.Duration(intervalMs) * time.Millisecond
	}
	return &progress{w: w, interval: interval}
}

func (p *progress) wrap(run stage.StageFunc) stage.StageFunc {
	if p == nil {
		return run
	}
	return func(ctx context.Context, name string, in stage.Envelope, deps stage.Deps) (stage.Envelope, error) {
		line := progressLine(name, in)
		p.print(line)
		stop := p.repeat(line)
		out, err := run(ctx, name, in, deps)
		stop()
		if err == nil {
			p.print(progressLine(name, out))
		}
		return out, err
	}
}

// repeat prints line every interval until stop returns.
func (p *progress) repeat(line string) (stop func()) {
	ticker := time.NewTicker(p.interval)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ticker.C:
				p.print(line)
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
		wg.Wait()
	}
}

func (p *progress) print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.w, line)
}

func progressLine(name string, env stage.Envelope) string {
	return fmt.Sprintf("progress stage=%s records=%d errors=%d\n", name, len(env.Records), len(env.Errors))
}
