package event

import (
	"context"
	"time"

	microbatch "github.com/joeycumines/go-microbatch"
	"github.com/roman-aguilera/rtkernel/internal/rtlog"
)

// asyncCall is one deferred handler invocation, queued by Emit and
// drained by a Processor.
type asyncCall struct {
	handler SyncHandler
	args    []any
}

// ProcessorConfig tunes the batching policy a Processor uses to drain
// its queued async calls. The zero value uses microbatch's own
// defaults (MaxSize 16, FlushInterval 50ms, MaxConcurrency 1).
type ProcessorConfig struct {
	MaxBatch       int
	FlushInterval  time.Duration
	MaxConcurrency int
}

// Processor drains asynchronously-subscribed event handlers on its own
// schedule, batching bursts of emits so a slow async handler doesn't
// starve the emitting task (spec §4.H: "handlers are drained by the
// target processor on its own schedule"). It's a thin domain-specific
// wrapper over microbatch.Batcher.
type Processor struct {
	log     rtlog.Logger
	batcher *microbatch.Batcher[asyncCall]
}

// NewProcessor creates a Processor. log may be nil.
func NewProcessor(cfg ProcessorConfig, log rtlog.Logger) *Processor {
	if log == nil {
		log = rtlog.Nop()
	}
	p := &Processor{log: log}
	p.batcher = microbatch.NewBatcher(&microbatch.BatcherConfig{
		MaxSize:        cfg.MaxBatch,
		FlushInterval:  cfg.FlushInterval,
		MaxConcurrency: cfg.MaxConcurrency,
	}, p.runBatch)
	return p
}

func (p *Processor) runBatch(ctx context.Context, calls []asyncCall) error {
	for _, c := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.handler(c.args...); err != nil {
			p.log.Warn("event: async handler error", "error", err)
		}
	}
	return nil
}

// enqueue submits a call for later draining. It does not block on the
// handler itself running, only on the batcher accepting the job.
func (p *Processor) enqueue(c asyncCall) {
	if _, err := p.batcher.Submit(context.Background(), c); err != nil {
		p.log.Warn("event: processor rejected call", "error", err)
	}
}

// Close stops draining and waits for in-flight batches to complete.
func (p *Processor) Close() error {
	return p.batcher.Close()
}
