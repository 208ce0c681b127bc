package pipeline

import (
	"context"
	"log/slog"
	"sync"
)

// Runner is the orchestration entry point the dispatcher schedules.
type Runner interface {
	Run(ctx context.Context, recordID string)
}

// Dispatcher schedules pipeline runs decoupled from the request/response
// lifecycle: Dispatch returns immediately and the run happens on its own
// goroutine with its own context, so the upload response never waits on
// transcription.
//
// Runs for the same record id never interleave: a dispatch for an id that
// is already in flight is dropped. The pipeline has no retry, so a dropped
// duplicate loses nothing.
//
// Known limitation: an in-flight run is abandoned if the process dies,
// leaving the record stuck in processing. There is no reconciliation job.
type Dispatcher struct {
	runner Runner
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
	baseCtx  context.Context
	cancel   context.CancelFunc
}

// NewDispatcher creates a Dispatcher running jobs under its own root
// context, independent of any HTTP request.
func NewDispatcher(runner Runner, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		runner:   runner,
		logger:   logger,
		inFlight: make(map[string]struct{}),
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// Dispatch schedules a pipeline run for the record and returns immediately.
func (d *Dispatcher) Dispatch(recordID string) {
	d.mu.Lock()
	if _, running := d.inFlight[recordID]; running {
		d.mu.Unlock()
		d.logger.Warn("pipeline already running, dispatch dropped", "record_id", recordID)
		return
	}
	d.inFlight[recordID] = struct{}{}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer func() {
			d.mu.Lock()
			delete(d.inFlight, recordID)
			d.mu.Unlock()
			d.wg.Done()
		}()
		d.runner.Run(d.baseCtx, recordID)
	}()
}

// Close waits for in-flight runs to finish. It does not cancel them first:
// a running stage is allowed to reach a terminal record state.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	d.cancel()
}
