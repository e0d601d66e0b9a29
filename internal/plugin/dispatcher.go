package plugin

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

const dispatchBuffer = 16

// Result is one finished plugin run.
type Result struct {
	Plugin   string
	Hook     Hook
	Response *Response
	Err      error
}

// Dispatcher runs hook plugins on its own goroutine so the caller never
// waits on a child process. Runs for one hook go in name order; hooks are
// handled in the order they were fired.
type Dispatcher struct {
	mgr  *Manager
	exec *Executor

	queue chan *Request
	once  sync.Once

	mu       sync.Mutex
	onResult func(Result)
}

// NewDispatcher creates a Dispatcher. Call Run to start it.
func NewDispatcher(mgr *Manager, exec *Executor) *Dispatcher {
	return &Dispatcher{
		mgr:   mgr,
		exec:  exec,
		queue: make(chan *Request, dispatchBuffer),
	}
}

// OnResult registers a callback for every finished run.
func (d *Dispatcher) OnResult(fn func(Result)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onResult = fn
}

// Fire queues req. It never blocks; when the queue is full the hook is
// dropped and false is returned.
func (d *Dispatcher) Fire(req *Request) bool {
	select {
	case d.queue <- req:
		return true
	default:
		log.Warn().Str("hook", string(req.Hook)).Msg("plugin queue full, dropping hook")
		return false
	}
}

// Run executes queued hooks until ctx is done. It returns after the run in
// flight, if any, has been cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.once.Do(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case req := <-d.queue:
				d.dispatch(ctx, req)
			}
		}
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, req *Request) {
	for _, p := range d.mgr.ForHook(req.Hook) {
		r := *req
		resp, err := d.exec.Execute(ctx, p, &r)

		switch {
		case err != nil:
			log.Error().Err(err).Str("plugin", p.Manifest.Name).Str("hook", string(req.Hook)).Msg("plugin failed")
		case !resp.Success:
			log.Warn().Str("plugin", p.Manifest.Name).Str("hook", string(req.Hook)).Str("error", resp.Error).Msg("plugin reported failure")
		default:
			log.Debug().Str("plugin", p.Manifest.Name).Str("hook", string(req.Hook)).Msg("plugin ran")
		}

		d.mu.Lock()
		fn := d.onResult
		d.mu.Unlock()
		if fn != nil {
			fn(Result{Plugin: p.Manifest.Name, Hook: req.Hook, Response: resp, Err: err})
		}
	}
}
