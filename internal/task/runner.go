// Package task runs heavy geometry jobs on background workers with
// progress reporting and hard cancellation.
//
// Every task type gets one long-lived worker, created on first use. A
// worker runs its requests one at a time in submission order. Cancelling
// a type settles all of its queued and running requests with
// ErrCancelled and discards the worker; the next submission starts a
// fresh one.
package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler runs one request. It should return promptly once ctx is done
// and may call report any number of times.
type Handler func(ctx context.Context, payload any, report func(percent float64, msg string)) (any, error)

// Runner dispatches requests to per-type workers.
type Runner struct {
	queueSize int
	log       *zap.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	workers  map[string]*worker
	closed   bool
}

// NewRunner creates a runner whose workers queue up to queueSize pending
// requests each. A nil logger discards logs.
func NewRunner(queueSize int, log *zap.Logger) *Runner {
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		queueSize: queueSize,
		log:       log,
		handlers:  make(map[string]Handler),
		workers:   make(map[string]*worker),
	}
}

// Register installs the handler for a task type, replacing any previous
// one for workers created afterwards.
func (r *Runner) Register(typ string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typ] = h
}

// Types returns the registered task types, sorted.
func (r *Runner) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Submit queues req on its type's worker. The payload is cloned when it
// implements Cloner. Submit blocks while the queue is full, until ctx
// ends.
func (r *Runner) Submit(ctx context.Context, req Request) (*Handle, error) {
	w, err := r.worker(req.Type)
	if err != nil {
		return nil, err
	}

	h := newHandle(uuid.NewString(), req.Type)
	j := &job{ctx: ctx, handle: h, payload: cloneValue(req.Payload)}

	select {
	case w.queue <- j:
	case <-w.ctx.Done():
		h.settle(nil, &Error{Message: ErrCancelled.Error(), Err: ErrCancelled})
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	// The worker may have been cancelled while the job was queued.
	if w.ctx.Err() != nil {
		h.settle(nil, &Error{Message: ErrCancelled.Error(), Err: ErrCancelled})
	}

	r.log.Debug("task queued", zap.String("type", req.Type), zap.String("id", h.ID))
	return h, nil
}

// Run submits req and waits for its outcome.
func (r *Runner) Run(ctx context.Context, req Request) (any, error) {
	h, err := r.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return h.Wait(ctx)
}

func (r *Runner) worker(typ string) (*worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if w, ok := r.workers[typ]; ok {
		return w, nil
	}
	h, ok := r.handlers[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	w := newWorker(typ, h, r.queueSize, r.log.With(zap.String("type", typ)))
	r.workers[typ] = w
	go w.loop()
	return w, nil
}

// Cancel settles every queued and running request of typ with
// ErrCancelled and discards its worker. It reports whether a worker
// existed.
func (r *Runner) Cancel(typ string) bool {
	r.mu.Lock()
	w, ok := r.workers[typ]
	delete(r.workers, typ)
	r.mu.Unlock()

	if !ok {
		return false
	}
	w.stop()
	r.log.Info("task type cancelled", zap.String("type", typ))
	return true
}

// Close cancels every worker and rejects further submissions.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	workers := r.workers
	r.workers = make(map[string]*worker)
	r.mu.Unlock()

	for _, w := range workers {
		w.stop()
	}
}

type job struct {
	ctx     context.Context
	handle  *Handle
	payload any
}

type worker struct {
	typ     string
	handler Handler
	queue   chan *job
	log     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	current *job
}

func newWorker(typ string, h Handler, queueSize int, log *zap.Logger) *worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &worker{
		typ:     typ,
		handler: h,
		queue:   make(chan *job, queueSize),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (w *worker) loop() {
	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case j := <-w.queue:
			w.run(j)
		}
	}
}

// drain settles everything still queued after cancellation.
func (w *worker) drain() {
	for {
		select {
		case j := <-w.queue:
			j.handle.settle(nil, &Error{Message: ErrCancelled.Error(), Err: ErrCancelled})
		default:
			return
		}
	}
}

// stop cancels the worker and settles its running request at once; a
// handler that ignores its context finishes in the background and its
// outcome is discarded.
func (w *worker) stop() {
	w.cancel()
	w.mu.Lock()
	if w.current != nil {
		w.current.handle.settle(nil, &Error{Message: ErrCancelled.Error(), Err: ErrCancelled})
	}
	w.mu.Unlock()
}

func (w *worker) run(j *job) {
	h := j.handle
	if w.ctx.Err() != nil {
		h.settle(nil, &Error{Message: ErrCancelled.Error(), Err: ErrCancelled})
		return
	}
	if err := j.ctx.Err(); err != nil {
		h.settle(nil, newError(err))
		return
	}

	w.mu.Lock()
	w.current = j
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.current = nil
		w.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(w.ctx)
	defer cancel()
	stopAfter := context.AfterFunc(j.ctx, cancel)
	defer stopAfter()

	start := time.Now()
	res, err := w.call(ctx, j)

	switch {
	case w.ctx.Err() != nil:
		h.settle(nil, &Error{Message: ErrCancelled.Error(), Err: ErrCancelled})
	case err != nil:
		h.settle(nil, newError(err))
		w.log.Warn("task failed", zap.String("id", h.ID), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	default:
		h.settle(cloneValue(res), nil)
		w.log.Debug("task finished", zap.String("id", h.ID), zap.Duration("elapsed", time.Since(start)))
	}
}

// call runs the handler, converting a panic into an error.
func (w *worker) call(ctx context.Context, j *job) (res any, err error) {
	defer func() {
		if v := recover(); v != nil {
			w.log.Error("task panicked", zap.String("id", j.handle.ID), zap.Any("panic", v))
			res, err = nil, panicError(v)
		}
	}()
	return w.handler(ctx, j.payload, j.handle.report)
}
