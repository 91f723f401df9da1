package task

import (
	"context"
	"sync"
)

const progressBuffer = 64

// Handle tracks one submitted request.
type Handle struct {
	ID   string
	Type string

	progress chan Progress
	done     chan struct{}

	mu      sync.Mutex
	last    float64
	settled bool
	result  any
	err     error
}

func newHandle(id, typ string) *Handle {
	return &Handle{
		ID:       id,
		Type:     typ,
		progress: make(chan Progress, progressBuffer),
		done:     make(chan struct{}),
	}
}

// Progress returns the progress updates. The channel is closed right
// before the request settles, so ranging over it and then calling Wait
// observes every delivered update before the outcome. Updates are
// dropped rather than blocking the worker when nobody reads them.
func (h *Handle) Progress() <-chan Progress {
	return h.progress
}

// Done is closed once the request has settled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the request settles or ctx ends. The runner has no
// timeouts of its own; callers bound Wait with their context.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stream returns every message of the request in order: progress updates
// followed by exactly one result or error message.
func (h *Handle) Stream() <-chan Message {
	out := make(chan Message, progressBuffer)
	go func() {
		defer close(out)
		for p := range h.progress {
			out <- Message{Kind: KindProgress, ID: h.ID, Type: h.Type, Progress: &p}
		}
		<-h.done
		h.mu.Lock()
		res, err := h.result, h.err
		h.mu.Unlock()
		if err != nil {
			out <- Message{Kind: KindError, ID: h.ID, Type: h.Type, Error: newError(err)}
			return
		}
		out <- Message{Kind: KindResult, ID: h.ID, Type: h.Type, Result: &Result{Data: res}}
	}()
	return out
}

// report publishes a progress update; late or out-of-order calls are
// ignored.
func (h *Handle) report(percent float64, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.settled {
		return
	}
	percent = min(max(percent, 0), 100)
	if percent < h.last {
		percent = h.last
	}
	h.last = percent

	select {
	case h.progress <- Progress{Percent: percent, Message: msg}:
	default:
	}
}

// settle resolves the request once; later calls are no-ops.
func (h *Handle) settle(result any, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.settled {
		return false
	}
	h.settled = true
	h.result, h.err = result, err
	close(h.progress)
	close(h.done)
	return true
}
