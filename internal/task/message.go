package task

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled resolves every request of a task type that was
	// cancelled, queued or in flight.
	ErrCancelled = errors.New("task cancelled")
	// ErrUnknownType is returned by Submit for unregistered task types.
	ErrUnknownType = errors.New("unknown task type")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("task runner closed")
)

// Kind tags messages on the wire.
type Kind string

const (
	KindProgress Kind = "progress"
	KindResult   Kind = "result"
	KindError    Kind = "error"
)

// Request asks the runner to run the handler registered for Type.
type Request struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Progress is a non-terminal status update. Percent is clamped to 0..100
// and never decreases within one request.
type Progress struct {
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// Result carries a successful handler's output.
type Result struct {
	Data any `json:"data"`
}

// Error is a failed request. It wraps the handler's error, or describes a
// recovered panic.
type Error struct {
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newError(err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return &Error{Message: err.Error(), Err: err}
}

func panicError(v any) *Error {
	if err, ok := v.(error); ok {
		return &Error{Message: fmt.Sprintf("panic: %v", err), Err: err}
	}
	return &Error{Message: fmt.Sprintf("panic: %v", v)}
}

// Message is the tagged wire form of everything a request emits.
type Message struct {
	Kind     Kind      `json:"kind"`
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Progress *Progress `json:"progress,omitempty"`
	Result   *Result   `json:"result,omitempty"`
	Error    *Error    `json:"error,omitempty"`
}

// Cloner is implemented by payloads and results that must be deep-copied
// when crossing the runner boundary.
type Cloner interface {
	Clone() any
}

func cloneValue(v any) any {
	if c, ok := v.(Cloner); ok {
		return c.Clone()
	}
	return v
}
