// Package operation provides the process-wide registry of in-flight operations.
// Each command invocation registers a cancellable scope here when its task
// starts and removes it when the task ends, which lets an external caller
// cancel work that is still running.
package operation

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// Status represents the state of an operation.
type Status string

const (
	// StatusRunning indicates the operation's task has been started.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the task returned a result.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the task returned an error.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the operation was cancelled before its task returned.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

var validTransitions = map[Status][]Status{
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

func canTransition(from, to Status) bool {
	return slices.Contains(validTransitions[from], to)
}

// IsTerminal returns true if no further transitions are possible from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Operation describes one in-flight command invocation.
type Operation struct {
	mu sync.RWMutex

	// ID is the registry key for this operation.
	ID string
	// Method is the bridge method that started the operation.
	Method string
	// Status is the current state.
	Status Status
	// StartedAt is when the operation was registered.
	StartedAt time.Time
	// EndedAt is when the operation reached a terminal state.
	EndedAt time.Time
}

// New creates a running operation.
func New(id, method string) *Operation {
	return &Operation{
		ID:        id,
		Method:    method,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
}

// TransitionTo changes the operation status.
// Returns ErrInvalidTransition if the transition is not allowed.
func (o *Operation) TransitionTo(status Status) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !canTransition(o.Status, status) {
		return ErrInvalidTransition
	}
	o.Status = status
	if status.IsTerminal() {
		o.EndedAt = time.Now()
	}
	return nil
}

// GetStatus returns the current status (thread-safe).
func (o *Operation) GetStatus() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Status
}

// Elapsed returns how long the operation has been running, or how long it
// ran if it already ended.
func (o *Operation) Elapsed() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.EndedAt.IsZero() {
		return time.Since(o.StartedAt)
	}
	return o.EndedAt.Sub(o.StartedAt)
}

// Clone creates a copy of the operation for safe reads.
func (o *Operation) Clone() *Operation {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return &Operation{
		ID:        o.ID,
		Method:    o.Method,
		Status:    o.Status,
		StartedAt: o.StartedAt,
		EndedAt:   o.EndedAt,
	}
}
