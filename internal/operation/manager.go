package operation

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/maauso/videoeditor-bridge/internal/operation/id"
)

var (
	// ErrEmptyID is returned when registering an operation without an ID.
	ErrEmptyID = errors.New("operation ID is required")
	// ErrDuplicateID is returned when an ID is already registered.
	ErrDuplicateID = errors.New("operation ID already registered")
	// ErrNilCancel is returned when registering an operation without a cancel function.
	ErrNilCancel = errors.New("operation cancel function is required")
)

type entry struct {
	op     *Operation
	cancel context.CancelFunc
}

// Manager maps operation IDs to the cancel functions of their task scopes.
// It is safe for concurrent use by any number of in-flight invocations.
type Manager struct {
	mu     sync.RWMutex
	ops    map[string]*entry
	logger *slog.Logger
}

// NewManager creates an empty operation registry.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		ops:    make(map[string]*entry),
		logger: logger,
	}
}

// GenerateID returns a fresh operation ID.
func (m *Manager) GenerateID() string {
	return id.Generate()
}

// Register records a running operation and the function that cancels its scope.
func (m *Manager) Register(opID, method string, cancel context.CancelFunc) error {
	if opID == "" {
		return ErrEmptyID
	}
	if cancel == nil {
		return ErrNilCancel
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ops[opID]; ok {
		return ErrDuplicateID
	}
	m.ops[opID] = &entry{op: New(opID, method), cancel: cancel}

	m.logger.Debug("operation registered",
		slog.String("operation_id", opID),
		slog.String("method", method),
	)
	return nil
}

// Cancel cancels the operation's scope and removes it from the registry.
// It returns false if no operation with that ID is registered, which makes it
// safe to call more than once.
func (m *Manager) Cancel(opID string) bool {
	return m.release(opID, StatusCancelled)
}

// Finish removes an operation whose task has returned, recording whether it
// failed, and cancels its scope. It returns false if the operation had
// already been cancelled or was never registered.
func (m *Manager) Finish(opID string, taskErr error) bool {
	status := StatusCompleted
	if taskErr != nil {
		status = StatusFailed
	}
	return m.release(opID, status)
}

// CancelAll cancels every registered operation and returns how many were cancelled.
func (m *Manager) CancelAll() int {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.ops))
	for opID, e := range m.ops {
		entries = append(entries, e)
		delete(m.ops, opID)
	}
	m.mu.Unlock()

	for _, e := range entries {
		_ = e.op.TransitionTo(StatusCancelled)
		e.cancel()
	}
	if len(entries) > 0 {
		m.logger.Info("cancelled all operations", slog.Int("count", len(entries)))
	}
	return len(entries)
}

// Get returns a snapshot of a registered operation.
func (m *Manager) Get(opID string) (*Operation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.ops[opID]
	if !ok {
		return nil, false
	}
	return e.op.Clone(), true
}

// List returns snapshots of all registered operations, oldest first.
func (m *Manager) List() []*Operation {
	m.mu.RLock()
	result := make([]*Operation, 0, len(m.ops))
	for _, e := range m.ops {
		result = append(result, e.op.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result
}

// Len returns the number of registered operations.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ops)
}

func (m *Manager) release(opID string, status Status) bool {
	m.mu.Lock()
	e, ok := m.ops[opID]
	if ok {
		delete(m.ops, opID)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	_ = e.op.TransitionTo(status)
	e.cancel()

	m.logger.Debug("operation released",
		slog.String("operation_id", opID),
		slog.String("method", e.op.Method),
		slog.String("status", string(status)),
		slog.Duration("elapsed", e.op.Elapsed()),
	)
	return true
}
