package bridge

import (
	"fmt"
	"sort"
	"sync"
)

// Command handles one named method.
// Execute must answer result exactly once, either before returning (argument
// errors) or later from a background task.
type Command interface {
	Execute(call *Call, result Result)
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc func(call *Call, result Result)

// Execute calls f(call, result).
func (f CommandFunc) Execute(call *Call, result Result) {
	f(call, result)
}

// Dispatcher routes calls to the command registered for their method.
type Dispatcher struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{commands: make(map[string]Command)}
}

// Register adds a command. Registering the same method twice panics.
func (d *Dispatcher) Register(method string, cmd Command) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.commands[method]; exists {
		panic(fmt.Sprintf("bridge: method %q already registered", method))
	}
	d.commands[method] = cmd
}

// Dispatch hands the call to its command, or answers NotImplemented.
func (d *Dispatcher) Dispatch(call *Call, result Result) {
	d.mu.RLock()
	cmd, ok := d.commands[call.Method]
	d.mu.RUnlock()

	if !ok {
		result.NotImplemented()
		return
	}
	cmd.Execute(call, result)
}

// Methods returns the registered method names in sorted order.
func (d *Dispatcher) Methods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	methods := make([]string, 0, len(d.commands))
	for m := range d.commands {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}
