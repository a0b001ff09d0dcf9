package bridge

import (
	"context"
	"fmt"
	"sync"
)

// Error codes shared by all commands.
const (
	// CodeInvalidArguments is returned when required arguments are missing or
	// have the wrong type. No work is started.
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	// CodeNotImplemented is returned for methods nobody registered.
	CodeNotImplemented = "NOT_IMPLEMENTED"
)

// Result receives the single answer to a Call.
// Implementations must tolerate being called from any goroutine; only the
// first answer is delivered.
type Result interface {
	Success(value any)
	Error(code, message string, details any)
	NotImplemented()
}

// OperationObserver is implemented by Results that want the ID of the
// operation started to answer them. It is told before the answer arrives.
type OperationObserver interface {
	OperationStarted(opID string)
}

// Error is the error half of a Reply.
type Error struct {
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Reply is the answer delivered for a Call. Exactly one of Value or Err is
// meaningful: Err is nil on success. OperationID is set when the answer came
// from an operation, and empty for synchronous answers.
type Reply struct {
	Value       any
	Err         *Error
	OperationID string
}

// ReplyChannel is a Result that hands its single Reply to one waiter.
type ReplyChannel struct {
	once sync.Once
	ch   chan Reply

	mu   sync.Mutex
	opID string
}

var (
	_ Result            = (*ReplyChannel)(nil)
	_ OperationObserver = (*ReplyChannel)(nil)
)

// NewReplyChannel creates a Result whose answer is collected with Wait.
func NewReplyChannel() *ReplyChannel {
	return &ReplyChannel{ch: make(chan Reply, 1)}
}

// Success delivers a successful reply.
func (r *ReplyChannel) Success(value any) {
	r.deliver(Reply{Value: value})
}

// Error delivers an error reply.
func (r *ReplyChannel) Error(code, message string, details any) {
	r.deliver(Reply{Err: &Error{Code: code, Message: message, Details: details}})
}

// OperationStarted records the operation ID carried by the eventual Reply.
func (r *ReplyChannel) OperationStarted(opID string) {
	r.mu.Lock()
	r.opID = opID
	r.mu.Unlock()
}

// NotImplemented delivers a NOT_IMPLEMENTED error reply.
func (r *ReplyChannel) NotImplemented() {
	r.Error(CodeNotImplemented, "method not implemented", nil)
}

// Wait blocks until a reply is delivered or ctx is done.
func (r *ReplyChannel) Wait(ctx context.Context) (Reply, error) {
	select {
	case reply := <-r.ch:
		return reply, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

func (r *ReplyChannel) deliver(reply Reply) {
	r.once.Do(func() {
		r.mu.Lock()
		reply.OperationID = r.opID
		r.mu.Unlock()
		r.ch <- reply
	})
}
