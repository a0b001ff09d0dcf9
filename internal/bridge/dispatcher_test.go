package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Dispatch(t *testing.T) {
	d := NewDispatcher()
	d.Register("echo", CommandFunc(func(call *Call, result Result) {
		s, _ := call.String("value")
		result.Success(s)
	}))

	r := NewReplyChannel()
	d.Dispatch(NewCall("echo", map[string]any{"value": "hi"}), r)

	reply, err := r.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi", reply.Value)
}

func TestDispatcher_UnknownMethod(t *testing.T) {
	d := NewDispatcher()

	r := NewReplyChannel()
	d.Dispatch(NewCall("flipVideo", nil), r)

	reply, err := r.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, reply.Err)
	assert.Equal(t, CodeNotImplemented, reply.Err.Code)
}

func TestDispatcher_DuplicateRegistrationPanics(t *testing.T) {
	d := NewDispatcher()
	noop := CommandFunc(func(*Call, Result) {})
	d.Register("trimVideo", noop)

	assert.Panics(t, func() { d.Register("trimVideo", noop) })
}

func TestDispatcher_Methods(t *testing.T) {
	d := NewDispatcher()
	noop := CommandFunc(func(*Call, Result) {})
	d.Register("trimVideo", noop)
	d.Register("adjustVideoSpeed", noop)
	d.Register("mergeVideos", noop)

	assert.Equal(t, []string{"adjustVideoSpeed", "mergeVideos", "trimVideo"}, d.Methods())
}
