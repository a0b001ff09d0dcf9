package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
)

func TestAdjustSpeed_Success(t *testing.T) {
	l, ops := newTestLauncher()
	utility := new(MockUtility)
	utility.On("AdjustVideoSpeed", mock.Anything, "/tmp/in.mp4", 2.0).Return("/tmp/out_2x.mp4", nil)

	r := invoke(t, NewAdjustSpeed(l, utility), map[string]any{
		"videoPath": "/tmp/in.mp4",
		"speed":     2.0,
	})

	require.Nil(t, r.Err)
	assert.Equal(t, "/tmp/out_2x.mp4", r.Value)
	assert.Zero(t, ops.Len())
	utility.AssertExpectations(t)
}

func TestAdjustSpeed_IntegerSpeed(t *testing.T) {
	l, _ := newTestLauncher()
	utility := new(MockUtility)
	utility.On("AdjustVideoSpeed", mock.Anything, "/tmp/in.mp4", 3.0).Return("/tmp/out_3x.mp4", nil)

	r := invoke(t, NewAdjustSpeed(l, utility), map[string]any{
		"videoPath": "/tmp/in.mp4",
		"speed":     3,
	})

	require.Nil(t, r.Err)
	assert.Equal(t, "/tmp/out_3x.mp4", r.Value)
}

func TestAdjustSpeed_MissingArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing videoPath", map[string]any{"speed": 2.0}},
		{"missing speed", map[string]any{"videoPath": "/tmp/in.mp4"}},
		{"null speed", map[string]any{"videoPath": "/tmp/in.mp4", "speed": nil}},
		{"string speed", map[string]any{"videoPath": "/tmp/in.mp4", "speed": "2"}},
		{"numeric videoPath", map[string]any{"videoPath": 7, "speed": 2.0}},
		{"no arguments", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ops := newTestLauncher()
			utility := new(MockUtility)

			reply := bridge.NewReplyChannel()
			NewAdjustSpeed(l, utility).Execute(bridge.NewCall(MethodAdjustVideoSpeed, tt.args), reply)

			// The reply is delivered before Execute returns.
			assert.Zero(t, ops.Len())
			r := waitReply(t, reply)
			require.NotNil(t, r.Err)
			assert.Equal(t, bridge.CodeInvalidArguments, r.Err.Code)
			assert.Equal(t, "Missing required arguments: videoPath or speedMultiplier", r.Err.Message)
			utility.AssertNotCalled(t, "AdjustVideoSpeed", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAdjustSpeed_UtilityError(t *testing.T) {
	l, ops := newTestLauncher()
	utility := new(MockUtility)
	utility.On("AdjustVideoSpeed", mock.Anything, "/tmp/in.mp4", -1.0).
		Return("", errors.New("invalid speed: must be a positive number"))

	r := invoke(t, NewAdjustSpeed(l, utility), map[string]any{
		"videoPath": "/tmp/in.mp4",
		"speed":     -1.0,
	})

	require.NotNil(t, r.Err)
	assert.Equal(t, CodeAdjustSpeedError, r.Err.Code)
	assert.Equal(t, "invalid speed: must be a positive number", r.Err.Message)
	assert.Zero(t, ops.Len())
}

// speedFunc adapts a function to SpeedAdjuster.
type speedFunc func(ctx context.Context, videoPath string, speed float64) (string, error)

func (f speedFunc) AdjustVideoSpeed(ctx context.Context, videoPath string, speed float64) (string, error) {
	return f(ctx, videoPath, speed)
}

func TestAdjustSpeed_ConcurrentCancelOne(t *testing.T) {
	l, ops := newTestLauncher()

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	cmd := NewAdjustSpeed(l, speedFunc(func(ctx context.Context, videoPath string, speed float64) (string, error) {
		started <- struct{}{}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-release:
			return videoPath + ".out", nil
		}
	}))

	first := bridge.NewReplyChannel()
	second := bridge.NewReplyChannel()
	cmd.Execute(bridge.NewCall(MethodAdjustVideoSpeed, map[string]any{"videoPath": "/tmp/a.mp4", "speed": 2.0}), first)
	cmd.Execute(bridge.NewCall(MethodAdjustVideoSpeed, map[string]any{"videoPath": "/tmp/b.mp4", "speed": 0.5}), second)
	<-started
	<-started

	running := ops.List()
	require.Len(t, running, 2)
	assert.NotEqual(t, running[0].ID, running[1].ID)

	require.True(t, ops.Cancel(running[0].ID))
	assert.Equal(t, 1, ops.Len(), "the other operation must keep running")

	// Only the cancelled operation answers before release.
	firstCh, secondCh := waitChan(first), waitChan(second)
	var cancelled bridge.Reply
	var otherCh <-chan bridge.Reply
	select {
	case cancelled = <-firstCh:
		otherCh = secondCh
	case cancelled = <-secondCh:
		otherCh = firstCh
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled operation did not answer")
	}
	require.NotNil(t, cancelled.Err)
	assert.Equal(t, CodeAdjustSpeedError, cancelled.Err.Code)

	close(release)
	select {
	case r := <-otherCh:
		assert.Nil(t, r.Err)
		assert.Contains(t, r.Value, ".mp4.out")
	case <-time.After(5 * time.Second):
		t.Fatal("remaining operation did not answer")
	}
	assert.Zero(t, ops.Len())
}

func TestAdjustSpeed_CancelledReplyCarriesErrorCode(t *testing.T) {
	l, ops := newTestLauncher()
	started := make(chan struct{})
	cmd := NewAdjustSpeed(l, speedFunc(func(ctx context.Context, _ string, _ float64) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}))

	reply := bridge.NewReplyChannel()
	cmd.Execute(bridge.NewCall(MethodAdjustVideoSpeed, map[string]any{"videoPath": "/tmp/in.mp4", "speed": 2.0}), reply)
	<-started

	assert.Equal(t, 1, ops.CancelAll())

	r := waitReply(t, reply)
	require.NotNil(t, r.Err)
	assert.Equal(t, CodeAdjustSpeedError, r.Err.Code)
	assert.Equal(t, "context canceled", r.Err.Message)
}

func TestAdjustSpeed_ManyConcurrentInvocations(t *testing.T) {
	l, ops := newTestLauncher()
	utility := new(MockUtility)
	utility.On("AdjustVideoSpeed", mock.Anything, mock.Anything, mock.Anything).Return("/tmp/out.mp4", nil)
	cmd := NewAdjustSpeed(l, utility)

	replies := make([]*bridge.ReplyChannel, 20)
	var wg sync.WaitGroup
	for i := range replies {
		replies[i] = bridge.NewReplyChannel()
		wg.Add(1)
		go func(reply *bridge.ReplyChannel) {
			defer wg.Done()
			cmd.Execute(bridge.NewCall(MethodAdjustVideoSpeed, map[string]any{"videoPath": "/tmp/in.mp4", "speed": 1.5}), reply)
		}(replies[i])
	}
	wg.Wait()

	for _, reply := range replies {
		r := waitReply(t, reply)
		assert.Nil(t, r.Err)
	}
	assert.Zero(t, ops.Len())
	utility.AssertNumberOfCalls(t, "AdjustVideoSpeed", 20)
}

// waitChan delivers reply on a channel so several replies can be selected on.
func waitChan(reply *bridge.ReplyChannel) <-chan bridge.Reply {
	ch := make(chan bridge.Reply, 1)
	go func() {
		r, err := reply.Wait(context.Background())
		if err == nil {
			ch <- r
		}
	}()
	return ch
}
