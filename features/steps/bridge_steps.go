//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cucumber/godog"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/command"
	"github.com/maauso/videoeditor-bridge/internal/media"
	"github.com/maauso/videoeditor-bridge/internal/operation"
)

const replyTimeout = 2 * time.Second

// stubUtility answers AdjustVideoSpeed from scenario state. The other
// media.Utility methods are never reached by these scenarios.
type stubUtility struct {
	media.Utility

	mu      sync.Mutex
	output  string
	failErr error
	block   bool
	calls   []speedCall
	started chan struct{}
}

type speedCall struct {
	videoPath string
	speed     float64
}

func (s *stubUtility) AdjustVideoSpeed(ctx context.Context, videoPath string, speed float64) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, speedCall{videoPath: videoPath, speed: speed})
	block, output, failErr := s.block, s.output, s.failErr
	s.mu.Unlock()

	if block {
		s.started <- struct{}{}
		<-ctx.Done()
		return "", ctx.Err()
	}
	if failErr != nil {
		return "", failErr
	}
	return output, nil
}

func (s *stubUtility) recordedCalls() []speedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]speedCall(nil), s.calls...)
}

// stubUploader satisfies command.Uploader; export is not exercised here.
type stubUploader struct{}

func (stubUploader) UploadFile(context.Context, string, string) (string, error) {
	return "", errors.New("export is not available in this suite")
}

// bridgeContext holds test state for bridge scenarios
type bridgeContext struct {
	utility    *stubUtility
	ops        *operation.Manager
	dispatcher *bridge.Dispatcher

	lastReply   bridge.Reply
	cancelReply bridge.Reply
	started     []*bridge.ReplyChannel
}

// SharedBridgeContext is reset before each scenario via Before hook
var SharedBridgeContext *bridgeContext

func getBridgeContext() *bridgeContext {
	return SharedBridgeContext
}

func InitializeBridgeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		utility := &stubUtility{started: make(chan struct{}, 16)}
		ops := operation.NewManager(logger)
		dispatcher := bridge.NewDispatcher()
		command.Register(dispatcher, command.NewLauncher(ops, logger), ops, utility, stubUploader{})

		SharedBridgeContext = &bridgeContext{
			utility:    utility,
			ops:        ops,
			dispatcher: dispatcher,
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if bc := getBridgeContext(); bc != nil {
			bc.ops.CancelAll()
		}
		return c, nil
	})

	// Given steps
	ctx.Step(`^a media utility that produces "([^"]*)"$`, aMediaUtilityThatProduces)
	ctx.Step(`^the media utility fails with "([^"]*)"$`, theMediaUtilityFailsWith)
	ctx.Step(`^a media utility that blocks until cancelled$`, aMediaUtilityThatBlocksUntilCancelled)

	// When steps
	ctx.Step(`^I call "([^"]*)" with videoPath "([^"]*)" and speed ([0-9.]+)$`, iCallWithVideoPathAndSpeed)
	ctx.Step(`^I call "([^"]*)" with only speed ([0-9.]+)$`, iCallWithOnlySpeed)
	ctx.Step(`^I call "([^"]*)" with only videoPath "([^"]*)"$`, iCallWithOnlyVideoPath)
	ctx.Step(`^I call "cancelOperation" with no arguments$`, iCallCancelOperationWithNoArguments)
	ctx.Step(`^I cancel operation "([^"]*)"$`, iCancelOperation)
	ctx.Step(`^I start (\d+) speed adjustments?$`, iStartSpeedAdjustments)
	ctx.Step(`^all (\d+) operations are running$`, allOperationsAreRunning)
	ctx.Step(`^I cancel the first running operation$`, iCancelTheFirstRunningOperation)

	// Then steps
	ctx.Step(`^the call succeeds with "([^"]*)"$`, theCallSucceedsWith)
	ctx.Step(`^the call fails with code "([^"]*)" and message "([^"]*)"$`, theCallFailsWithCodeAndMessage)
	ctx.Step(`^the utility was asked to adjust "([^"]*)" by ([0-9.]+)$`, theUtilityWasAskedToAdjust)
	ctx.Step(`^the utility was not called$`, theUtilityWasNotCalled)
	ctx.Step(`^no operations are running$`, noOperationsAreRunning)
	ctx.Step(`^(\d+) operations are still running$`, operationsAreStillRunning)
	ctx.Step(`^the cancel call returns (true|false)$`, theCancelCallReturns)
	ctx.Step(`^every started call fails with code "([^"]*)"$`, everyStartedCallFailsWithCode)
}

func aMediaUtilityThatProduces(output string) error {
	bc := getBridgeContext()
	bc.utility.mu.Lock()
	defer bc.utility.mu.Unlock()
	bc.utility.output = output
	return nil
}

func theMediaUtilityFailsWith(message string) error {
	bc := getBridgeContext()
	bc.utility.mu.Lock()
	defer bc.utility.mu.Unlock()
	bc.utility.failErr = errors.New(message)
	return nil
}

func aMediaUtilityThatBlocksUntilCancelled() error {
	bc := getBridgeContext()
	bc.utility.mu.Lock()
	defer bc.utility.mu.Unlock()
	bc.utility.block = true
	return nil
}

func (bc *bridgeContext) invoke(method string, args map[string]any) (bridge.Reply, error) {
	reply := bridge.NewReplyChannel()
	bc.dispatcher.Dispatch(bridge.NewCall(method, args), reply)

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	res, err := reply.Wait(ctx)
	if err != nil {
		return bridge.Reply{}, fmt.Errorf("no reply to %s: %w", method, err)
	}
	return res, nil
}

func iCallWithVideoPathAndSpeed(method, videoPath string, speed float64) error {
	bc := getBridgeContext()
	res, err := bc.invoke(method, map[string]any{"videoPath": videoPath, "speed": speed})
	bc.lastReply = res
	return err
}

func iCallWithOnlySpeed(method string, speed float64) error {
	bc := getBridgeContext()
	res, err := bc.invoke(method, map[string]any{"speed": speed})
	bc.lastReply = res
	return err
}

func iCallWithOnlyVideoPath(method, videoPath string) error {
	bc := getBridgeContext()
	res, err := bc.invoke(method, map[string]any{"videoPath": videoPath})
	bc.lastReply = res
	return err
}

func iCallCancelOperationWithNoArguments() error {
	bc := getBridgeContext()
	res, err := bc.invoke(command.MethodCancelOperation, nil)
	bc.cancelReply = res
	return err
}

func iCancelOperation(opID string) error {
	bc := getBridgeContext()
	res, err := bc.invoke(command.MethodCancelOperation, map[string]any{"operationId": opID})
	bc.cancelReply = res
	return err
}

func iStartSpeedAdjustments(n int) error {
	bc := getBridgeContext()
	for i := 0; i < n; i++ {
		reply := bridge.NewReplyChannel()
		bc.dispatcher.Dispatch(bridge.NewCall(command.MethodAdjustVideoSpeed, map[string]any{
			"videoPath": fmt.Sprintf("/tmp/in_%d.mp4", i),
			"speed":     2.0,
		}), reply)
		bc.started = append(bc.started, reply)
	}
	return nil
}

func allOperationsAreRunning(n int) error {
	bc := getBridgeContext()
	timeout := time.After(replyTimeout)
	for i := 0; i < n; i++ {
		select {
		case <-bc.utility.started:
		case <-timeout:
			return fmt.Errorf("only %d of %d operations started", i, n)
		}
	}
	if got := bc.ops.Len(); got != n {
		return fmt.Errorf("expected %d registered operations, got %d", n, got)
	}
	return nil
}

func iCancelTheFirstRunningOperation() error {
	bc := getBridgeContext()
	running := bc.ops.List()
	if len(running) == 0 {
		return fmt.Errorf("no operations are running")
	}
	res, err := bc.invoke(command.MethodCancelOperation, map[string]any{"operationId": running[0].ID})
	bc.cancelReply = res
	if err != nil {
		return err
	}
	if res.Value != true {
		return fmt.Errorf("expected cancel of %s to return true, got %v", running[0].ID, res.Value)
	}
	return nil
}

func theCallSucceedsWith(expected string) error {
	bc := getBridgeContext()
	if bc.lastReply.Err != nil {
		return fmt.Errorf("expected success, got error %s", bc.lastReply.Err)
	}
	if bc.lastReply.Value != expected {
		return fmt.Errorf("expected result %q, got %v", expected, bc.lastReply.Value)
	}
	return nil
}

func theCallFailsWithCodeAndMessage(code, message string) error {
	bc := getBridgeContext()
	if bc.lastReply.Err == nil {
		return fmt.Errorf("expected error %s, got success %v", code, bc.lastReply.Value)
	}
	if bc.lastReply.Err.Code != code {
		return fmt.Errorf("expected code %q, got %q", code, bc.lastReply.Err.Code)
	}
	if bc.lastReply.Err.Message != message {
		return fmt.Errorf("expected message %q, got %q", message, bc.lastReply.Err.Message)
	}
	return nil
}

func theUtilityWasAskedToAdjust(videoPath string, speed float64) error {
	bc := getBridgeContext()
	calls := bc.utility.recordedCalls()
	if len(calls) != 1 {
		return fmt.Errorf("expected 1 utility call, got %d", len(calls))
	}
	if calls[0].videoPath != videoPath || calls[0].speed != speed {
		return fmt.Errorf("expected (%q, %v), got (%q, %v)", videoPath, speed, calls[0].videoPath, calls[0].speed)
	}
	return nil
}

func theUtilityWasNotCalled() error {
	bc := getBridgeContext()
	if calls := bc.utility.recordedCalls(); len(calls) != 0 {
		return fmt.Errorf("expected no utility calls, got %d", len(calls))
	}
	return nil
}

func noOperationsAreRunning() error {
	return operationsAreStillRunning(0)
}

func operationsAreStillRunning(n int) error {
	bc := getBridgeContext()
	if got := bc.ops.Len(); got != n {
		return fmt.Errorf("expected %d running operations, got %d", n, got)
	}
	return nil
}

func theCancelCallReturns(expected string) error {
	bc := getBridgeContext()
	if bc.cancelReply.Err != nil {
		return fmt.Errorf("cancel failed: %s", bc.cancelReply.Err)
	}
	want := expected == "true"
	if bc.cancelReply.Value != want {
		return fmt.Errorf("expected cancel to return %v, got %v", want, bc.cancelReply.Value)
	}
	return nil
}

func everyStartedCallFailsWithCode(code string) error {
	bc := getBridgeContext()
	for i, reply := range bc.started {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		res, err := reply.Wait(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("call %d: no reply: %w", i, err)
		}
		if res.Err == nil {
			return fmt.Errorf("call %d: expected %s, got success %v", i, code, res.Value)
		}
		if res.Err.Code != code {
			return fmt.Errorf("call %d: expected code %q, got %q", i, code, res.Err.Code)
		}
		if res.Err.Message != context.Canceled.Error() {
			return fmt.Errorf("call %d: expected message %q, got %q", i, context.Canceled.Error(), res.Err.Message)
		}
	}
	return nil
}
