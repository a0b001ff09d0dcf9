// Package command implements the bridge methods. Each command checks its
// arguments synchronously and hands the real work to a Launcher, which runs
// it as a cancellable operation.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/operation"
)

const tracerName = "github.com/maauso/videoeditor-bridge/internal/command"

// Task is the work of one operation. It must stop promptly once ctx is done.
type Task func(ctx context.Context) (any, error)

// Launcher runs tasks as operations registered with a Manager.
type Launcher struct {
	ops    *operation.Manager
	tracer trace.Tracer
	logger *slog.Logger
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithTracerProvider sets the provider used to create operation spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) LauncherOption {
	return func(l *Launcher) {
		l.tracer = tp.Tracer(tracerName)
	}
}

// NewLauncher creates a Launcher registering operations with ops.
func NewLauncher(ops *operation.Manager, logger *slog.Logger, opts ...LauncherOption) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Launcher{
		ops:    ops,
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch registers a new operation for method and runs task in its own
// goroutine. The answer goes to result: the task's value on success, or
// errorCode with the error message on failure, cancellation or panic.
// The operation is deregistered before the answer is delivered.
//
// Results implementing bridge.OperationObserver are told the operation ID
// as soon as it is registered.
//
// It returns the operation ID, or "" if the operation could not be
// registered (result has then already been answered).
func (l *Launcher) Launch(method, errorCode string, result bridge.Result, task Task) string {
	opID := l.ops.GenerateID()
	ctx, cancel := context.WithCancel(context.Background())

	if err := l.ops.Register(opID, method, cancel); err != nil {
		cancel()
		l.logger.Error("failed to register operation",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		result.Error(errorCode, err.Error(), nil)
		return ""
	}

	l.logger.Info("operation started",
		slog.String("operation_id", opID),
		slog.String("method", method),
	)
	if o, ok := result.(bridge.OperationObserver); ok {
		o.OperationStarted(opID)
	}

	go func() {
		start := time.Now()
		value, err := l.execute(ctx, opID, method, task)
		if err != nil {
			l.logger.Warn("operation failed",
				slog.String("operation_id", opID),
				slog.String("method", method),
				slog.Duration("duration", time.Since(start)),
				slog.String("error", err.Error()),
			)
			result.Error(errorCode, err.Error(), nil)
			return
		}
		l.logger.Info("operation completed",
			slog.String("operation_id", opID),
			slog.String("method", method),
			slog.Duration("duration", time.Since(start)),
		)
		result.Success(value)
	}()

	return opID
}

// execute runs task inside a span and always releases the operation.
func (l *Launcher) execute(ctx context.Context, opID, method string, task Task) (value any, err error) {
	defer func() {
		l.ops.Finish(opID, err)
	}()

	ctx, span := l.tracer.Start(ctx, "videoeditor."+method,
		trace.WithAttributes(
			attribute.String("videoeditor.operation_id", opID),
			attribute.String("videoeditor.method", method),
		),
	)
	defer span.End()

	value, err = l.run(ctx, opID, method, task)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return value, err
}

// run calls task, turning a panic into an error.
func (l *Launcher) run(ctx context.Context, opID, method string, task Task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("operation panicked",
				slog.String("operation_id", opID),
				slog.String("method", method),
				slog.Any("panic", r),
			)
			value, err = nil, fmt.Errorf("%s panicked: %v", method, r)
		}
	}()
	return task(ctx)
}
