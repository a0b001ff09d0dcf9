package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maauso/videoeditor-bridge/internal/bootstrap"
	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/config"
	"github.com/maauso/videoeditor-bridge/internal/telemetry"
)

var (
	callArgs    []string
	callJSON    string
	callTimeout time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call <method>",
	Short: "Invoke a single method and print its result",
	Long: `Invoke one bridge method in-process and print the result as JSON.

Arguments are given as key=value pairs. Values that parse as JSON (numbers,
booleans, arrays) keep their JSON type; anything else is passed as a string.
A whole argument object can also be given with --json; --arg pairs override
its keys. Interrupting the command cancels the running operation.

Examples:
  videoeditor call adjustVideoSpeed --arg videoPath=/videos/in.mp4 --arg speed=1.5
  videoeditor call mergeVideos --json '{"videoPaths":["/videos/a.mp4","/videos/b.mp4"]}'`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the available methods",
	Args:  cobra.NoArgs,
	RunE:  runMethods,
}

func init() {
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(methodsCmd)
	callCmd.Flags().StringArrayVar(&callArgs, "arg", nil, "Method argument as key=value (repeatable)")
	callCmd.Flags().StringVar(&callJSON, "json", "", "Method arguments as a JSON object")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 0, "Cancel the operation after this long (0 waits forever)")
}

// CallDispatcher routes a call to its command.
type CallDispatcher interface {
	Dispatch(call *bridge.Call, result bridge.Result)
}

// CallError is returned when a method replies with an error.
type CallError struct {
	Method string
	Err    *bridge.Error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Method, e.Err.Error())
}

func runCall(cmd *cobra.Command, args []string) error {
	method := args[0]

	callArguments, err := parseArguments(callJSON, callArgs)
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only the result.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.NewLoggerTo(os.Stderr)
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Setup(cmd.Context(), serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, callTimeout)
		defer cancel()
	}

	return RunCallWithDependencies(ctx, deps.Dispatcher, method, callArguments, os.Stdout)
}

// RunCallWithDependencies dispatches one call and writes its result to out
// as indented JSON. If ctx ends first the context error is returned; the
// caller is responsible for cancelling the operation.
func RunCallWithDependencies(ctx context.Context, dispatcher CallDispatcher, method string, args map[string]any, out io.Writer) error {
	reply := bridge.NewReplyChannel()
	dispatcher.Dispatch(bridge.NewCall(method, args), reply)

	res, err := reply.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", method, err)
	}
	if res.Err != nil {
		return &CallError{Method: method, Err: res.Err}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Value); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func runMethods(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	deps, err := bootstrap.NewDependencies(cfg, cfg.NewLoggerTo(io.Discard))
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}
	defer deps.Close()

	for _, m := range deps.Dispatcher.Methods() {
		fmt.Fprintln(cmd.OutOrStdout(), m)
	}
	return nil
}

// parseArguments merges a JSON object with key=value pairs.
func parseArguments(rawJSON string, pairs []string) (map[string]any, error) {
	args := make(map[string]any)

	if strings.TrimSpace(rawJSON) != "" {
		dec := json.NewDecoder(strings.NewReader(rawJSON))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			return nil, fmt.Errorf("parse --json: %w", err)
		}
		if dec.More() {
			return nil, errors.New("parse --json: unexpected data after object")
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --arg %q: expected key=value", pair)
		}
		args[strings.TrimSpace(key)] = parseValue(value)
	}

	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}

// parseValue decodes v as JSON when it is a complete JSON value, otherwise
// returns it unchanged as a string.
func parseValue(v string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(v)))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil || dec.More() {
		return v
	}
	return out
}
