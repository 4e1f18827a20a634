package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rhobs/mcp-exec/pkg/command"
	"github.com/rhobs/mcp-exec/pkg/executor"
	"github.com/rhobs/mcp-exec/pkg/resultutil"
	"github.com/rhobs/mcp-exec/pkg/spec"
	"github.com/rhobs/mcp-exec/pkg/tooldef"
)

// ErrUnknownTool is the error behind "Unknown tool" results.
var ErrUnknownTool = errors.New("unknown tool")

type dispatchEntry struct {
	tool      *spec.ToolDefinition
	params    []string
	validator *tooldef.Validator
}

// Dispatcher routes tool calls to the wrapped command. It holds no mutable
// state and is safe for concurrent use.
type Dispatcher struct {
	program *spec.Program
	tools   map[string]dispatchEntry
	runner  executor.Runner
	timeout time.Duration
	metrics *Metrics
}

// NewDispatcher builds the tool lookup table of program. A nil metrics records nothing.
func NewDispatcher(program *spec.Program, runner executor.Runner, timeout time.Duration, metrics *Metrics) (*Dispatcher, error) {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if timeout <= 0 {
		timeout = executor.DefaultTimeout
	}

	tools := make(map[string]dispatchEntry, len(program.Tools))
	for i := range program.Tools {
		tool := &program.Tools[i]
		def := tooldef.FromDefinition(program, tool)
		validator, err := def.NewValidator()
		if err != nil {
			return nil, err
		}

		params := make([]string, 0, len(def.Params))
		for _, param := range def.Params {
			params = append(params, param.Name)
		}
		tools[tool.Name] = dispatchEntry{tool: tool, params: params, validator: validator}
	}

	return &Dispatcher{
		program: program,
		tools:   tools,
		runner:  runner,
		timeout: timeout,
		metrics: metrics,
	}, nil
}

// Handle is the MCP tool handler for every tool of the program.
func (d *Dispatcher) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return d.Call(ctx, req.Params.Name, req.GetArguments()).ToMCPResult()
}

// Call runs the named tool with the decoded call arguments. Every failure is
// reported through the returned Result.
func (d *Dispatcher) Call(ctx context.Context, name string, rawArgs map[string]any) (result *resultutil.Result) {
	start := time.Now()
	label := name
	outcome := OutcomeError

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Tool call panicked", "tool", name, "panic", r)
			result = resultutil.NewErrorResult(fmt.Errorf("internal error: %v", r))
			outcome = OutcomeError
		}
		d.metrics.observe(label, outcome, time.Since(start))
	}()

	entry, ok := d.tools[name]
	if !ok {
		label, outcome = unknownToolLabel, OutcomeUnknownTool
		slog.Warn("Unknown tool requested", "tool", name)
		return resultutil.NewFailureResult("Unknown tool: "+name, fmt.Errorf("%w: %s", ErrUnknownTool, name))
	}

	argv, err := d.buildArgv(entry, rawArgs)
	if err != nil {
		outcome = OutcomeInvalidArguments
		slog.Warn("Rejected tool arguments", "tool", name, "err", err)
		return resultutil.NewErrorResult(err)
	}

	slog.Debug("Executing tool", "tool", name, "argv", argv)

	out, err := d.runner.Run(ctx, argv, d.timeout)
	switch {
	case errors.Is(err, executor.ErrTimedOut):
		outcome = OutcomeTimeout
		slog.Warn("Tool call timed out", "tool", name, "timeout", d.timeout)
		return resultutil.NewFailureResult("Command timed out", err)
	case err != nil:
		slog.Warn("Tool call failed", "tool", name, "err", err)
		return resultutil.NewErrorResult(err)
	}

	outcome = OutcomeOK
	if out.ExitCode != 0 {
		outcome = OutcomeExitNonZero
	}
	slog.Debug("Tool call finished", "tool", name, "exit_code", out.ExitCode, "duration", time.Since(start))
	return resultutil.NewTextResult(out.Text())
}

func (d *Dispatcher) buildArgv(entry dispatchEntry, rawArgs map[string]any) ([]string, error) {
	if err := entry.validator.Validate(rawArgs); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	// undeclared arguments are accepted by the schema but never rendered
	declared := make(map[string]any, len(entry.params))
	for _, name := range entry.params {
		if val, ok := rawArgs[name]; ok {
			declared[name] = val
		}
	}

	args, err := spec.ArgumentsFromMap(declared)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	return command.Build(d.program, entry.tool, args)
}
