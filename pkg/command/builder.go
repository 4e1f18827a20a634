// Package command renders a tool call into the argument vector of the wrapped executable.
package command

import (
	"errors"
	"fmt"

	"github.com/rhobs/mcp-exec/pkg/spec"
)

// ErrMissingArgument is returned when a positional argument or required flag has no value.
var ErrMissingArgument = errors.New("missing required argument")

// Build returns the argv for calling tool with args:
// base command, subcommand, positionals, required flags, optional flags, extra args.
//
// Optional flags are rendered only when their argument is present and truthy.
// Whether a flag is followed by a value is decided by the declaration, never by
// the runtime type of the argument.
func Build(program *spec.Program, tool *spec.ToolDefinition, args spec.Arguments) ([]string, error) {
	argv := make([]string, 0, 2+len(tool.Positional)+2*(len(tool.RequiredFlags)+len(tool.OptionalFlags))+len(program.ExtraArgs))
	argv = append(argv, program.BaseCommand)

	if tool.Subcommand != "" {
		argv = append(argv, tool.Subcommand)
	}

	for _, arg := range tool.Positional {
		val, ok := args[arg.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingArgument, arg.Name)
		}
		argv = append(argv, val.String())
	}

	for _, flag := range tool.RequiredFlags {
		val, ok := args[flag.ParamName]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingArgument, flag.ParamName)
		}
		argv = appendFlag(argv, flag, val)
	}

	for _, flag := range tool.OptionalFlags {
		val, ok := args[flag.ParamName]
		if !ok || !val.Truthy() {
			continue
		}
		argv = appendFlag(argv, flag, val)
	}

	return append(argv, program.ExtraArgs...), nil
}

func appendFlag(argv []string, flag spec.FlagDecl, val spec.Value) []string {
	argv = append(argv, flag.Flag)
	if flag.TakesValue {
		argv = append(argv, val.String())
	}
	return argv
}

// Template renders the argv shape of a tool with placeholders, e.g.
// "convert <input> [-resize <resize>] --quiet".
func Template(program *spec.Program, tool *spec.ToolDefinition) []string {
	parts := []string{program.BaseCommand}
	if tool.Subcommand != "" {
		parts = append(parts, tool.Subcommand)
	}
	for _, arg := range tool.Positional {
		parts = append(parts, "<"+arg.Name+">")
	}
	for _, flag := range tool.RequiredFlags {
		parts = append(parts, flagTemplate(flag))
	}
	for _, flag := range tool.OptionalFlags {
		parts = append(parts, "["+flagTemplate(flag)+"]")
	}
	return append(parts, program.ExtraArgs...)
}

func flagTemplate(flag spec.FlagDecl) string {
	if flag.TakesValue {
		return flag.Flag + " <" + flag.ParamName + ">"
	}
	return flag.Flag
}
