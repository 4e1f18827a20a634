package spec

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Declaration tokens recognized in the startup argument stream.
const (
	TokenTool         = "--tool"
	TokenPosArg       = "--pos-arg"
	TokenFlag         = "--flag"
	TokenRequiredFlag = "--required-flag"
	TokenExtraArgs    = "--extra-args"
)

var (
	ErrMissingCommand        = errors.New("missing command")
	ErrMissingDescription    = errors.New("missing description")
	ErrDeclarationBeforeTool = errors.New("declaration before any --tool")
	ErrNoTools               = errors.New("no tools defined")
	ErrEmptyToolName         = errors.New("empty tool name")
	ErrDuplicateTool         = errors.New("duplicate tool name")
)

// Compile turns the tokens following the base command into a Program.
//
// When the stream contains a --tool token every tool becomes a subcommand of
// baseCommand, otherwise the first token is the description of a single tool
// named after baseCommand. Unrecognized tokens are skipped, as are declarations
// that have no value token after them.
func Compile(baseCommand string, tokens []string) (*Program, error) {
	if baseCommand == "" {
		return nil, ErrMissingCommand
	}

	extraArgs, rest := extractExtraArgs(tokens)

	var (
		tools []ToolDefinition
		err   error
	)
	if slices.Contains(rest, TokenTool) {
		tools, err = compileMultiTool(rest)
	} else {
		tools, err = compileSingleTool(baseCommand, rest)
	}
	if err != nil {
		return nil, err
	}

	return &Program{
		BaseCommand: baseCommand,
		Tools:       tools,
		ExtraArgs:   extraArgs,
	}, nil
}

// extractExtraArgs removes every "--extra-args VALUE" pair from tokens and
// returns the whitespace-split values in encounter order.
func extractExtraArgs(tokens []string) (extraArgs, rest []string) {
	rest = make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if tokens[i] == TokenExtraArgs && i+1 < len(tokens) {
			extraArgs = append(extraArgs, strings.Fields(tokens[i+1])...)
			i++
			continue
		}
		rest = append(rest, tokens[i])
	}
	return extraArgs, rest
}

func compileSingleTool(baseCommand string, tokens []string) ([]ToolDefinition, error) {
	if len(tokens) == 0 {
		return nil, ErrMissingDescription
	}

	tool := ToolDefinition{
		Name:        baseCommand,
		Description: tokens[0],
	}
	err := scanDeclarations(tokens[1:], func(kind, value string) error {
		tool.declare(kind, value)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return []ToolDefinition{tool}, nil
}

func compileMultiTool(tokens []string) ([]ToolDefinition, error) {
	var (
		tools   []ToolDefinition
		current *ToolDefinition
	)
	seen := make(map[string]struct{})

	finalize := func() error {
		if current == nil {
			return nil
		}
		if _, dup := seen[current.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTool, current.Name)
		}
		seen[current.Name] = struct{}{}
		tools = append(tools, *current)
		current = nil
		return nil
	}

	err := scanDeclarations(tokens, func(kind, value string) error {
		if kind == TokenTool {
			if err := finalize(); err != nil {
				return err
			}
			name, description := ParseSpaced(value)
			if name == "" {
				return ErrEmptyToolName
			}
			current = &ToolDefinition{
				Name:        name,
				Subcommand:  name,
				Description: description,
			}
			return nil
		}

		if current == nil {
			return fmt.Errorf("%w: %s", ErrDeclarationBeforeTool, kind)
		}
		current.declare(kind, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := finalize(); err != nil {
		return nil, err
	}

	if len(tools) == 0 {
		return nil, ErrNoTools
	}
	return tools, nil
}

// scanDeclarations walks tokens left to right and calls fn for every
// declaration token that is followed by a value.
func scanDeclarations(tokens []string, fn func(kind, value string) error) error {
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case TokenTool, TokenPosArg, TokenFlag, TokenRequiredFlag:
			if i+1 >= len(tokens) {
				// trailing declaration without a value is dropped
				continue
			}
			if err := fn(tokens[i], tokens[i+1]); err != nil {
				return err
			}
			i++
		default:
			// unknown tokens are ignored so newer invocations keep working
		}
	}
	return nil
}

func (t *ToolDefinition) declare(kind, value string) {
	switch kind {
	case TokenPosArg:
		name, description := ParseSpaced(value)
		t.Positional = append(t.Positional, ArgumentDecl{Name: name, Description: description})
	case TokenFlag:
		t.OptionalFlags = append(t.OptionalFlags, ParseFlag(value))
	case TokenRequiredFlag:
		t.RequiredFlags = append(t.RequiredFlags, ParseFlag(value))
	}
}
