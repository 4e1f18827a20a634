package tooldef

import (
	"strings"

	"github.com/rhobs/mcp-exec/pkg/spec"
)

// FromDefinition builds the ToolDef of a compiled tool.
//
// Parameters are listed positional arguments first, then required flags, then
// optional flags. When two declarations derive the same parameter name the later
// one replaces the earlier, and the parameter stays required if either was.
func FromDefinition(program *spec.Program, tool *spec.ToolDefinition) ToolDef {
	var params []ParamDef
	index := make(map[string]int)

	add := func(p ParamDef) {
		if i, ok := index[p.Name]; ok {
			p.Required = p.Required || params[i].Required
			params[i] = p
			return
		}
		index[p.Name] = len(params)
		params = append(params, p)
	}

	for _, arg := range tool.Positional {
		add(ParamDef{
			Name:        arg.Name,
			Type:        ParamTypeString,
			Description: arg.Description,
			Required:    true,
		})
	}
	for _, flag := range tool.RequiredFlags {
		add(flagParam(flag, true))
	}
	for _, flag := range tool.OptionalFlags {
		add(flagParam(flag, false))
	}

	title := program.BaseCommand
	if tool.Subcommand != "" {
		title = strings.Join([]string{program.BaseCommand, tool.Subcommand}, " ")
	}

	// Nothing is known about the wrapped command, so it gets the most cautious hints.
	return ToolDef{
		Name:        tool.Name,
		Description: tool.Description,
		Title:       title,
		Params:      params,
		ReadOnly:    false,
		Destructive: true,
		Idempotent:  false,
		OpenWorld:   true,
	}
}

func flagParam(flag spec.FlagDecl, required bool) ParamDef {
	paramType := ParamTypeBoolean
	if flag.TakesValue {
		paramType = ParamTypeString
	}
	return ParamDef{
		Name:        flag.ParamName,
		Type:        paramType,
		Description: flag.Description,
		Required:    required,
	}
}

// FromProgram builds the ToolDefs of every tool in declaration order.
func FromProgram(program *spec.Program) []ToolDef {
	defs := make([]ToolDef, 0, len(program.Tools))
	for i := range program.Tools {
		defs = append(defs, FromDefinition(program, &program.Tools[i]))
	}
	return defs
}
