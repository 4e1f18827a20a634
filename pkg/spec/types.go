package spec

// ArgumentDecl declares a positional argument.
type ArgumentDecl struct {
	// Name is both the schema property key and the lookup key into the call arguments.
	Name        string
	Description string
}

// FlagDecl declares a flag rendered with an explicit flag token.
type FlagDecl struct {
	// Flag is the literal flag token, e.g. "-resize".
	Flag string
	// ParamName is Flag with its leading dashes removed.
	ParamName   string
	Description string
	// TakesValue is set when the declaration ended with '='.
	TakesValue bool
}

// ToolDefinition is one invocable operation of the wrapped command.
type ToolDefinition struct {
	Name string
	// Subcommand is empty in single-tool mode and equal to Name in multi-tool mode.
	Subcommand    string
	Description   string
	Positional    []ArgumentDecl
	OptionalFlags []FlagDecl
	RequiredFlags []FlagDecl
}

// Program is the result of compiling the startup tokens. It is never mutated after Compile returns.
type Program struct {
	BaseCommand string
	Tools       []ToolDefinition
	// ExtraArgs are appended to every invocation.
	ExtraArgs []string
}

// Tool returns the tool with the given name.
func (p *Program) Tool(name string) (*ToolDefinition, bool) {
	for i := range p.Tools {
		if p.Tools[i].Name == name {
			return &p.Tools[i], true
		}
	}
	return nil, false
}

// MultiTool reports whether the program was compiled in subcommand mode.
func (p *Program) MultiTool() bool {
	return len(p.Tools) > 0 && p.Tools[0].Subcommand != ""
}
