package tooldef

// ToolDef defines a tool that can be converted to different formats (MCP, JSON Schema)
type ToolDef struct {
	Name        string
	Description string
	Title       string
	Params      []ParamDef
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
	OpenWorld   bool
}

// ParamDef defines a tool parameter
type ParamDef struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// ParamType represents the type of a parameter
type ParamType string

const (
	ParamTypeString  ParamType = "string"
	ParamTypeBoolean ParamType = "boolean"
)

// RequiredNames returns the names of the required parameters in declaration order.
func (d ToolDef) RequiredNames() []string {
	var names []string
	for _, param := range d.Params {
		if param.Required {
			names = append(names, param.Name)
		}
	}
	return names
}
