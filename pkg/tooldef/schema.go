package tooldef

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// JSONSchema returns the input schema of the tool. Undeclared properties are allowed.
func (d ToolDef) JSONSchema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(d.Params))
	for _, param := range d.Params {
		properties[param.Name] = &jsonschema.Schema{
			Type:        string(param.Type),
			Description: param.Description,
		}
	}

	inputSchema := &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
	}

	if required := d.RequiredNames(); len(required) > 0 {
		inputSchema.Required = required
	}

	return inputSchema
}

// Validator checks call arguments against the input schema of a tool.
type Validator struct {
	resolved *jsonschema.Resolved
}

// NewValidator resolves the input schema of d.
func (d ToolDef) NewValidator() (*Validator, error) {
	resolved, err := d.JSONSchema().Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input schema of tool %s: %w", d.Name, err)
	}
	return &Validator{resolved: resolved}, nil
}

// Validate returns an error describing the first schema violation in args.
func (v *Validator) Validate(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	return v.resolved.Validate(args)
}
