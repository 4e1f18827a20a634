package tooldef

import (
	"github.com/mark3labs/mcp-go/mcp"
	"k8s.io/utils/ptr"
)

// ToMCPTool converts a ToolDef to an mcp.Tool
func (d ToolDef) ToMCPTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           d.Title,
			ReadOnlyHint:    ptr.To(d.ReadOnly),
			DestructiveHint: ptr.To(d.Destructive),
			IdempotentHint:  ptr.To(d.Idempotent),
			OpenWorldHint:   ptr.To(d.OpenWorld),
		}),
	}

	for _, param := range d.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(param.Description)}
		if param.Required {
			propOpts = append(propOpts, mcp.Required())
		}

		switch param.Type {
		case ParamTypeString:
			opts = append(opts, mcp.WithString(param.Name, propOpts...))
		case ParamTypeBoolean:
			opts = append(opts, mcp.WithBoolean(param.Name, propOpts...))
		}
	}

	tool := mcp.NewTool(d.Name, opts...)

	// Workaround for tools with no parameters
	// See https://github.com/containers/kubernetes-mcp-server/pull/341/files
	if len(d.Params) == 0 {
		tool.InputSchema = mcp.ToolInputSchema{}
		tool.RawInputSchema = []byte(`{"type":"object","properties":{}}`)
	}

	return tool
}
