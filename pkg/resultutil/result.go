package resultutil

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Result represents the textual outcome of a single tool call.
type Result struct {
	// Text is what the caller sees.
	Text string
	// Error holds the failure behind Text (nil for successful results)
	Error error
}

// NewTextResult creates a successful result.
func NewTextResult(text string) *Result {
	return &Result{Text: text}
}

// NewErrorResult creates an error result whose text is "Error: " followed by the error message.
func NewErrorResult(err error) *Result {
	return &Result{
		Text:  "Error: " + err.Error(),
		Error: err,
	}
}

// NewFailureResult creates an error result with a caller-facing text of its own.
func NewFailureResult(text string, err error) *Result {
	return &Result{
		Text:  text,
		Error: err,
	}
}

// ToMCPResult converts the Result to an MCP CallToolResult.
// Returns (result, nil) following the MCP pattern where errors
// are encoded in the result, not the error return value.
func (r *Result) ToMCPResult() (*mcp.CallToolResult, error) {
	if r.Error != nil {
		//nolint:nilerr // MCP pattern encodes errors in result, not error return
		return mcp.NewToolResultError(r.Text), nil
	}
	return mcp.NewToolResultText(r.Text), nil
}

// IsError returns true if the result represents an error.
func (r *Result) IsError() bool {
	return r.Error != nil
}
