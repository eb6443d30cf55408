// Package tools provides the agent's tool system: a closed set of
// capability-tagged operations registered at startup.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Tool parameters and schemas hidden in implementations
// - Registry implementation details hidden from consumers
// - Error handling internalized per tool: faults come back as data
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// ToolResult represents the result of a tool execution.
// Success is determined by whether Error is nil. Failures carry a Kind
// so callers can classify the fault without parsing messages.
type ToolResult struct {
	Output string `json:"output"`
	Error  error  `json:"-"` // Excluded from JSON, use MarshalJSON for custom serialization
}

// MarshalJSON implements custom JSON marshaling for ToolResult.
func (t ToolResult) MarshalJSON() ([]byte, error) {
	if t.Error != nil {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Output  string `json:"output"`
			Error   string `json:"error"`
			Kind    Kind   `json:"kind"`
		}{
			Success: false,
			Output:  t.Output,
			Error:   t.Error.Error(),
			Kind:    KindOf(t.Error),
		})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
	}{
		Success: true,
		Output:  t.Output,
	})
}

// Success returns true if the tool execution succeeded.
func (t ToolResult) Success() bool {
	return t.Error == nil
}

// Kind returns the failure classification, or empty string on success.
func (t ToolResult) Kind() Kind {
	if t.Error == nil {
		return ""
	}
	return KindOf(t.Error)
}

// SuccessResult creates a successful tool result.
func SuccessResult(output string) ToolResult {
	return ToolResult{Output: output}
}

// SuccessResultf creates a successful tool result with a formatted message.
func SuccessResultf(format string, args ...interface{}) ToolResult {
	return ToolResult{Output: fmt.Sprintf(format, args...)}
}

// FailureResult creates a failed tool result from an existing error.
func FailureResult(err error) ToolResult {
	return ToolResult{Error: err}
}

// FailureResultf creates a failed tool result with a classified,
// formatted error message.
func FailureResultf(kind Kind, format string, args ...interface{}) ToolResult {
	return ToolResult{Error: Errorf(kind, format, args...)}
}

// Tool is the interface that all tools must implement.
//
// Execute must convert every fault into the returned ToolResult; the
// second return value is reserved for infrastructure failures that the
// tool itself cannot classify, and is nil in every built-in tool.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameters).
	Metadata() ToolMetadata

	// Execute runs the tool with given arguments.
	Execute(ctx context.Context, args json.RawMessage) (ToolResult, error)

	// Validate validates arguments before execution (optional).
	Validate(args json.RawMessage) error
}

// BaseTool provides a default implementation for Validate.
type BaseTool struct{}

// Validate provides a default no-op validation.
func (BaseTool) Validate(args json.RawMessage) error {
	return nil
}
