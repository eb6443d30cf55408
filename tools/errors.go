// Tool fault taxonomy. Every tool failure is classified so the agent and
// its callers can distinguish recoverable tool faults from turn-terminal
// agent errors.

package tools

import (
	"errors"
	"fmt"
)

// Kind classifies a tool failure.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindNotAFile         Kind = "not_a_file"
	KindNotADirectory    Kind = "not_a_directory"
	KindAlreadyExists    Kind = "already_exists"
	KindPermissionDenied Kind = "permission_denied"
	KindDecodeError      Kind = "decode_error"
	KindTextNotFound     Kind = "text_not_found"
	KindSelectorNotFound Kind = "selector_not_found"
	KindBlocked          Kind = "blocked"
	KindTimedOut         Kind = "timed_out"
	KindInvalidArgs      Kind = "invalid_args"
	KindAgentError       Kind = "agent_error"
)

// ToolError is a classified tool failure. It always stays inside a
// ToolResult; only KindAgentError terminates the surrounding turn.
type ToolError struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return e.Message
}

// Errorf creates a classified tool error with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *ToolError {
	return &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from an error. Unclassified errors report
// KindAgentError since they escaped a tool's own handling.
func KindOf(err error) Kind {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindAgentError
}
