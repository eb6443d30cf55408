// Package session defines the per-conversation state the agent threads
// through each turn, plus the partial-update record used to merge changes.
//
// Information Hiding:
// - Merge discipline (append vs. replace) encapsulated in Apply
// - Callers never mutate State fields between phases directly
package session

import (
	"time"

	"github.com/webwright/webwright/llm"
)

// UserContext identifies who the turn runs for and where. It is fixed for
// the duration of a turn.
type UserContext struct {
	UserID           string
	SessionID        string
	DisplayName      string
	WorkingDirectory string
	Permissions      []string
}

// ToolRecord summarizes one completed tool dispatch.
type ToolRecord struct {
	ToolName   string    `json:"tool_name"`
	ArgsDigest string    `json:"args_digest"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// ErrorInfo captures a turn-terminal failure.
type ErrorInfo struct {
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the full conversation state for one session.
type State struct {
	Messages       []llm.ChatMessage
	IterationCount int
	ToolResults    []ToolRecord
	ErrorInfo      *ErrorInfo
	User           UserContext
}

// New creates an empty state for the given user context.
func New(user UserContext) *State {
	return &State{User: user}
}

// Update is a partial state change produced by one phase of the turn loop.
// Messages and ToolResults accumulate; ErrorInfo and IterationCount, when
// set, replace the prior value wholesale.
type Update struct {
	Messages       []llm.ChatMessage
	ToolResults    []ToolRecord
	ErrorInfo      *ErrorInfo
	IterationCount *int
}

// Apply merges an update into the state. Message and tool-result slices are
// appended in order; ErrorInfo and IterationCount overwrite when present.
func (s *State) Apply(u Update) {
	s.Messages = append(s.Messages, u.Messages...)
	s.ToolResults = append(s.ToolResults, u.ToolResults...)
	if u.ErrorInfo != nil {
		s.ErrorInfo = u.ErrorInfo
	}
	if u.IterationCount != nil {
		s.IterationCount = *u.IterationCount
	}
}

// ResetTurn clears the fields scoped to a single turn. Messages and tool
// records persist for the life of the session; the iteration count and any
// terminal error belong to the turn that produced them.
func (s *State) ResetTurn() {
	s.IterationCount = 0
	s.ErrorInfo = nil
}

// LastAssistantContent returns the content of the most recent assistant
// message, or empty string if none exists.
func (s *State) LastAssistantContent() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == "assistant" && s.Messages[i].Content != "" {
			return s.Messages[i].Content
		}
	}
	return ""
}
