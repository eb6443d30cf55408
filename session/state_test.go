package session

import (
	"testing"
	"time"

	"github.com/webwright/webwright/llm"
)

func TestApplyAppendsMessages(t *testing.T) {
	s := New(UserContext{UserID: "u1", SessionID: "s1"})
	s.Apply(Update{Messages: []llm.ChatMessage{llm.UserMessage("hi")}})
	s.Apply(Update{Messages: []llm.ChatMessage{llm.AssistantMessage("hello")}})

	if len(s.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(s.Messages))
	}
	if s.Messages[0].Role != "user" || s.Messages[1].Role != "assistant" {
		t.Errorf("message order not preserved: %+v", s.Messages)
	}
}

func TestApplyAppendsToolResults(t *testing.T) {
	s := New(UserContext{})
	s.Apply(Update{ToolResults: []ToolRecord{{ToolName: "read_file", Success: true}}})
	s.Apply(Update{ToolResults: []ToolRecord{{ToolName: "write_file", Success: false}}})

	if len(s.ToolResults) != 2 {
		t.Fatalf("expected 2 tool records, got %d", len(s.ToolResults))
	}
}

func TestApplyReplacesErrorInfo(t *testing.T) {
	s := New(UserContext{})
	first := &ErrorInfo{Message: "first", Kind: "agent_error", Timestamp: time.Now()}
	second := &ErrorInfo{Message: "second", Kind: "agent_error", Timestamp: time.Now()}

	s.Apply(Update{ErrorInfo: first})
	s.Apply(Update{ErrorInfo: second})

	if s.ErrorInfo.Message != "second" {
		t.Errorf("ErrorInfo should replace wholesale, got %q", s.ErrorInfo.Message)
	}

	// An update without ErrorInfo leaves the existing value untouched.
	s.Apply(Update{Messages: []llm.ChatMessage{llm.UserMessage("x")}})
	if s.ErrorInfo == nil || s.ErrorInfo.Message != "second" {
		t.Error("ErrorInfo cleared by unrelated update")
	}
}

func TestApplyReplacesIterationCount(t *testing.T) {
	s := New(UserContext{})
	three := 3
	s.Apply(Update{IterationCount: &three})
	if s.IterationCount != 3 {
		t.Fatalf("expected iteration count 3, got %d", s.IterationCount)
	}

	five := 5
	s.Apply(Update{IterationCount: &five})
	if s.IterationCount != 5 {
		t.Errorf("iteration count should replace, got %d", s.IterationCount)
	}
}

func TestResetTurnClearsTurnScopedFields(t *testing.T) {
	s := New(UserContext{SessionID: "s1"})
	four := 4
	s.Apply(Update{
		Messages:       []llm.ChatMessage{llm.UserMessage("hi"), llm.AssistantMessage("hello")},
		ToolResults:    []ToolRecord{{ToolName: "read_file", Success: true}},
		ErrorInfo:      &ErrorInfo{Message: "boom", Kind: "agent_error", Timestamp: time.Now()},
		IterationCount: &four,
	})

	s.ResetTurn()

	if s.IterationCount != 0 {
		t.Errorf("IterationCount = %d, want 0", s.IterationCount)
	}
	if s.ErrorInfo != nil {
		t.Errorf("ErrorInfo = %+v, want nil", s.ErrorInfo)
	}
	// Conversation history and tool records survive across turns.
	if len(s.Messages) != 2 || len(s.ToolResults) != 1 {
		t.Errorf("messages = %d, tool records = %d; history must persist",
			len(s.Messages), len(s.ToolResults))
	}
}

func TestLastAssistantContent(t *testing.T) {
	s := New(UserContext{})
	if got := s.LastAssistantContent(); got != "" {
		t.Errorf("empty state should have no assistant content, got %q", got)
	}

	s.Apply(Update{Messages: []llm.ChatMessage{
		llm.UserMessage("q1"),
		llm.AssistantMessage("a1"),
		llm.UserMessage("q2"),
		llm.AssistantMessage("a2"),
	}})
	if got := s.LastAssistantContent(); got != "a2" {
		t.Errorf("expected most recent assistant content, got %q", got)
	}
}
