// Package storage persists conversation history between agent sessions.
//
// Information Hiding:
// - Backend choice (SQLite, in-memory) hidden behind ConversationStorage
// - Schema and serialization details owned by each implementation

package storage

import (
	"context"

	"github.com/webwright/webwright/llm"
)

// ConversationStorage stores per-session message history, including the
// tool calls and tool results a resumed session needs to replay.
type ConversationStorage interface {
	// Save replaces the stored history for a session.
	Save(ctx context.Context, sessionID string, history []llm.ChatMessage) error

	// Load returns the stored history for a session. A missing session
	// yields an empty slice (never nil); errors are storage failures only.
	Load(ctx context.Context, sessionID string) ([]llm.ChatMessage, error)

	// Delete removes a session and its history.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions returns all known session IDs.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists reports whether a session has stored history.
	Exists(ctx context.Context, sessionID string) (bool, error)
}
