package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/webwright/webwright/llm"
)

func TestSqliteStorageSaveAndLoad(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	messages := []llm.ChatMessage{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
	}

	if err := storage.Save(ctx, "test-session", messages); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Errorf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "Hello" {
		t.Errorf("expected 'Hello', got '%s'", loaded[0].Content)
	}
	if loaded[1].Content != "Hi there" {
		t.Errorf("expected 'Hi there', got '%s'", loaded[1].Content)
	}
}

func TestSqliteStorageRoundTripsToolCalls(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	messages := []llm.ChatMessage{
		{Role: "user", Content: "create index.html"},
		{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{
				{ID: "call_1", Name: "write_file", Arguments: json.RawMessage(`{"path":"index.html"}`)},
			},
		},
		{Role: "tool", Content: `{"success":true}`, ToolCallID: "call_1"},
		{Role: "assistant", Content: "Done."},
	}

	if err := storage.Save(ctx, "test-session", messages); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(loaded))
	}
	if len(loaded[1].ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(loaded[1].ToolCalls))
	}
	call := loaded[1].ToolCalls[0]
	if call.ID != "call_1" || call.Name != "write_file" {
		t.Errorf("tool call = %+v", call)
	}
	if string(call.Arguments) != `{"path":"index.html"}` {
		t.Errorf("arguments = %s", call.Arguments)
	}
	if loaded[2].ToolCallID != "call_1" {
		t.Errorf("expected ToolCallID 'call_1', got %q", loaded[2].ToolCallID)
	}
	if len(loaded[3].ToolCalls) != 0 || loaded[3].ToolCallID != "" {
		t.Errorf("plain message carries tool data: %+v", loaded[3])
	}
}

func TestSqliteStorageLoadNonexistentSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	loaded, err := storage.Load(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 0 {
		t.Errorf("expected empty slice, got %d messages", len(loaded))
	}
	if loaded == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestSqliteStorageDeleteSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	messages := []llm.ChatMessage{
		{Role: "user", Content: "Test"},
	}

	if err := storage.Save(ctx, "test-session", messages); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exists, err := storage.Exists(ctx, "test-session")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected session to exist")
	}

	if err := storage.Delete(ctx, "test-session"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err = storage.Exists(ctx, "test-session")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected session to not exist after deletion")
	}
}

func TestSqliteStorageListSessions(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	msg := []llm.ChatMessage{
		{Role: "user", Content: "Test"},
	}

	if err := storage.Save(ctx, "session-1", msg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Save(ctx, "session-2", msg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sessions, err := storage.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}

	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestSqliteStorageOverwriteSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	messages1 := []llm.ChatMessage{
		{Role: "user", Content: "First"},
	}

	messages2 := []llm.ChatMessage{
		{Role: "user", Content: "Second"},
		{Role: "assistant", Content: "Response"},
	}

	if err := storage.Save(ctx, "test-session", messages1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Save(ctx, "test-session", messages2); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Errorf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "Second" {
		t.Errorf("expected 'Second', got '%s'", loaded[0].Content)
	}
}

func TestSqliteStorageOpensFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "conversations.db")

	storage, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	if err := storage.Save(ctx, "s", []llm.ChatMessage{{Role: "user", Content: "hi"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("expected 1 message, got %d", len(loaded))
	}
}
