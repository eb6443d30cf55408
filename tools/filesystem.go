// Filesystem Tools - Read, Write, Edit operations.
//
// Information Hiding:
// - File I/O implementation details hidden
// - Fault classification for file operations internalized
// - Text replacement strategy delegated to internal/textmatch

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/webwright/webwright/internal/textmatch"
)

// ReadFileTool reads file contents with an optional 1-based line range.
type ReadFileTool struct {
	BaseTool
	maxSizeBytes int64
}

// NewReadFileTool creates a new read file tool.
func NewReadFileTool(maxSizeBytes int64) *ReadFileTool {
	return &ReadFileTool{maxSizeBytes: maxSizeBytes}
}

// Metadata returns the tool metadata.
func (t *ReadFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_file",
		Description: "Read the contents of a file, optionally restricted to a line range",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Path to the file to read", Required: true},
			{Name: "start_line", ParamType: "integer", Description: "First line to include (1-based)", Required: false},
			{Name: "end_line", ParamType: "integer", Description: "Last line to include (inclusive)", Required: false},
		},
	}
}

type readFileArgs struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Validate validates the arguments.
func (t *ReadFileTool) Validate(args json.RawMessage) error {
	var a readFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Execute reads the file.
func (t *ReadFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a readFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.Path == "" {
		return FailureResultf(KindInvalidArgs, "path cannot be empty"), nil
	}

	info, err := os.Stat(a.Path)
	if os.IsNotExist(err) {
		return FailureResultf(KindNotFound, "file does not exist: %s", a.Path), nil
	}
	if err != nil {
		return FailureResultf(KindPermissionDenied, "failed to read file metadata: %v", err), nil
	}
	if info.IsDir() {
		return FailureResultf(KindNotAFile, "path is a directory, not a file: %s", a.Path), nil
	}
	if info.Size() > t.maxSizeBytes {
		return FailureResultf(KindInvalidArgs, "file too large: %d bytes (max: %d bytes)", info.Size(), t.maxSizeBytes), nil
	}

	raw, err := os.ReadFile(a.Path)
	if err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied reading %s", a.Path), nil
		}
		return FailureResultf(KindAgentError, "failed to read file: %v", err), nil
	}
	if !utf8.Valid(raw) {
		return FailureResultf(KindDecodeError, "file is not valid UTF-8 text: %s", a.Path), nil
	}

	content := textmatch.NormalizeLineEndings(string(raw))

	if a.StartLine > 0 || a.EndLine > 0 {
		if a.StartLine > 0 && a.EndLine > 0 && a.StartLine > a.EndLine {
			return FailureResultf(KindInvalidArgs, "start_line %d after end_line %d", a.StartLine, a.EndLine), nil
		}
		lines := strings.Split(content, "\n")
		start := 0
		if a.StartLine > 0 {
			start = a.StartLine - 1
		}
		end := len(lines)
		if a.EndLine > 0 && a.EndLine < end {
			end = a.EndLine
		}
		if start >= len(lines) {
			return FailureResultf(KindInvalidArgs, "start_line %d past end of file (%d lines)", a.StartLine, len(lines)), nil
		}
		content = strings.Join(lines[start:end], "\n")
	}

	return SuccessResult(content), nil
}

// WriteFileTool writes content to a file.
type WriteFileTool struct {
	BaseTool
	maxSizeBytes int64
}

// NewWriteFileTool creates a new write file tool.
func NewWriteFileTool(maxSizeBytes int64) *WriteFileTool {
	return &WriteFileTool{maxSizeBytes: maxSizeBytes}
}

// Metadata returns the tool metadata.
func (t *WriteFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "write_file",
		Description: "Write content to a file, creating parent directories by default",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Path to the file to write", Required: true},
			{Name: "content", ParamType: "string", Description: "Content to write", Required: true},
			{Name: "create_dirs", ParamType: "boolean", Description: "Create missing parent directories (default: true)", Required: false},
			{Name: "overwrite", ParamType: "boolean", Description: "Overwrite an existing file (default: false)", Required: false},
		},
	}
}

type writeFileArgs struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	CreateDirs *bool  `json:"create_dirs"`
	Overwrite  bool   `json:"overwrite"`
}

// Validate validates the arguments.
func (t *WriteFileTool) Validate(args json.RawMessage) error {
	var a writeFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Execute writes the file.
func (t *WriteFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a writeFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.Path == "" {
		return FailureResultf(KindInvalidArgs, "path cannot be empty"), nil
	}
	if int64(len(a.Content)) > t.maxSizeBytes {
		return FailureResultf(KindInvalidArgs, "content too large: %d bytes (max: %d bytes)", len(a.Content), t.maxSizeBytes), nil
	}

	if info, err := os.Stat(a.Path); err == nil {
		if info.IsDir() {
			return FailureResultf(KindNotAFile, "path is a directory: %s", a.Path), nil
		}
		if !a.Overwrite {
			return FailureResultf(KindAlreadyExists, "file already exists: %s (set overwrite=true to replace)", a.Path), nil
		}
	}

	createDirs := a.CreateDirs == nil || *a.CreateDirs
	if createDirs {
		if err := os.MkdirAll(filepath.Dir(a.Path), 0755); err != nil {
			return FailureResultf(KindPermissionDenied, "failed to create directory: %v", err), nil
		}
	}

	content := textmatch.NormalizeLineEndings(a.Content)
	if err := os.WriteFile(a.Path, []byte(content), 0644); err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied writing %s", a.Path), nil
		}
		return FailureResultf(KindAgentError, "failed to write file: %v", err), nil
	}

	return SuccessResultf("Successfully wrote %d bytes to %s", len(content), a.Path), nil
}

// EditFileTool replaces text in a file using layered matching: exact,
// case-insensitive, then fuzzy line-window matching.
type EditFileTool struct {
	BaseTool
	maxSizeBytes int64
}

// NewEditFileTool creates a new edit file tool.
func NewEditFileTool(maxSizeBytes int64) *EditFileTool {
	return &EditFileTool{maxSizeBytes: maxSizeBytes}
}

// Metadata returns the tool metadata.
func (t *EditFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "edit_file",
		Description: "Replace text in a file. Falls back to fuzzy matching when the exact text is not found, which helps with whitespace and formatting drift in HTML.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Path to the file to edit", Required: true},
			{Name: "old_text", ParamType: "string", Description: "Text to find", Required: true},
			{Name: "new_text", ParamType: "string", Description: "Replacement text", Required: true},
			{Name: "max_replacements", ParamType: "integer", Description: "Maximum replacements (0 for all)", Required: false},
			{Name: "case_sensitive", ParamType: "boolean", Description: "Case sensitive matching (default: true)", Required: false},
			{Name: "fuzzy_threshold", ParamType: "number", Description: "Minimum similarity for fuzzy fallback, 0 disables (default: 0.85)", Required: false},
		},
	}
}

type editFileArgs struct {
	Path            string   `json:"path"`
	OldText         string   `json:"old_text"`
	NewText         string   `json:"new_text"`
	MaxReplacements int      `json:"max_replacements"`
	CaseSensitive   *bool    `json:"case_sensitive"`
	FuzzyThreshold  *float64 `json:"fuzzy_threshold"`
}

// Validate validates the arguments.
func (t *EditFileTool) Validate(args json.RawMessage) error {
	var a editFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if a.OldText == "" {
		return fmt.Errorf("old_text cannot be empty")
	}
	return nil
}

// Execute performs the edit.
func (t *EditFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a editFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.Path == "" {
		return FailureResultf(KindInvalidArgs, "path cannot be empty"), nil
	}
	if a.OldText == "" {
		return FailureResultf(KindInvalidArgs, "old_text cannot be empty"), nil
	}

	info, err := os.Stat(a.Path)
	if os.IsNotExist(err) {
		return FailureResultf(KindNotFound, "file does not exist: %s", a.Path), nil
	}
	if err == nil && info.IsDir() {
		return FailureResultf(KindNotAFile, "path is a directory: %s", a.Path), nil
	}

	raw, err := os.ReadFile(a.Path)
	if err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied reading %s", a.Path), nil
		}
		return FailureResultf(KindAgentError, "failed to read file: %v", err), nil
	}
	if int64(len(raw)) > t.maxSizeBytes {
		return FailureResultf(KindInvalidArgs, "file too large: %d bytes (max: %d bytes)", len(raw), t.maxSizeBytes), nil
	}
	if !utf8.Valid(raw) {
		return FailureResultf(KindDecodeError, "file is not valid UTF-8 text: %s", a.Path), nil
	}

	opts := textmatch.DefaultOptions()
	opts.MaxReplacements = a.MaxReplacements
	if a.CaseSensitive != nil {
		opts.CaseSensitive = *a.CaseSensitive
	}
	if a.FuzzyThreshold != nil {
		opts.FuzzyThreshold = *a.FuzzyThreshold
	}

	updated, changes, err := textmatch.Replace(string(raw), a.OldText, a.NewText, opts)
	if err != nil {
		return FailureResultf(KindInvalidArgs, "%v", err), nil
	}
	if changes == 0 {
		return FailureResultf(KindTextNotFound,
			"text not found in %s; try using more specific context or check for formatting differences", a.Path), nil
	}

	if err := os.WriteFile(a.Path, []byte(updated), 0644); err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied writing %s", a.Path), nil
		}
		return FailureResultf(KindAgentError, "failed to write file: %v", err), nil
	}

	return SuccessResultf("Successfully replaced %d occurrence(s) in %s", changes, a.Path), nil
}
