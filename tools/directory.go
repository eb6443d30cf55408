// Directory Tools - List, Create, Copy operations.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListDirectoryTool lists directory contents, directories first.
type ListDirectoryTool struct {
	BaseTool
}

// NewListDirectoryTool creates a new directory listing tool.
func NewListDirectoryTool() *ListDirectoryTool {
	return &ListDirectoryTool{}
}

// Metadata returns the tool metadata.
func (t *ListDirectoryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "list_directory",
		Description: "List the contents of a directory, directories before files",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Directory path to list", Required: true},
			{Name: "show_hidden", ParamType: "boolean", Description: "Include dot-prefixed entries (default: false)", Required: false},
		},
	}
}

type listDirectoryArgs struct {
	Path       string `json:"path"`
	ShowHidden bool   `json:"show_hidden"`
}

// Validate validates the arguments.
func (t *ListDirectoryTool) Validate(args json.RawMessage) error {
	var a listDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Execute lists the directory.
func (t *ListDirectoryTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a listDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.Path == "" {
		return FailureResultf(KindInvalidArgs, "path cannot be empty"), nil
	}

	info, err := os.Stat(a.Path)
	if os.IsNotExist(err) {
		return FailureResultf(KindNotFound, "directory does not exist: %s", a.Path), nil
	}
	if err != nil {
		return FailureResultf(KindPermissionDenied, "failed to stat directory: %v", err), nil
	}
	if !info.IsDir() {
		return FailureResultf(KindNotADirectory, "path is not a directory: %s", a.Path), nil
	}

	entries, err := os.ReadDir(a.Path)
	if err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied listing %s", a.Path), nil
		}
		return FailureResultf(KindAgentError, "failed to list directory: %v", err), nil
	}

	var dirs, files []string
	for _, entry := range entries {
		name := entry.Name()
		if !a.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, fmt.Sprintf("[DIR] %s", name))
		} else {
			size := int64(0)
			if fi, err := entry.Info(); err == nil {
				size = fi.Size()
			}
			files = append(files, fmt.Sprintf("[FILE] %s (%d bytes)", name, size))
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	listing := append(dirs, files...)
	if len(listing) == 0 {
		return SuccessResult("Directory is empty"), nil
	}
	return SuccessResult(strings.Join(listing, "\n")), nil
}

// CreateDirectoryTool creates a directory with any missing parents.
type CreateDirectoryTool struct {
	BaseTool
}

// NewCreateDirectoryTool creates a new directory creation tool.
func NewCreateDirectoryTool() *CreateDirectoryTool {
	return &CreateDirectoryTool{}
}

// Metadata returns the tool metadata.
func (t *CreateDirectoryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "create_directory",
		Description: "Create a directory and any necessary parent directories",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Directory path to create", Required: true},
		},
	}
}

type createDirectoryArgs struct {
	Path string `json:"path"`
}

// Validate validates the arguments.
func (t *CreateDirectoryTool) Validate(args json.RawMessage) error {
	var a createDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Execute creates the directory.
func (t *CreateDirectoryTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a createDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.Path == "" {
		return FailureResultf(KindInvalidArgs, "path cannot be empty"), nil
	}

	if info, err := os.Stat(a.Path); err == nil && !info.IsDir() {
		return FailureResultf(KindNotADirectory, "path exists and is not a directory: %s", a.Path), nil
	}

	if err := os.MkdirAll(a.Path, 0755); err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied creating %s", a.Path), nil
		}
		return FailureResultf(KindAgentError, "failed to create directory: %v", err), nil
	}

	return SuccessResultf("Successfully created directory %s", a.Path), nil
}

// CopyDirectoryTool recursively copies a directory tree.
type CopyDirectoryTool struct {
	BaseTool
}

// NewCopyDirectoryTool creates a new directory copy tool.
func NewCopyDirectoryTool() *CopyDirectoryTool {
	return &CopyDirectoryTool{}
}

// Metadata returns the tool metadata.
func (t *CopyDirectoryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "copy_directory",
		Description: "Copy a directory and all its contents to a new location",
		Parameters: []ToolParameter{
			{Name: "source", ParamType: "string", Description: "Source directory path", Required: true},
			{Name: "destination", ParamType: "string", Description: "Destination directory path", Required: true},
			{Name: "overwrite", ParamType: "boolean", Description: "Replace an existing destination (default: true)", Required: false},
		},
	}
}

type copyDirectoryArgs struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Overwrite   *bool  `json:"overwrite"`
}

// Validate validates the arguments.
func (t *CopyDirectoryTool) Validate(args json.RawMessage) error {
	var a copyDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Source == "" || a.Destination == "" {
		return fmt.Errorf("source and destination cannot be empty")
	}
	return nil
}

// Execute copies the directory tree.
func (t *CopyDirectoryTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a copyDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.Source == "" || a.Destination == "" {
		return FailureResultf(KindInvalidArgs, "source and destination cannot be empty"), nil
	}

	srcInfo, err := os.Stat(a.Source)
	if os.IsNotExist(err) {
		return FailureResultf(KindNotFound, "source directory does not exist: %s", a.Source), nil
	}
	if err != nil {
		return FailureResultf(KindPermissionDenied, "failed to stat source: %v", err), nil
	}
	if !srcInfo.IsDir() {
		return FailureResultf(KindNotADirectory, "source is not a directory: %s", a.Source), nil
	}

	overwrite := a.Overwrite == nil || *a.Overwrite
	if _, err := os.Stat(a.Destination); err == nil {
		if !overwrite {
			return FailureResultf(KindAlreadyExists, "destination %s already exists and overwrite=false", a.Destination), nil
		}
		if err := os.RemoveAll(a.Destination); err != nil {
			return FailureResultf(KindPermissionDenied, "failed to remove existing destination: %v", err), nil
		}
	}

	fileCount, err := copyTree(a.Source, a.Destination)
	if err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied copying to %s", a.Destination), nil
		}
		return FailureResultf(KindAgentError, "failed to copy directory: %v", err), nil
	}

	return SuccessResultf("Successfully copied %d files from %s to %s", fileCount, a.Source, a.Destination), nil
}

// copyTree copies src into dest recursively and returns the number of
// regular files copied. Symlinks and other special files are skipped.
func copyTree(src, dest string) (int, error) {
	count := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
