package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	tool := NewListDirectoryTool()

	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register(tool); err == nil {
		t.Error("duplicate registration should fail")
	}

	got, ok := registry.Get("list_directory")
	if !ok {
		t.Fatal("Get() did not find registered tool")
	}
	if got.Metadata().Name != "list_directory" {
		t.Errorf("Metadata().Name = %q", got.Metadata().Name)
	}
	if !registry.Has("list_directory") {
		t.Error("Has() = false for registered tool")
	}
	if registry.Has("nope") {
		t.Error("Has() = true for unknown tool")
	}
}

func TestWithDefaults(t *testing.T) {
	processes := NewProcessRegistry()
	registry, err := WithDefaults(t.TempDir(), processes, 0)
	if err != nil {
		t.Fatalf("WithDefaults() error = %v", err)
	}

	wantTools := []string{
		"read_file", "write_file", "edit_file",
		"list_directory", "create_directory", "copy_directory",
		"run_command",
		"start_process", "send_process_input", "terminate_process", "list_processes",
		"replace_html_content", "replace_html_attribute", "find_html_elements",
		"fetch_url", "download_file",
	}
	for _, name := range wantTools {
		if !registry.Has(name) {
			t.Errorf("default registry missing %q", name)
		}
	}

	names := registry.Names()
	if len(names) != len(wantTools) {
		t.Errorf("Names() returned %d tools, want %d: %v", len(names), len(wantTools), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names() not sorted: %v", names)
			break
		}
	}
}

func TestWithDefaultsCommandTimeout(t *testing.T) {
	registry, err := WithDefaults(t.TempDir(), NewProcessRegistry(), 1)
	if err != nil {
		t.Fatalf("WithDefaults() error = %v", err)
	}

	tool, ok := registry.Get("run_command")
	if !ok {
		t.Fatal("run_command not registered")
	}

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"command":"sleep 3"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success() {
		t.Fatal("command should time out under the configured ceiling")
	}
	if got := result.Kind(); got != KindTimedOut {
		t.Errorf("Kind() = %v, want %v", got, KindTimedOut)
	}
}

func TestRegistryDescription(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(NewReadFileTool(DefaultMaxFileSize)); err != nil {
		t.Fatal(err)
	}

	desc := registry.Description()
	for _, want := range []string{"Tool: read_file", "path (string)", "[required]", "[optional]"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Description() missing %q:\n%s", want, desc)
		}
	}
}

func TestToolErrorKinds(t *testing.T) {
	err := Errorf(KindSelectorNotFound, "no element for %q", ".hero")
	if got := KindOf(err); got != KindSelectorNotFound {
		t.Errorf("KindOf() = %v, want %v", got, KindSelectorNotFound)
	}

	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatal("errors.As failed for ToolError")
	}
	if te.Kind != KindSelectorNotFound {
		t.Errorf("Kind = %v", te.Kind)
	}

	// Unclassified errors default to agent_error.
	if got := KindOf(errors.New("boom")); got != KindAgentError {
		t.Errorf("KindOf(plain error) = %v, want %v", got, KindAgentError)
	}
}

func TestToolResultMarshalJSON(t *testing.T) {
	success := SuccessResult("done")
	raw, err := json.Marshal(success)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got["success"] != true || got["output"] != "done" {
		t.Errorf("success marshal = %v", got)
	}

	failure := FailureResultf(KindNotFound, "file missing")
	raw, err = json.Marshal(failure)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got["success"] != false || got["error"] != "file missing" || got["kind"] != string(KindNotFound) {
		t.Errorf("failure marshal = %v", got)
	}
}
