package tools

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestStartAndListProcesses(t *testing.T) {
	registry := NewProcessRegistry()
	t.Cleanup(registry.TerminateAll)

	start := NewStartProcessTool(registry)
	result, err := start.Execute(context.Background(), rawArgs(t, map[string]any{
		"command": "cat",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("start failed: %v", result.Error)
	}
	if !strings.Contains(result.Output, "proc_1") {
		t.Errorf("Output = %q, want process id", result.Output)
	}

	list := NewListProcessesTool(registry)
	result, err = list.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(result.Output, "proc_1: cat [Running]") {
		t.Errorf("list output = %q", result.Output)
	}
}

func TestSendProcessInput(t *testing.T) {
	registry := NewProcessRegistry()
	t.Cleanup(registry.TerminateAll)

	start := NewStartProcessTool(registry)
	if result, _ := start.Execute(context.Background(), rawArgs(t, map[string]any{
		"command": "cat",
	})); !result.Success() {
		t.Fatalf("start failed: %v", result.Error)
	}

	send := NewSendProcessInputTool(registry)
	result, err := send.Execute(context.Background(), rawArgs(t, map[string]any{
		"process_id": "proc_1",
		"input":      "hello process",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("send failed: %v", result.Error)
	}
	if !strings.Contains(result.Output, "hello process") {
		t.Errorf("Output = %q, want echoed input", result.Output)
	}
}

func TestSendProcessInputUnknownID(t *testing.T) {
	registry := NewProcessRegistry()
	send := NewSendProcessInputTool(registry)

	result, err := send.Execute(context.Background(), rawArgs(t, map[string]any{
		"process_id": "proc_42",
		"input":      "hi",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure for unknown process id")
	}
	if got := result.Kind(); got != KindNotFound {
		t.Errorf("Kind() = %v, want %v", got, KindNotFound)
	}
}

func TestTerminateProcess(t *testing.T) {
	registry := NewProcessRegistry()
	t.Cleanup(registry.TerminateAll)

	start := NewStartProcessTool(registry)
	if result, _ := start.Execute(context.Background(), rawArgs(t, map[string]any{
		"command": "sleep 60",
	})); !result.Success() {
		t.Fatalf("start failed: %v", result.Error)
	}

	terminate := NewTerminateProcessTool(registry)
	result, err := terminate.Execute(context.Background(), rawArgs(t, map[string]any{
		"process_id": "proc_1",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("terminate failed: %v", result.Error)
	}

	if _, ok := registry.get("proc_1"); ok {
		t.Error("process still registered after termination")
	}
}

func TestSendProcessInputToExitedProcess(t *testing.T) {
	registry := NewProcessRegistry()
	t.Cleanup(registry.TerminateAll)

	start := NewStartProcessTool(registry)
	if result, _ := start.Execute(context.Background(), rawArgs(t, map[string]any{
		"command": "exit 7",
	})); !result.Success() {
		t.Fatalf("start failed: %v", result.Error)
	}

	p, ok := registry.get("proc_1")
	if !ok {
		t.Fatal("process not registered")
	}
	select {
	case <-p.exited:
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}
	if p.running() {
		t.Error("running() = true after exit was observed")
	}

	send := NewSendProcessInputTool(registry)
	result, err := send.Execute(context.Background(), rawArgs(t, map[string]any{
		"process_id": "proc_1",
		"input":      "hi",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success() {
		t.Fatal("sending to an exited process should fail")
	}
	if got := result.Kind(); got != KindNotFound {
		t.Errorf("Kind() = %v, want %v", got, KindNotFound)
	}
	if !strings.Contains(result.Error.Error(), "exit code 7") {
		t.Errorf("error = %v, want exit code reported", result.Error)
	}

	if _, ok := registry.get("proc_1"); ok {
		t.Error("exited process should be dropped from the registry")
	}
}

func TestStartProcessDenylist(t *testing.T) {
	registry := NewProcessRegistry()
	start := NewStartProcessTool(registry)

	result, err := start.Execute(context.Background(), rawArgs(t, map[string]any{
		"command": "rm -rf /",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := result.Kind(); got != KindBlocked {
		t.Errorf("Kind() = %v, want %v", got, KindBlocked)
	}
}

func TestListProcessesEmpty(t *testing.T) {
	registry := NewProcessRegistry()
	list := NewListProcessesTool(registry)

	result, err := list.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Output != "No active interactive processes" {
		t.Errorf("Output = %q", result.Output)
	}
}
