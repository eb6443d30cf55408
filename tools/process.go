// Interactive Process Tools.
//
// Long-running commands (dev servers, REPLs) are started detached and
// tracked in an explicitly owned ProcessRegistry instead of an ambient
// package-level table. The registry owns each child until termination
// hands the process back to the operating system.

package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// managedProcess is one tracked interactive child. The exited channel is
// closed by the reaper goroutine after Wait returns, so observing it
// closed also orders reads of ProcessState after the write.
type managedProcess struct {
	id      string
	command string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	started time.Time
	exited  <-chan struct{}
}

// ProcessRegistry tracks interactive child processes by id. All access
// is serialized through the mutex; termination removes the entry.
type ProcessRegistry struct {
	mu        sync.Mutex
	processes map[string]*managedProcess
	nextID    int
}

// NewProcessRegistry creates an empty registry.
func NewProcessRegistry() *ProcessRegistry {
	return &ProcessRegistry{processes: make(map[string]*managedProcess)}
}

// add registers a process under a fresh id and returns the id.
func (r *ProcessRegistry) add(command string, cmd *exec.Cmd, stdin io.WriteCloser, stdout io.Reader, exited <-chan struct{}) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := fmt.Sprintf("proc_%d", r.nextID)
	r.processes[id] = &managedProcess{
		id:      id,
		command: command,
		cmd:     cmd,
		stdin:   stdin,
		stdout:  bufio.NewReader(stdout),
		started: time.Now(),
		exited:  exited,
	}
	return id
}

// get returns a tracked process by id.
func (r *ProcessRegistry) get(id string) (*managedProcess, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.processes[id]
	return p, ok
}

// remove drops a process from the registry.
func (r *ProcessRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.processes, id)
}

// snapshot returns tracked processes sorted by id.
func (r *ProcessRegistry) snapshot() []*managedProcess {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*managedProcess, 0, len(r.processes))
	for _, p := range r.processes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// TerminateAll kills every tracked process. Used at shutdown.
func (r *ProcessRegistry) TerminateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.processes {
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		delete(r.processes, id)
	}
}

// running reports whether the process has not yet exited.
func (p *managedProcess) running() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// StartProcessTool starts an interactive process and registers it.
type StartProcessTool struct {
	BaseTool
	registry *ProcessRegistry
}

// NewStartProcessTool creates a start tool bound to a registry.
func NewStartProcessTool(registry *ProcessRegistry) *StartProcessTool {
	return &StartProcessTool{registry: registry}
}

// Metadata returns the tool metadata.
func (t *StartProcessTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "start_process",
		Description: "Start a long-running interactive process and return its process id",
		Parameters: []ToolParameter{
			{Name: "command", ParamType: "string", Description: "Command to start", Required: true},
		},
	}
}

type startProcessArgs struct {
	Command string `json:"command"`
}

// Validate validates the arguments.
func (t *StartProcessTool) Validate(args json.RawMessage) error {
	var a startProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Command == "" {
		return fmt.Errorf("command cannot be empty")
	}
	return nil
}

// Execute starts the process.
func (t *StartProcessTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a startProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.Command == "" {
		return FailureResultf(KindInvalidArgs, "command cannot be empty"), nil
	}

	if pattern := screenCommand(a.Command); pattern != "" {
		return FailureResultf(KindBlocked,
			"command blocked for safety reasons, contains dangerous pattern: %q", pattern), nil
	}

	cmd := exec.Command("sh", "-c", a.Command)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return FailureResultf(KindAgentError, "failed to open stdin pipe: %v", err), nil
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return FailureResultf(KindAgentError, "failed to open stdout pipe: %v", err), nil
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return FailureResultf(KindAgentError, "failed to start process: %v", err), nil
	}

	// Reap in the background; closing the channel publishes ProcessState.
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	id := t.registry.add(a.Command, cmd, stdin, stdout, exited)
	return SuccessResultf("Started interactive process %q with ID: %s\nUse this ID for further interactions.", a.Command, id), nil
}

// SendProcessInputTool writes a line to a tracked process and reads any
// available output.
type SendProcessInputTool struct {
	BaseTool
	registry    *ProcessRegistry
	readTimeout time.Duration
}

// NewSendProcessInputTool creates a send-input tool bound to a registry.
func NewSendProcessInputTool(registry *ProcessRegistry) *SendProcessInputTool {
	return &SendProcessInputTool{registry: registry, readTimeout: 5 * time.Second}
}

// Metadata returns the tool metadata.
func (t *SendProcessInputTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "send_process_input",
		Description: "Send a line of input to a running interactive process and collect its output",
		Parameters: []ToolParameter{
			{Name: "process_id", ParamType: "string", Description: "ID of the target process", Required: true},
			{Name: "input", ParamType: "string", Description: "Input line to send", Required: false},
		},
	}
}

type sendProcessInputArgs struct {
	ProcessID string `json:"process_id"`
	Input     string `json:"input"`
}

// Validate validates the arguments.
func (t *SendProcessInputTool) Validate(args json.RawMessage) error {
	var a sendProcessInputArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.ProcessID == "" {
		return fmt.Errorf("process_id cannot be empty")
	}
	return nil
}

// Execute sends input and reads output.
func (t *SendProcessInputTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a sendProcessInputArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.ProcessID == "" {
		return FailureResultf(KindInvalidArgs, "process_id cannot be empty"), nil
	}

	p, ok := t.registry.get(a.ProcessID)
	if !ok {
		return FailureResultf(KindNotFound, "no active process with ID %q", a.ProcessID), nil
	}

	if !p.running() {
		t.registry.remove(a.ProcessID)
		return FailureResultf(KindNotFound, "process %q has terminated with exit code %d",
			a.ProcessID, p.cmd.ProcessState.ExitCode()), nil
	}

	if a.Input != "" {
		if _, err := io.WriteString(p.stdin, a.Input+"\n"); err != nil {
			return FailureResultf(KindAgentError, "failed to send input to %q: %v", a.ProcessID, err), nil
		}
	}

	output := t.collectOutput(p)
	if output == "" {
		output = "No output received"
	}
	return SuccessResultf("Process ID: %s\nInput sent: %s\n\nOutput:\n%s", a.ProcessID, a.Input, output), nil
}

// collectOutput reads lines from the process until the read timeout
// elapses or output goes quiet.
func (t *SendProcessInputTool) collectOutput(p *managedProcess) string {
	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			line, err := p.stdout.ReadString('\n')
			if line != "" {
				select {
				case lines <- strings.TrimRight(line, "\n"):
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	var collected []string
	deadline := time.After(t.readTimeout)
	// After the first line, a short idle gap ends collection.
	idle := 200 * time.Millisecond
	for {
		var quiet <-chan time.Time
		if len(collected) > 0 {
			quiet = time.After(idle)
		}
		select {
		case line := <-lines:
			collected = append(collected, line)
		case <-quiet:
			return strings.Join(collected, "\n")
		case <-deadline:
			return strings.Join(collected, "\n")
		}
	}
}

// TerminateProcessTool stops a tracked process, escalating from SIGTERM
// to SIGKILL, then releases its registry slot.
type TerminateProcessTool struct {
	BaseTool
	registry *ProcessRegistry
}

// NewTerminateProcessTool creates a terminate tool bound to a registry.
func NewTerminateProcessTool(registry *ProcessRegistry) *TerminateProcessTool {
	return &TerminateProcessTool{registry: registry}
}

// Metadata returns the tool metadata.
func (t *TerminateProcessTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "terminate_process",
		Description: "Terminate a running interactive process",
		Parameters: []ToolParameter{
			{Name: "process_id", ParamType: "string", Description: "ID of the process to terminate", Required: true},
		},
	}
}

type terminateProcessArgs struct {
	ProcessID string `json:"process_id"`
}

// Validate validates the arguments.
func (t *TerminateProcessTool) Validate(args json.RawMessage) error {
	var a terminateProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.ProcessID == "" {
		return fmt.Errorf("process_id cannot be empty")
	}
	return nil
}

// Execute terminates the process.
func (t *TerminateProcessTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a terminateProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.ProcessID == "" {
		return FailureResultf(KindInvalidArgs, "process_id cannot be empty"), nil
	}

	p, ok := t.registry.get(a.ProcessID)
	if !ok {
		return FailureResultf(KindNotFound, "no active process with ID %q", a.ProcessID), nil
	}

	if p.cmd.Process != nil && p.running() {
		_ = p.cmd.Process.Signal(syscall.SIGTERM)

		select {
		case <-p.exited:
		case <-time.After(5 * time.Second):
			_ = p.cmd.Process.Kill()
		}
	}

	t.registry.remove(a.ProcessID)
	return SuccessResultf("Successfully terminated process %q", a.ProcessID), nil
}

// ListProcessesTool lists tracked processes with their status.
type ListProcessesTool struct {
	BaseTool
	registry *ProcessRegistry
}

// NewListProcessesTool creates a list tool bound to a registry.
func NewListProcessesTool(registry *ProcessRegistry) *ListProcessesTool {
	return &ListProcessesTool{registry: registry}
}

// Metadata returns the tool metadata.
func (t *ListProcessesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "list_processes",
		Description: "List all active interactive processes",
		Parameters:  []ToolParameter{},
	}
}

// Execute lists the processes.
func (t *ListProcessesTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	procs := t.registry.snapshot()
	if len(procs) == 0 {
		return SuccessResult("No active interactive processes"), nil
	}

	lines := []string{"Active interactive processes:"}
	for _, p := range procs {
		status := "Running"
		if !p.running() {
			status = fmt.Sprintf("Terminated (exit code: %d)", p.cmd.ProcessState.ExitCode())
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s [%s]", p.id, p.command, status))
	}
	return SuccessResult(strings.Join(lines, "\n")), nil
}
