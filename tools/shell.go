// Shell Command Executor Tool.
//
// Information Hiding:
// - Shell execution and process-group handling hidden
// - Denylist screening internalized
// - Output formatting abstracted

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// deniedPatterns are command substrings refused outright. This is a
// best-effort advisory screen against obviously destructive commands,
// not a sandbox: a determined prompt can still express destructive
// intent in other ways.
var deniedPatterns = []string{
	"rm -rf /",
	"rm -rf *",
	"format",
	"fdisk",
	"mkfs",
	"dd if=",
	"chmod 777",
	"chown -R",
	"> /dev/sd",
	"shutdown",
	"reboot",
	"init 0",
	"init 6",
}

// screenCommand returns the denylist pattern the command matches, or
// empty string when the command passes.
func screenCommand(command string) string {
	lower := strings.ToLower(command)
	for _, pattern := range deniedPatterns {
		if strings.Contains(lower, pattern) {
			return pattern
		}
	}
	return ""
}

// RunCommandTool executes shell commands via sh -c with a wall-clock
// timeout. On timeout the whole process group is killed so orphaned
// children do not outlive the command.
type RunCommandTool struct {
	BaseTool
	timeoutSecs uint64
	workingDir  string
}

// NewRunCommandTool creates a new shell tool with the given timeout.
func NewRunCommandTool(timeoutSecs uint64) *RunCommandTool {
	return &RunCommandTool{timeoutSecs: timeoutSecs}
}

// WithWorkingDir sets the default working directory for commands.
func (t *RunCommandTool) WithWorkingDir(dir string) *RunCommandTool {
	t.workingDir = dir
	return t
}

// Metadata returns the tool metadata.
func (t *RunCommandTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "run_command",
		Description: "Execute a shell command and return its output, exit code and timing",
		Parameters: []ToolParameter{
			{Name: "command", ParamType: "string", Description: "The shell command to execute", Required: true},
			{Name: "working_directory", ParamType: "string", Description: "Working directory for the command", Required: false},
			{Name: "timeout", ParamType: "integer", Description: "Timeout in seconds (default: 30)", Required: false},
		},
	}
}

type runCommandArgs struct {
	Command          string `json:"command"`
	WorkingDirectory string `json:"working_directory"`
	Timeout          uint64 `json:"timeout"`
}

// Validate validates the tool arguments.
func (t *RunCommandTool) Validate(args json.RawMessage) error {
	var a runCommandArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Command == "" {
		return fmt.Errorf("command cannot be empty")
	}
	return nil
}

// Execute runs the shell command.
func (t *RunCommandTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a runCommandArgs
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

	timeoutSecs := t.timeoutSecs
	if a.Timeout > 0 {
		timeoutSecs = a.Timeout
	}
	timeout := time.Duration(timeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", a.Command)
	if a.WorkingDirectory != "" {
		cmd.Dir = a.WorkingDirectory
	} else if t.workingDir != "" {
		cmd.Dir = t.workingDir
	}

	// Run the command in its own process group so cancellation kills
	// the whole tree, not just the shell.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return FailureResultf(KindTimedOut, "command timed out after %d seconds: %s", timeoutSecs, a.Command), nil
	}

	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return FailureResultf(KindAgentError, "failed to execute command: %v", err), nil
		}
		exitCode = exitErr.ExitCode()
	}

	return SuccessResult(formatCommandReport(a.Command, cmd.Dir, exitCode, elapsed, stdout.String(), stderr.String())), nil
}

// formatCommandReport builds the multi-section output returned for every
// completed command, successful or not.
func formatCommandReport(command, dir string, exitCode int, elapsed time.Duration, stdout, stderr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command: %s\n", command)
	if dir != "" {
		fmt.Fprintf(&b, "Working Directory: %s\n", dir)
	}
	fmt.Fprintf(&b, "Exit Code: %d\n", exitCode)
	fmt.Fprintf(&b, "Execution Time: %.2f seconds\n", elapsed.Seconds())
	if stdout != "" {
		fmt.Fprintf(&b, "\nSTDOUT:\n%s\n", stdout)
	}
	if stderr != "" {
		fmt.Fprintf(&b, "\nSTDERR:\n%s\n", stderr)
	}
	if exitCode == 0 {
		b.WriteString("\nCommand executed successfully")
	} else {
		b.WriteString("\nCommand failed")
	}
	return b.String()
}
