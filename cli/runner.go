// Command execution for CLI commands.
//
// Information Hiding:
// - Provider and agent setup hidden
// - REPL command dispatch hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/webwright/webwright/agent"
	"github.com/webwright/webwright/config"
	"github.com/webwright/webwright/llm"
	"github.com/webwright/webwright/server"
	"github.com/webwright/webwright/session"
	"github.com/webwright/webwright/storage"
	"github.com/webwright/webwright/tools"
)

// defaultDBPath is the unified database path for conversation storage.
const defaultDBPath = ".webwright/webwright.db"

// Options holds CLI execution options. Zero values defer to the
// environment-driven settings (AGENT_MAX_ITERATIONS and friends).
type Options struct {
	Provider string
	MaxIter  int
	Verbose  bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{}
}

// RunTask executes a single task and prints the agent's answer.
func RunTask(ctx context.Context, task, workingDir string, opts Options) error {
	a, _, processes, err := buildAgent(opts, workingDir)
	if err != nil {
		return err
	}
	defer processes.TerminateAll()

	state := newState("task_user", "User", workingDir)

	fmt.Printf("Running task...\n\n")
	response := a.RunTurn(ctx, state, task)
	fmt.Printf("%s\n", response)

	if state.ErrorInfo != nil {
		return fmt.Errorf("task failed: %s", state.ErrorInfo.Message)
	}
	if opts.Verbose && len(state.ToolResults) > 0 {
		fmt.Printf("\n(%d tool call(s), %d iteration(s))\n",
			len(state.ToolResults), state.IterationCount)
	}
	return nil
}

// Chat starts an interactive chat session. Besides free-form requests
// the REPL understands help, history, clear, info and quit/exit/stop.
func Chat(ctx context.Context, sessionID, dbPath, workingDir string, opts Options) error {
	a, registry, processes, err := buildAgent(opts, workingDir)
	if err != nil {
		return err
	}
	defer processes.TerminateAll()

	// Set up storage if session provided
	var store *storage.SqliteStorage
	if sessionID != "" {
		if dbPath == "" {
			dbPath = defaultDBPath
		}
		s, err := storage.OpenSqlite(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()
		store = s
		a = a.WithStorage(s)
	}

	sess := sessionID
	if sess == "" {
		sess = uuid.NewString()
	}

	state := newState("interactive_user", "User", workingDir)
	state.User.SessionID = sess

	// Load existing history
	if store != nil {
		history, err := store.Load(ctx, sess)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if len(history) > 0 {
			state.Apply(session.Update{Messages: history})
			fmt.Printf("Resuming session '%s' (%d messages)\n\n", sess, len(history))
		}
	}

	fmt.Println("Interactive session. Type 'help' for commands, 'quit' to exit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit", "stop":
			fmt.Println("\nGoodbye!")
			return scanner.Err()
		case "help":
			printHelp()
			continue
		case "history":
			printHistory(state)
			continue
		case "clear":
			fresh := newState(state.User.UserID, state.User.DisplayName, workingDir)
			fresh.User.SessionID = state.User.SessionID
			state = fresh
			fmt.Println("Conversation history cleared.")
			continue
		case "info":
			printInfo(a, registry, state, opts)
			continue
		}

		response := a.RunTurn(ctx, state, input)
		fmt.Printf("\n%s\n", response)

		if state.IterationCount > 1 {
			fmt.Printf("(completed in %d iterations)\n", state.IterationCount)
		}
		if n := len(state.ToolResults); n > 0 {
			fmt.Printf("(used %d tool call(s) this session)\n", n)
		}
		fmt.Println()
	}

	return scanner.Err()
}

// Serve starts the website-wizard HTTP backend. Agent turns run against
// the generator directory; SMTP delivery is enabled when configured.
// Empty addr and generatorDir fall back to SERVER_ADDR and GENERATOR_DIR.
func Serve(addr, generatorDir string, opts Options) error {
	if opts.Provider == "" {
		return fmt.Errorf("--provider is required for this command")
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = settings.Server.Addr
	}
	if generatorDir == "" {
		generatorDir = settings.Server.GeneratorDir
	}

	a, _, processes, err := buildAgent(opts, generatorDir)
	if err != nil {
		return err
	}
	defer processes.TerminateAll()

	if err := os.MkdirAll(generatorDir, 0755); err != nil {
		return fmt.Errorf("failed to create generator directory: %w", err)
	}

	handlers := server.NewHandlers(a, generatorDir)
	if settings.SMTP.Configured() {
		handlers = handlers.WithMailer(server.NewSMTPMailer(settings.SMTP))
	} else {
		fmt.Fprintln(os.Stderr, "Warning: SMTP not configured, send-zip endpoint disabled")
	}

	router := server.NewRouter(handlers)

	fmt.Printf("Wizard backend listening on %s (generator dir: %s)\n", addr, generatorDir)
	return router.Run(addr)
}

// ListTools lists all available tools.
func ListTools(verbose bool) error {
	registry, err := tools.WithDefaults(".", tools.NewProcessRegistry(), 0)
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	fmt.Println()

	for _, meta := range registry.List() {
		fmt.Printf("  %s\n", meta.Name)
		fmt.Printf("    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Printf("      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Println()
	}
	return nil
}

// buildAgent wires provider, tool registry and agent config together.
// The iteration ceiling and command timeout come from the environment
// settings; an explicit --max-iter flag overrides the environment.
func buildAgent(opts Options, workingDir string) (*agent.Agent, *tools.Registry, *tools.ProcessRegistry, error) {
	if opts.Provider == "" {
		return nil, nil, nil, fmt.Errorf("--provider is required for this command")
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, nil, nil, err
	}

	provider, err := createProvider(opts.Provider, settings)
	if err != nil {
		return nil, nil, nil, err
	}

	var commandTimeout uint64
	if settings.Agent.CommandTimeoutSecs > 0 {
		commandTimeout = uint64(settings.Agent.CommandTimeoutSecs)
	}

	processes := tools.NewProcessRegistry()
	registry, err := tools.WithDefaults(workingDir, processes, commandTimeout)
	if err != nil {
		return nil, nil, nil, err
	}

	cfg := agent.DefaultConfig()
	if settings.Agent.MaxIterations > 0 {
		cfg.MaxIterations = settings.Agent.MaxIterations
	}
	if opts.MaxIter > 0 {
		cfg.MaxIterations = opts.MaxIter
	}

	return agent.New(cfg, provider, registry), registry, processes, nil
}

func newState(userID, displayName, workingDir string) *session.State {
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		abs = workingDir
	}
	return session.New(session.UserContext{
		UserID:           userID,
		SessionID:        uuid.NewString(),
		DisplayName:      displayName,
		WorkingDirectory: abs,
	})
}

func createProvider(providerName string, settings config.Settings) (llm.Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

func printHelp() {
	fmt.Print(`
Interactive Commands:
  help     - Show this help message
  history  - Show conversation history
  clear    - Clear conversation history
  info     - Show agent configuration
  quit     - Exit the session (also: exit, stop)

Agent Capabilities:
  File Operations  - Read, write, edit files and directories
  Shell Commands   - Execute system commands safely
  HTML Editing     - Modify page content via CSS selectors
  Web Access       - Fetch URLs, download files
  Processes        - Start and drive interactive processes

Example requests:
  "List files in the current directory"
  "Create an index.html with a hero section"
  "Change the headline to 'Welcome to Acme Bistro'"
  "Download https://example.com/logo.png to assets/"

`)
}

func printHistory(state *session.State) {
	if len(state.Messages) == 0 {
		fmt.Println("No conversation history available.")
		return
	}

	fmt.Printf("\nConversation history (%d messages):\n", len(state.Messages))
	fmt.Println(strings.Repeat("-", 50))
	for i, msg := range state.Messages {
		content := msg.Content
		if content == "" && len(msg.ToolCalls) > 0 {
			content = fmt.Sprintf("[requested %d tool call(s)]", len(msg.ToolCalls))
		}
		if len(content) > 100 {
			content = content[:100] + "..."
		}
		fmt.Printf("%d. %s: %s\n", i+1, msg.Role, content)
	}
	fmt.Println()
}

func printInfo(a *agent.Agent, registry *tools.Registry, state *session.State, opts Options) {
	fmt.Println("\nAgent Configuration:")
	fmt.Printf("Provider: %s\n", opts.Provider)
	fmt.Printf("Max Iterations: %d\n", a.MaxIterations())
	fmt.Printf("Phase: %s\n", a.Phase())

	names := registry.Names()
	fmt.Printf("\nAvailable Tools (%d):\n", len(names))
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}

	fmt.Println("\nCurrent Session:")
	fmt.Printf("Session ID: %s\n", state.User.SessionID)
	fmt.Printf("User: %s\n", state.User.DisplayName)
	fmt.Printf("Working Directory: %s\n", state.User.WorkingDirectory)
	fmt.Printf("Messages: %d\n", len(state.Messages))
	fmt.Printf("Iterations: %d\n", state.IterationCount)
}
