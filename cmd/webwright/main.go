// Package main provides the webwright CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/webwright/webwright/cli"
)

var (
	// Global flags
	provider string
	maxIter  int
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "webwright",
		Short: "LLM agent that builds and edits websites with tools",
		Long: `A CLI tool for running an LLM agent wired to file, shell, HTML and
web tools. The agent can build static sites, edit pages via CSS
selectors, run commands and drive interactive processes.

Commands:
- chat:  interactive REPL with conversation persistence
- run:   execute a single task and exit
- serve: HTTP backend for the website-generation wizard
- tools: list the agent's tools`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().IntVarP(&maxIter, "max-iter", "m", 0, "Maximum iterations per turn (overrides AGENT_MAX_ITERATIONS)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider: provider,
		MaxIter:  maxIter,
		Verbose:  verbose,
	}
}

func chatCmd() *cobra.Command {
	var sessionID string
	var dbPath string
	var workingDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the agent.

The REPL understands help, history, clear, info and quit/exit/stop in
addition to free-form requests. With --session, conversation history is
persisted to SQLite and resumed on the next run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Chat(context.Background(), sessionID, dbPath, workingDir, options())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence")
	cmd.Flags().StringVar(&dbPath, "db", ".webwright/webwright.db", "Database path for storage")
	cmd.Flags().StringVarP(&workingDir, "dir", "d", ".", "Working directory for the agent")

	return cmd
}

func runCmd() *cobra.Command {
	var workingDir string

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Execute a single task and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunTask(context.Background(), args[0], workingDir, options())
		},
	}

	cmd.Flags().StringVarP(&workingDir, "dir", "d", ".", "Working directory for the agent")

	return cmd
}

func serveCmd() *cobra.Command {
	var addr string
	var generatorDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the website-wizard HTTP backend",
		Long: `Start the HTTP backend driving the website-generation wizard.

Endpoints:
  POST /api/generate  - run one agent turn with the wizard's form data
  POST /api/download  - download the generated site as a zip
  POST /api/send-zip  - email the generated site as a zip attachment`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Serve(addr, generatorDir, options())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides SERVER_ADDR, default :8080)")
	cmd.Flags().StringVar(&generatorDir, "generator-dir", "", "Directory for generated sites (overrides GENERATOR_DIR)")

	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(verbose)
		},
	}
}
