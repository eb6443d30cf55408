// Turn loop state machine.
//
// This is THE canonical implementation of the agent turn. All chat
// execution, CLI and HTTP alike, goes through this module.
//
// Information Hiding:
// - Phase transitions hidden behind RunTurn
// - LLM communication hidden
// - Tool dispatch coordination hidden
// - Session persistence hidden

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/webwright/webwright/llm"
	"github.com/webwright/webwright/session"
	"github.com/webwright/webwright/storage"
	"github.com/webwright/webwright/tools"
)

// fallbackResponse is returned when the model terminates a turn without
// producing any assistant content.
const fallbackResponse = "I apologize, but I couldn't generate a proper response."

// Agent drives one conversation turn at a time through an explicit
// phase machine: AwaitingModel -> DispatchingTools -> AwaitingModel ...
// -> Terminated.
type Agent struct {
	config   Config
	provider llm.Provider
	registry *tools.Registry
	store    storage.ConversationStorage
	phase    Phase
}

// New creates a new agent with the given configuration, provider and
// tool registry.
func New(config Config, provider llm.Provider, registry *tools.Registry) *Agent {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultConfig().MaxIterations
	}
	return &Agent{
		config:   config,
		provider: provider,
		registry: registry,
		phase:    PhaseAwaitingModel,
	}
}

// WithStorage enables conversation persistence keyed by session id.
// Saves are last-write-wins and best-effort.
func (a *Agent) WithStorage(store storage.ConversationStorage) *Agent {
	a.store = store
	return a
}

// Phase returns the machine's current phase.
func (a *Agent) Phase() Phase {
	return a.phase
}

// MaxIterations returns the per-turn model call ceiling.
func (a *Agent) MaxIterations() int {
	return a.config.MaxIterations
}

// RunTurn executes one full conversation turn: the user message is
// appended to the session state, then the machine alternates model
// calls and tool dispatch until the model stops requesting tools or
// the iteration ceiling is hit. The final assistant content is
// returned; every fault surfaces as a user-facing message, never a
// panic or a bare error mid-conversation.
func (a *Agent) RunTurn(ctx context.Context, state *session.State, userMessage string) string {
	a.phase = PhaseAwaitingModel
	state.ResetTurn()
	state.Apply(session.Update{
		Messages: []llm.ChatMessage{llm.UserMessage(userMessage)},
	})

	defs := toolDefinitions(a.registry)

	for a.phase != PhaseTerminated {
		// Ceiling check happens before every model call.
		if state.IterationCount >= a.config.MaxIterations {
			slog.Warn("iteration ceiling reached",
				"agent", a.config.Name,
				"session", state.User.SessionID,
				"iterations", state.IterationCount)
			a.phase = PhaseTerminated
			break
		}

		iteration := state.IterationCount + 1
		state.Apply(session.Update{IterationCount: &iteration})

		response, err := a.provider.ChatWithTools(ctx, a.wireMessages(state), defs)
		if err != nil {
			return a.terminateWithError(state, err)
		}

		if len(response.ToolCalls) == 0 {
			state.Apply(session.Update{
				Messages: []llm.ChatMessage{llm.AssistantMessage(response.Content)},
			})
			a.phase = PhaseTerminated
			break
		}

		a.phase = PhaseDispatchingTools
		a.dispatchTools(ctx, state, response)
		a.phase = PhaseAwaitingModel
	}

	a.persist(ctx, state)

	if content := state.LastAssistantContent(); content != "" {
		return content
	}
	return fallbackResponse
}

// wireMessages builds the messages sent to the provider: the system
// prompt, the persisted conversation, and an ephemeral per-turn context
// message that is never stored.
func (a *Agent) wireMessages(state *session.State) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(state.Messages)+2)
	messages = append(messages, llm.SystemMessage(a.config.SystemPrompt))
	messages = append(messages, state.Messages...)
	messages = append(messages, llm.SystemMessage(fmt.Sprintf(
		"Current Context:\nWorking Directory: %s\nUser: %s\nSession: %s\nIteration: %d of %d",
		state.User.WorkingDirectory,
		state.User.DisplayName,
		state.User.SessionID,
		state.IterationCount,
		a.config.MaxIterations,
	)))
	return messages
}

// dispatchTools executes the model's tool calls in declaration order.
// Each call is independent: a failure is recorded and reported back to
// the model without blocking its siblings.
func (a *Agent) dispatchTools(ctx context.Context, state *session.State, response llm.LLMResponse) {
	state.Apply(session.Update{
		Messages: []llm.ChatMessage{{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		}},
	})

	for _, call := range response.ToolCalls {
		result := a.executeTool(ctx, call)

		payload, err := json.Marshal(result)
		if err != nil {
			payload = []byte(fmt.Sprintf(`{"success":false,"error":%q}`, err.Error()))
		}

		record := session.ToolRecord{
			ToolName:   call.Name,
			ArgsDigest: digestArgs(call.Arguments),
			Success:    result.Success(),
			Message:    result.Output,
			Timestamp:  time.Now(),
		}
		if !result.Success() {
			record.Message = result.Error.Error()
		}

		state.Apply(session.Update{
			Messages:    []llm.ChatMessage{llm.ToolResultMessage(call.ID, string(payload))},
			ToolResults: []session.ToolRecord{record},
		})

		slog.Debug("tool dispatched",
			"agent", a.config.Name,
			"tool", call.Name,
			"success", result.Success())
	}
}

// executeTool resolves and runs a single tool call. Unknown tools and
// validation failures come back as classified failures the model can
// react to.
func (a *Agent) executeTool(ctx context.Context, call llm.ToolCall) tools.ToolResult {
	tool, exists := a.registry.Get(call.Name)
	if !exists {
		return tools.FailureResultf(tools.KindInvalidArgs, "unknown tool: %s", call.Name)
	}

	if err := tool.Validate(call.Arguments); err != nil {
		return tools.FailureResultf(tools.KindInvalidArgs, "%v", err)
	}

	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		return tools.FailureResult(err)
	}
	return result
}

// terminateWithError converts a model invocation error into a
// user-facing assistant message and records it in ErrorInfo. Model
// errors are terminal, never looped.
func (a *Agent) terminateWithError(state *session.State, err error) string {
	slog.Error("model call failed",
		"agent", a.config.Name,
		"session", state.User.SessionID,
		"error", err)

	apology := fmt.Sprintf(
		"I encountered an error while processing your request: %v. Please try again or rephrase your request.", err)

	state.Apply(session.Update{
		Messages: []llm.ChatMessage{llm.AssistantMessage(apology)},
		ErrorInfo: &session.ErrorInfo{
			Message:   err.Error(),
			Kind:      string(tools.KindAgentError),
			Timestamp: time.Now(),
		},
	})

	a.phase = PhaseTerminated
	return apology
}

// persist saves the conversation when a store is configured.
func (a *Agent) persist(ctx context.Context, state *session.State) {
	if a.store == nil || state.User.SessionID == "" {
		return
	}
	if err := a.store.Save(ctx, state.User.SessionID, state.Messages); err != nil {
		slog.Warn("conversation save failed",
			"session", state.User.SessionID,
			"error", err)
	}
}

// digestArgs shortens tool arguments for the session's tool record.
func digestArgs(args json.RawMessage) string {
	const max = 120
	s := string(args)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// toolDefinitions converts registry metadata into the JSON-schema tool
// definitions providers expect.
func toolDefinitions(registry *tools.Registry) []llm.ToolDefinition {
	var defs []llm.ToolDefinition
	for _, meta := range registry.List() {
		properties := make(map[string]interface{})
		var required []string
		for _, p := range meta.Parameters {
			properties[p.Name] = map[string]interface{}{
				"type":        p.ParamType,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}

		defs = append(defs, llm.ToolDefinition{
			Name:        meta.Name,
			Description: meta.Description,
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		})
	}
	return defs
}
