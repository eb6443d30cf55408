// Agent configuration types.
//
// Information Hiding:
// - Default values hidden

package agent

// Config holds agent configuration.
type Config struct {
	// Name identifies the agent in logs.
	Name string

	// SystemPrompt guides the agent's behavior. Prefixed to the wire
	// conversation exactly once per model call, never persisted in
	// session state.
	SystemPrompt string

	// MaxIterations bounds the number of model calls in a single turn.
	MaxIterations int
}

// DefaultConfig returns a basic agent configuration.
func DefaultConfig() Config {
	return Config{
		Name:          "webwright",
		SystemPrompt:  "You are a helpful assistant that builds and edits websites using the available tools.",
		MaxIterations: 10,
	}
}
