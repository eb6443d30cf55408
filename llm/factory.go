// Provider selection and construction.
//
// The CLI resolves a provider name ("openai", "claude", ...) to a
// ProviderType, then configures it through the builder with the model,
// token and temperature settings loaded from the environment:
//
//	provider, err := providerType.
//	    Model(settings.LLM.Model).
//	    MaxTokens(settings.LLM.MaxTokens).
//	    Temperature(float32(settings.LLM.Temperature)).
//	    APIKey(apiKey)
//
// For quick scripts FromEnv builds a provider with defaults, reading the
// API key from the provider's environment variable.

package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderType identifies a supported LLM backend.
type ProviderType int

const (
	// ProviderOpenAI serves GPT models.
	ProviderOpenAI ProviderType = iota
	// ProviderAnthropic serves Claude models.
	ProviderAnthropic
	// ProviderDeepSeek serves DeepSeek models over the OpenAI-compatible API.
	ProviderDeepSeek
	// ProviderGemini serves Google Gemini models.
	ProviderGemini
)

// String returns the canonical provider name.
func (p ProviderType) String() string {
	switch p {
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderDeepSeek:
		return "deepseek"
	case ProviderGemini:
		return "gemini"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable holding this provider's API key.
func (p ProviderType) EnvVar() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// DefaultModel returns the model used when none is configured.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderOpenAI:
		return ModelOpenAIGPT52
	case ProviderAnthropic:
		return ModelAnthropicClaudeOpus45
	case ProviderDeepSeek:
		return ModelDeepSeekV32
	case ProviderGemini:
		return ModelGeminiFlash3
	default:
		return ""
	}
}

// ParseProviderType resolves a provider name, accepting the common
// aliases ("gpt", "claude", "google"). Case-insensitive.
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(s) {
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// FromEnv builds a provider with defaults, reading the API key from the
// environment.
func (p ProviderType) FromEnv() (Provider, error) {
	return NewProviderBuilder(p).FromEnv()
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey builds a provider with an explicit key and defaults for
// everything else.
func (p ProviderType) APIKey(key string) (Provider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder accumulates provider configuration before construction.
type ProviderBuilder struct {
	providerType ProviderType
	model        string
	maxTokens    uint32
	temperature  *float32
}

// NewProviderBuilder creates a builder for the given provider.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{
		providerType: providerType,
	}
}

// Model sets the model identifier.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.model = model
	return b
}

// MaxTokens sets the response token ceiling.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets the sampling temperature.
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// FromEnv builds the provider, reading the API key from the environment.
func (b *ProviderBuilder) FromEnv() (Provider, error) {
	envVar := b.providerType.EnvVar()
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %s environment variable not set", b.providerType, envVar)
	}
	return b.build(apiKey)
}

// APIKey builds the provider with an explicit API key.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	return b.build(key)
}

func (b *ProviderBuilder) build(apiKey string) (Provider, error) {
	model := b.model
	if model == "" {
		model = b.providerType.DefaultModel()
	}

	maxTokens := b.maxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	temperature := float32(0.7)
	if b.temperature != nil {
		temperature = *b.temperature
	}

	switch b.providerType {
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderDeepSeek:
		return NewDeepSeekProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
}

// Model identifiers. The defaults favor tool-calling quality; the
// smaller entries are cheap options for iterating on page edits.
const (
	// ModelOpenAIGPT52 is the default OpenAI model.
	ModelOpenAIGPT52 = "gpt-5.2"
	// ModelOpenAIGPT4oMini is a low-cost OpenAI model.
	ModelOpenAIGPT4oMini = "gpt-4o-mini"

	// ModelAnthropicClaudeOpus45 is the default Anthropic model.
	ModelAnthropicClaudeOpus45 = "claude-opus-4-5-20251101"
	// ModelAnthropicClaudeHaiku4 is a fast, low-cost Anthropic model.
	ModelAnthropicClaudeHaiku4 = "claude-haiku-4-20250514"

	// ModelDeepSeekV32 is the default DeepSeek model.
	ModelDeepSeekV32 = "deepseek-v3.2"

	// ModelGeminiFlash3 is the default Gemini model.
	ModelGeminiFlash3 = "gemini-3-flash"
	// ModelGeminiPro3 is the larger Gemini model.
	ModelGeminiPro3 = "gemini-3-pro"
)
