package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Sentinel errors for completion backends.
var (
	// ErrNoAPIKey indicates that the hosted backend was requested without a
	// credential. Callers should fall back to the mock completer.
	ErrNoAPIKey = errors.New("llm: api key required for hosted completer")
)

// Completer is the strategy interface for a text generation backend. A
// Completer receives one prompt and returns one completion, no streaming.
// Implementations must be safe for concurrent use; one Completer is shared by
// every request in the process.
type Completer interface {
	// Complete generates a single text completion for the prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend for health reporting.
	Name() string
}

// MockCompleter is a deterministic stub backend for tests and offline
// deployments. It echoes a fixed response, optionally with a canned entity
// block, regardless of the prompt.
type MockCompleter struct {
	// Response overrides the default canned text when non-empty.
	Response string

	// Err, when set, is returned by every call. Used to exercise the
	// degraded-generation path in tests.
	Err error
}

// defaultMockResponse is returned by the zero-value MockCompleter.
const defaultMockResponse = "This is a mock response from the LLM. Your prompt has been processed successfully."

// Complete returns the configured response or error.
func (m *MockCompleter) Complete(_ context.Context, _ string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return defaultMockResponse, nil
}

// Name identifies the mock backend.
func (m *MockCompleter) Name() string {
	return "mock"
}

// defaultTemperature keeps hosted completions focused; answers are grounded in
// the supplied graph context rather than sampled broadly.
const defaultTemperature = 0.3

// OpenAICompleter is the hosted backend, speaking the OpenAI-compatible chat
// completion API through langchaingo.
type OpenAICompleter struct {
	client *openai.LLM
	model  string
}

// NewOpenAICompleter builds the hosted backend. Returns ErrNoAPIKey when the
// credential is empty; model defaults to gpt-4o-mini.
func NewOpenAICompleter(apiKey, model string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	return &OpenAICompleter{client: client, model: model}, nil
}

// Complete sends the prompt and returns the single completion text.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.client, prompt,
		llms.WithTemperature(defaultTemperature),
	)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	return out, nil
}

// Name identifies the hosted backend and its model.
func (c *OpenAICompleter) Name() string {
	return "openai/" + c.model
}

// SelectCompleter picks the backend from configuration, once at process
// start: a non-empty credential selects the hosted backend, otherwise the
// deterministic mock is used.
func SelectCompleter(apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return &MockCompleter{}, nil
	}
	return NewOpenAICompleter(apiKey, model)
}
