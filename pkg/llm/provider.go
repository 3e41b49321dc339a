package llm

import (
	"context"
)

// Message is a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider defines the contract for any LLM backend. The planning agents
// never talk to a vendor API directly; they only see this interface.
type Provider interface {
	// Name identifies the provider and its default model (e.g. "openai/gpt-4o-mini"),
	// used for response metadata that reports which models contributed.
	Name() string

	// Chat sends a chat history to the model and returns the raw response text
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a system prompt + user prompt pair (convenience method)
	Generate(ctx context.Context, system, prompt string, options ...Option) (string, error)
}
