package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	Model            string // Override default model

	// Web-search controls, ignored by providers without search
	SearchDomains []string
	Recency       string // "hour", "day", "week", "month"

	// ResponseSchema requests structured JSON output when non-nil
	ResponseSchema map[string]interface{}
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

func WithTopP(p float64) Option {
	return func(o *Options) {
		o.TopP = p
	}
}

func WithFrequencyPenalty(p float64) Option {
	return func(o *Options) {
		o.FrequencyPenalty = p
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSearchDomains(domains ...string) Option {
	return func(o *Options) {
		o.SearchDomains = domains
	}
}

func WithRecency(recency string) Option {
	return func(o *Options) {
		o.Recency = recency
	}
}

func WithResponseSchema(schema map[string]interface{}) Option {
	return func(o *Options) {
		o.ResponseSchema = schema
	}
}

// SearchResult is a titled web source a search-backed model consulted.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date,omitempty"`
}

// Completion is the answer of a search-backed model together with its sources.
type Completion struct {
	Model         string
	Content       string
	Citations     []string
	SearchResults []SearchResult
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// SearchProvider is an LLM backend that grounds its answers in web search
// and reports the sources it used.
type SearchProvider interface {
	LLMProvider

	Search(ctx context.Context, history []Message, options ...Option) (*Completion, error)
}
