package modeladapter

import (
	"context"
	"time"
)

// Params are the sampling parameters of a text completion. They are created
// fresh for every call.
type Params struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	Timeout          time.Duration
}

// DefaultParams returns the defaults for free-text completions.
func DefaultParams() Params {
	return Params{
		Temperature: 0.95,
		MaxTokens:   512,
		TopP:        1,
		Timeout:     20 * time.Second,
	}
}

// RecordParams returns the defaults for completions that are parsed into a
// record: slightly cooler and shorter than DefaultParams.
func RecordParams() Params {
	p := DefaultParams()
	p.Temperature = 0.90
	p.MaxTokens = 256
	return p
}

// TextRequest is a text-completion call.
type TextRequest struct {
	APIKey string // Overrides the adapter's key when set.
	Prompt string
	Params Params
}

// ChatRequest asks for keyphrases describing a document fragment.
type ChatRequest struct {
	APIKey   string
	Fragment string
}

// EmbedRequest asks for the embedding vector of some content.
type EmbedRequest struct {
	APIKey  string
	Content string
}

// Completer runs a text completion and returns the first candidate's text.
type Completer interface {
	Complete(ctx context.Context, req TextRequest) (string, error)
}

// KeywordChatter runs the keyphrase chat exchange and returns the assistant's
// raw reply.
type KeywordChatter interface {
	ChatKeywords(ctx context.Context, req ChatRequest) (string, error)
}

// Embedder returns the embedding vector for some content.
type Embedder interface {
	Embed(ctx context.Context, req EmbedRequest) ([]float64, error)
}
