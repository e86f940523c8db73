// Package openai implements the modeladapter call shapes against the OpenAI
// HTTP API (or any service exposing the same endpoints).
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/germanamz/docpipe/pkg/chats/chat"
	"github.com/germanamz/docpipe/pkg/chats/role"
	"github.com/germanamz/docpipe/pkg/modeladapter"
	"github.com/germanamz/docpipe/pkg/modeladapter/usage"
	"github.com/google/uuid"
)

const (
	completionsPath     = "/v1/completions"
	chatCompletionsPath = "/v1/chat/completions"
	embeddingsPath      = "/v1/embeddings"

	// DefaultBaseURL is the public OpenAI endpoint (no trailing slash).
	DefaultBaseURL = "https://api.openai.com"
	// DefaultCompletionModel serves text completions.
	DefaultCompletionModel = "gpt-3.5-turbo-instruct"
	// DefaultEmbeddingModel serves embeddings.
	DefaultEmbeddingModel = "text-embedding-3-small"
)

const keywordInstruction = "You complete lists of keyterms from a fragment of a document. " +
	"Never use numbers or URLs as keyterms. " +
	"Skip stopwords and words that are not relevant to the document."

var (
	_ modeladapter.Completer      = (*Adapter)(nil)
	_ modeladapter.KeywordChatter = (*Adapter)(nil)
	_ modeladapter.Embedder       = (*Adapter)(nil)
)

// Adapter talks to the OpenAI API.
type Adapter struct {
	modeladapter.ModelAdapter

	ChatModel       string // Model for ChatKeywords.
	CompletionModel string // Model for Complete.
	EmbeddingModel  string // Model for Embed.
	Log             *slog.Logger
}

// New creates an Adapter. An empty baseURL selects DefaultBaseURL; chatModel
// is the model used for chat completions.
func New(baseURL, apiKey, chatModel string) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	a := &Adapter{
		ChatModel:       chatModel,
		CompletionModel: DefaultCompletionModel,
		EmbeddingModel:  DefaultEmbeddingModel,
	}
	a.BaseURL = strings.TrimRight(baseURL, "/")
	a.Auth = modeladapter.Auth{Key: apiKey}

	return a
}

func (a *Adapter) logger() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}

// Complete runs a text completion and returns the first choice's text. The
// call is bounded by req.Params.Timeout when it is positive.
func (a *Adapter) Complete(ctx context.Context, req modeladapter.TextRequest) (string, error) {
	if req.Params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Params.Timeout)
		defer cancel()
	}

	body := completionRequest{
		Model:            a.CompletionModel,
		Prompt:           req.Prompt,
		Temperature:      req.Params.Temperature,
		MaxTokens:        req.Params.MaxTokens,
		TopP:             req.Params.TopP,
		FrequencyPenalty: req.Params.FrequencyPenalty,
		PresencePenalty:  req.Params.PresencePenalty,
	}

	var resp completionResponse
	err := a.call(ctx, "complete", usage.Completion, a.CompletionModel, completionsPath, req.APIKey, body, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}

	return resp.Choices[0].Text, nil
}

// ChatKeywords asks the chat model for a list of ten keyterms describing
// req.Fragment and returns the assistant's raw reply.
func (a *Adapter) ChatKeywords(ctx context.Context, req modeladapter.ChatRequest) (string, error) {
	c := chat.New(
		chat.NewMessage(role.System, keywordInstruction),
		chat.NewMessage(role.User, "fragment: '''"+req.Fragment+"'''\n"+
			"# list ten (10) keyterms for a back of book index\n"+
			"keyterms = ["),
	)

	body := chatRequest{Model: a.ChatModel}
	for _, m := range c.Messages() {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role.String(), Content: m.Content})
	}

	var resp chatResponse
	if err := a.call(ctx, "chat", usage.Chat, a.ChatModel, chatCompletionsPath, req.APIKey, body, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector of req.Content. Characters outside the
// ASCII range are dropped before the call.
func (a *Adapter) Embed(ctx context.Context, req modeladapter.EmbedRequest) ([]float64, error) {
	body := embeddingRequest{
		Model: a.EmbeddingModel,
		Input: ASCII(req.Content),
	}

	var resp embeddingResponse
	if err := a.call(ctx, "embed", usage.Embedding, a.EmbeddingModel, embeddingsPath, req.APIKey, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai: empty data in embedding response")
	}

	return resp.Data[0].Embedding, nil
}

// call posts body to path, logging the round trip under a fresh request id,
// and records the token usage the service reported.
func (a *Adapter) call(ctx context.Context, op string, mode usage.Mode, model, path, apiKey string, body any, dest tokenReporter) error {
	log := a.logger()
	rid := uuid.New().String()
	start := time.Now()

	log.DebugContext(ctx, "openai."+op+".start", "req_id", rid, "model", model)

	if err := a.PostJSON(ctx, path, apiKey, body, dest); err != nil {
		log.ErrorContext(ctx, "openai."+op+".error",
			"req_id", rid,
			"model", model,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("openai: %w", err)
	}

	tc := dest.tokens().count(mode)
	a.Usage.Add(tc)

	log.DebugContext(ctx, "openai."+op+".ok",
		"req_id", rid,
		"model", model,
		"prompt_tokens", tc.PromptTokens,
		"completion_tokens", tc.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// ASCII drops every rune outside the ASCII range.
func ASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 127 {
			return -1
		}
		return r
	}, s)
}
