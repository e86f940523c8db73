package openai

import "github.com/germanamz/docpipe/pkg/modeladapter/usage"

// --- request types ---

type completionRequest struct {
	Model            string  `json:"model"`
	Prompt           string  `json:"prompt"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens,omitempty"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// --- response types ---

type completionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage apiUsage `json:"usage"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage apiUsage `json:"usage"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage apiUsage `json:"usage"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

func (u apiUsage) count(mode usage.Mode) usage.TokenCount {
	return usage.TokenCount{
		Mode:             mode,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
	}
}

// tokenReporter is implemented by every response type.
type tokenReporter interface {
	tokens() apiUsage
}

func (r *completionResponse) tokens() apiUsage { return r.Usage }
func (r *chatResponse) tokens() apiUsage { return r.Usage }
func (r *embeddingResponse) tokens() apiUsage { return r.Usage }
