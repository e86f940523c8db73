// Package providers groups the concrete model-service adapters.
//
//   - [github.com/germanamz/docpipe/pkg/providers/openai]: OpenAI-compatible completions, chat completions and embeddings
//
// Adapters embed [github.com/germanamz/docpipe/pkg/modeladapter.ModelAdapter]
// and implement its call-shape interfaces.
package providers
