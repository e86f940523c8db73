// Package modeladapter defines the interfaces and shared plumbing for talking
// to a hosted language-model service.
//
// It contains:
//   - [Completer], [KeywordChatter] and [Embedder], the three call shapes the pipeline uses
//   - [Params] with the documented sampling defaults
//   - the embeddable [ModelAdapter] base struct with HTTP helpers, auth, custom headers and usage tracking
//   - [github.com/germanamz/docpipe/pkg/modeladapter/usage]: thread-safe token usage tracker
//
// This package contains no provider-specific code; concrete adapters live in
// separate packages that import modeladapter.
package modeladapter
