// Package chats provides the small, provider-agnostic chat model used for
// chat-mode completions.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/docpipe/pkg/chats/role]: conversation roles (system, user, assistant)
//   - [github.com/germanamz/docpipe/pkg/chats/chat]: text messages and the conversation that holds them
//
// No provider or API code is included; adapters convert a chat into their own
// wire format.
package chats
