// Package chat provides text messages and a conversation container for chat
// completions.
package chat

import "github.com/germanamz/docpipe/pkg/chats/role"

// Message is a single text message in a conversation.
type Message struct {
	Role    role.Role
	Content string
}

// NewMessage creates a Message.
func NewMessage(r role.Role, content string) Message {
	return Message{Role: r, Content: content}
}

// Chat is an ordered list of messages.
type Chat struct {
	messages []Message
}

// New creates a Chat holding the given messages.
func New(msgs ...Message) *Chat {
	return &Chat{messages: msgs}
}

// Messages returns a copy of all messages in the conversation.
func (c *Chat) Messages() []Message {
	cp := make([]Message, len(c.messages))
	copy(cp, c.messages)
	return cp
}
