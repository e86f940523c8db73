package chat

import (
	"testing"

	"github.com/germanamz/docpipe/pkg/chats/role"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	c := New(
		NewMessage(role.System, "be brief"),
		NewMessage(role.User, "hello"),
	)

	msgs := c.Messages()

	assert.Len(t, msgs, 2)
	assert.Equal(t, role.System, msgs[0].Role)
	assert.Equal(t, "hello", msgs[1].Content)
}

func TestNewEmpty(t *testing.T) {
	assert.Empty(t, New().Messages())
}

func TestMessagesReturnsCopy(t *testing.T) {
	c := New(NewMessage(role.User, "original"))

	msgs := c.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, "original", c.Messages()[0].Content)
}
