package toolbox

import (
	"context"
	"encoding/json"
)

// Handler executes a tool with the given JSON input and returns a text result.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool is a named, self-describing operation.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage // JSON Schema of the input object.
	Handler     Handler
}
