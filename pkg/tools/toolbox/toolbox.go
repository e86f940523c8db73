// Package toolbox collects tools by name and builds the tool set that runs
// document models.
package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrToolNotFound is returned by Call for an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidInput is returned when the input does not match the tool's schema.
	ErrInvalidInput = errors.New("invalid input")
)

// ToolBox is a name-keyed collection of tools.
type ToolBox struct {
	tools map[string]Tool
}

// New creates a ToolBox holding tools.
func New(tools ...Tool) *ToolBox {
	tb := &ToolBox{tools: make(map[string]Tool, len(tools))}
	tb.Register(tools...)
	return tb
}

// Register adds tools. A tool replaces any earlier one with the same name.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name and a boolean indicating whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Tools returns all registered tools sorted by name.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Call runs the named tool with input. A nil input is treated as an empty
// object.
func (tb *ToolBox) Call(ctx context.Context, name string, input json.RawMessage) (string, error) {
	t, ok := tb.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	return t.Handler(ctx, input)
}
