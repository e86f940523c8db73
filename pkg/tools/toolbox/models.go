package toolbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/germanamz/docpipe/pkg/document"
	"github.com/germanamz/docpipe/pkg/pipeline"
	"github.com/germanamz/docpipe/pkg/templates"
)

// ModelTools returns one tool per model registered in p. A tool's input
// schema lists the fields its prompt template needs; its result is the
// enriched document as JSON. store resolves the templates; models without a
// loadable template accept any object.
func ModelTools(p *pipeline.Pipeline, store *templates.Store) ([]Tool, error) {
	entries := p.Registry().List()
	tools := make([]Tool, 0, len(entries))

	for _, e := range entries {
		schema := map[string]any{"type": "object"}
		if e.Template != "" && store != nil {
			if r := store.Load(e.Template); r != nil {
				schema = r.InputSchema()
			}
		}

		raw, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("toolbox: schema for %s: %w", e.Name, err)
		}

		tools = append(tools, Tool{
			Name:        e.Name,
			Description: e.Description,
			InputSchema: raw,
			Handler:     modelHandler(p, e.Name, schema),
		})
	}

	return tools, nil
}

func modelHandler(p *pipeline.Pipeline, name string, schema map[string]any) Handler {
	return func(ctx context.Context, input json.RawMessage) (string, error) {
		var doc document.Document
		if err := json.Unmarshal(input, &doc); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if err := document.Validate(schema, doc); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		out, err := json.Marshal(p.Run(ctx, name, doc))
		if err != nil {
			return "", fmt.Errorf("toolbox: encode %s result: %w", name, err)
		}

		return string(out), nil
	}
}
