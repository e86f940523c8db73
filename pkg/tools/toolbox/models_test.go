package toolbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/germanamz/docpipe/pkg/config"
	"github.com/germanamz/docpipe/pkg/document"
	"github.com/germanamz/docpipe/pkg/modeladapter"
	"github.com/germanamz/docpipe/pkg/models"
	"github.com/germanamz/docpipe/pkg/pipeline"
	"github.com/germanamz/docpipe/pkg/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct{ text string }

func (s stubCompleter) Complete(context.Context, modeladapter.TextRequest) (string, error) {
	return s.text, nil
}

func modelBox(t *testing.T, text string) *ToolBox {
	t.Helper()

	store := templates.NewStore("", nil)
	reg := models.Defaults(models.Kit{Templates: store, Completer: stubCompleter{text: text}})
	p := pipeline.New(config.Config{Token: "sk-test"}, reg, nil)

	tools, err := ModelTools(p, store)
	require.NoError(t, err)

	return New(tools...)
}

func TestModelToolsSchemas(t *testing.T) {
	tb := modelBox(t, "")

	tools := tb.Tools()
	require.Len(t, tools, 5)

	title, ok := tb.Get(models.Title)
	require.True(t, ok)
	assert.NotEmpty(t, title.Description)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(title.InputSchema, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"content"}, schema["required"])
}

func TestModelToolRunsPipeline(t *testing.T) {
	tb := modelBox(t, `"title": "Atomic Habits Review"}`)

	out, err := tb.Call(context.Background(), models.Title, json.RawMessage(`{"content":"review"}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"review","title":"Atomic Habits Review"}`, out)
}

func TestModelToolRejectsInvalidInput(t *testing.T) {
	tb := modelBox(t, `"title": "x"}`)

	_, err := tb.Call(context.Background(), models.Title, json.RawMessage(`{"text":"wrong"}`))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = tb.Call(context.Background(), models.Title, json.RawMessage(`[1,2]`))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestModelToolWithoutTemplate(t *testing.T) {
	reg := models.NewRegistry(models.Entry{
		Name:        "mark",
		Description: "Marks documents.",
		Handler: func(_ context.Context, doc document.Document) error {
			doc["marked"] = true
			return nil
		},
	})
	p := pipeline.New(config.Config{Token: "sk-test"}, reg, nil)

	tools, err := ModelTools(p, nil)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.JSONEq(t, `{"type":"object"}`, string(tools[0].InputSchema))

	out, err := New(tools...).Call(context.Background(), "mark", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"marked":true}`, out)
}
