package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/germanamz/docpipe/pkg/config"
	"github.com/germanamz/docpipe/pkg/modeladapter"
	"github.com/germanamz/docpipe/pkg/models"
	"github.com/germanamz/docpipe/pkg/pipeline"
	"github.com/germanamz/docpipe/pkg/templates"
	"github.com/germanamz/docpipe/pkg/tools/toolbox"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct{ text string }

func (s stubCompleter) Complete(context.Context, modeladapter.TextRequest) (string, error) {
	return s.text, nil
}

func newTestRouter(t *testing.T, text string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := templates.NewStore("", nil)
	reg := models.Defaults(models.Kit{Templates: store, Completer: stubCompleter{text: text}})

	tools, err := toolbox.ModelTools(pipeline.New(config.Config{Token: "sk-test"}, reg, nil), store)
	require.NoError(t, err)

	return NewRouter(toolbox.New(tools...), nil)
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestListModels(t *testing.T) {
	router := newTestRouter(t, "")

	w := do(router, http.MethodGet, "/api/v1/models", "")

	require.Equal(t, http.StatusOK, w.Code)

	var got []ModelInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 5)
	assert.Equal(t, models.AnswerQuestion, got[0].Name)
	assert.Contains(t, string(got[0].InputSchema), "question")
}

func TestRunModel(t *testing.T) {
	router := newTestRouter(t, `"title": "Atomic Habits Review"}`)

	w := do(router, http.MethodPost, "/api/v1/models/get_title", `{"content":"Atomic Habits review text..."}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"content":"Atomic Habits review text...","title":"Atomic Habits Review"}`, w.Body.String())
}

func TestRunModelDegraded(t *testing.T) {
	router := newTestRouter(t, "not valid")

	w := do(router, http.MethodPost, "/api/v1/models/get_title", `{"content":"x"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc["error"], "Call to OpenAI completion failed")
	assert.NotContains(t, doc, "title")
}

func TestRunModelUnknown(t *testing.T) {
	router := newTestRouter(t, "")

	w := do(router, http.MethodPost, "/api/v1/models/nope", `{}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "tool not found")
}

func TestRunModelInvalidInput(t *testing.T) {
	router := newTestRouter(t, "")

	for _, body := range []string{`{"text":"missing content"}`, `not json`} {
		w := do(router, http.MethodPost, "/api/v1/models/get_title", body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "invalid input", body)
	}
}

func TestRunModelBodyTooLarge(t *testing.T) {
	router := newTestRouter(t, `"title": "T"}`)

	body := `{"content":"` + strings.Repeat("a", maxBody) + `"}`
	w := do(router, http.MethodPost, "/api/v1/models/get_title", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds")
}

func TestRunModelBodyNearLimit(t *testing.T) {
	router := newTestRouter(t, `"title": "T"}`)

	body := `{"content":"` + strings.Repeat("a", maxBody-20) + `"}`
	w := do(router, http.MethodPost, "/api/v1/models/get_title", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"T"`)
}
