package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/germanamz/docpipe/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpenAI answers the three endpoints with canned bodies.
func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/completions":
			_, _ = io.WriteString(w, `{"choices":[{"text":"\"title\": \"Atomic Habits Review\"}"}],"usage":{"prompt_tokens":12,"completion_tokens":5}}`)
		case "/v1/chat/completions":
			_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"\"habit\", \"cue\"]"}}]}`)
		case "/v1/embeddings":
			_, _ = io.WriteString(w, `{"data":[{"embedding":[0.5,0.25]}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func testApp(t *testing.T, cfg config.Config) *app {
	t.Helper()

	a, err := wire(cfg, io.Discard)
	require.NoError(t, err)

	return a
}

func TestWireRejectsInvalidConfig(t *testing.T) {
	_, err := wire(config.Config{BaseURL: "ftp://nope"}, io.Discard)
	require.Error(t, err)
}

func TestRunModel(t *testing.T) {
	srv := fakeOpenAI(t)
	a := testApp(t, config.Config{Token: "sk-test", BaseURL: srv.URL})

	var out bytes.Buffer
	err := a.runModel(context.Background(), "get_title", strings.NewReader(`{"content":"Atomic Habits review text..."}`), &out)

	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"Atomic Habits review text...","title":"Atomic Habits Review"}`, out.String())
}

func TestLogUsage(t *testing.T) {
	srv := fakeOpenAI(t)

	var logs bytes.Buffer
	a, err := wire(config.Config{Token: "sk-test", BaseURL: srv.URL}, &logs)
	require.NoError(t, err)

	a.logUsage()
	assert.NotContains(t, logs.String(), "docpipe.usage")

	for range 2 {
		err := a.runModel(context.Background(), "get_title", strings.NewReader(`{"content":"x"}`), io.Discard)
		require.NoError(t, err)
	}

	a.logUsage()

	out := logs.String()
	assert.Contains(t, out, "msg=docpipe.usage mode=completion prompt_tokens=24 completion_tokens=10 total_tokens=34")
	assert.Contains(t, out, "msg=docpipe.usage.total calls=2 total_tokens=34")
	assert.NotContains(t, out, "mode=chat")
}

func TestRunModelBadInput(t *testing.T) {
	a := testApp(t, config.Config{Token: "sk-test", BaseURL: "http://localhost"})

	err := a.runModel(context.Background(), "get_title", strings.NewReader(`nope`), io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode document")
}

func TestListModels(t *testing.T) {
	a := testApp(t, config.Config{BaseURL: "http://localhost"})

	var out bytes.Buffer
	require.NoError(t, a.listModels(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "answer_question"))
}

func TestKeyterms(t *testing.T) {
	srv := fakeOpenAI(t)
	a := testApp(t, config.Config{Token: "sk-test", BaseURL: srv.URL, Model: "gpt-4"})

	var out bytes.Buffer
	require.NoError(t, a.keyterms(context.Background(), strings.NewReader("habit loops\n"), &out))

	var terms []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &terms))
	assert.Equal(t, []string{"habit", "cue"}, terms)
}

func TestKeytermsNeedsModelAndToken(t *testing.T) {
	a := testApp(t, config.Config{Token: "sk-test", BaseURL: "http://localhost"})
	require.Error(t, a.keyterms(context.Background(), strings.NewReader("x"), io.Discard))

	a = testApp(t, config.Config{Model: "gpt-4", BaseURL: "http://localhost"})
	require.ErrorIs(t, a.keyterms(context.Background(), strings.NewReader("x"), io.Discard), errNoToken)
}

func TestEmbed(t *testing.T) {
	srv := fakeOpenAI(t)
	a := testApp(t, config.Config{Token: "sk-test", BaseURL: srv.URL})

	var out bytes.Buffer
	require.NoError(t, a.embed(context.Background(), strings.NewReader("text"), &out))

	var vec []float64
	require.NoError(t, json.Unmarshal(out.Bytes(), &vec))
	assert.Equal(t, []float64{0.5, 0.25}, vec)
}

func TestLoadDotEnvMissing(t *testing.T) {
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCPIPE_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Setenv("DOCPIPE_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("DOCPIPE_TEST_VALUE"))

	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "from-dotenv", os.Getenv("DOCPIPE_TEST_VALUE"))
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.yaml", resolveConfigPath("explicit.yaml"))

	t.Chdir(t.TempDir())
	assert.Empty(t, resolveConfigPath(""))

	require.NoError(t, os.WriteFile(defaultConfigFile, []byte("model: gpt-4\n"), 0o600))
	assert.Equal(t, defaultConfigFile, resolveConfigPath(""))
}

func TestOpenInput(t *testing.T) {
	r, closeIn, err := openInput("-")
	require.NoError(t, err)
	assert.Equal(t, os.Stdin, r)
	closeIn()

	_, _, err = openInput(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
