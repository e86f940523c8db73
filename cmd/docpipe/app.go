package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/germanamz/docpipe/pkg/config"
	"github.com/germanamz/docpipe/pkg/document"
	"github.com/germanamz/docpipe/pkg/httpapi"
	"github.com/germanamz/docpipe/pkg/modeladapter"
	"github.com/germanamz/docpipe/pkg/modeladapter/usage"
	"github.com/germanamz/docpipe/pkg/models"
	"github.com/germanamz/docpipe/pkg/pipeline"
	"github.com/germanamz/docpipe/pkg/providers/openai"
	"github.com/germanamz/docpipe/pkg/record"
	"github.com/germanamz/docpipe/pkg/templates"
	"github.com/germanamz/docpipe/pkg/tools/mcpserver"
	"github.com/germanamz/docpipe/pkg/tools/toolbox"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	configPath string
	envFile    string
}

// app holds the wired components shared by the commands.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	adapter  *openai.Adapter
	store    *templates.Store
	pipeline *pipeline.Pipeline
}

func newApp(o options) (*app, error) {
	if err := loadDotEnv(o.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(resolveConfigPath(o.configPath))
	if err != nil {
		return nil, err
	}

	return wire(cfg, os.Stderr)
}

// wire builds the components from cfg, logging to logOut.
func wire(cfg config.Config, logOut io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := newLogger(logOut, cfg.Debug())

	adapter := openai.New(cfg.BaseURL, cfg.Token, cfg.Model)
	adapter.Log = log
	if cfg.CompletionModel != "" {
		adapter.CompletionModel = cfg.CompletionModel
	}
	if cfg.EmbeddingModel != "" {
		adapter.EmbeddingModel = cfg.EmbeddingModel
	}

	store := templates.NewStore(cfg.TemplatesDir, log)
	reg := models.Defaults(models.Kit{
		Templates: store,
		Completer: adapter,
		Log:       log,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		adapter:  adapter,
		store:    store,
		pipeline: pipeline.New(cfg, reg, log),
	}, nil
}

// logUsage logs the tokens consumed so far, per call mode.
func (a *app) logUsage() {
	tr := a.adapter.UsageTracker()
	if tr.Count() == 0 {
		return
	}

	by := tr.ByMode()
	for _, mode := range []usage.Mode{usage.Completion, usage.Chat, usage.Embedding} {
		tc, ok := by[mode]
		if !ok {
			continue
		}
		a.log.Info("docpipe.usage",
			"mode", string(mode),
			"prompt_tokens", tc.PromptTokens,
			"completion_tokens", tc.CompletionTokens,
			"total_tokens", tc.Total(),
		)
	}
	a.log.Info("docpipe.usage.total", "calls", tr.Count(), "total_tokens", tr.Total().Total())
}

func (a *app) tools() (*toolbox.ToolBox, error) {
	tools, err := toolbox.ModelTools(a.pipeline, a.store)
	if err != nil {
		return nil, err
	}
	return toolbox.New(tools...), nil
}

func (a *app) runModel(ctx context.Context, model string, in io.Reader, out io.Writer) error {
	var doc document.Document
	if err := json.NewDecoder(in).Decode(&doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	return writeJSON(out, a.pipeline.Run(ctx, model, doc))
}

func (a *app) listModels(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range a.pipeline.Registry().List() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Template, e.Description)
	}
	return w.Flush()
}

func (a *app) keyterms(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := a.cfg.RequireChat(); err != nil {
		return err
	}
	if a.cfg.Token == "" {
		return errNoToken
	}

	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	raw, err := a.adapter.ChatKeywords(ctx, modeladapter.ChatRequest{Fragment: strings.TrimSpace(string(text))})
	if err != nil {
		return err
	}

	terms, err := record.ParseList(raw)
	if err != nil {
		return fmt.Errorf("parse keyterms %q: %w", raw, err)
	}

	return writeJSON(out, terms)
}

func (a *app) embed(ctx context.Context, in io.Reader, out io.Writer) error {
	if a.cfg.Token == "" {
		return errNoToken
	}

	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	vec, err := a.adapter.Embed(ctx, modeladapter.EmbedRequest{Content: string(text)})
	if err != nil {
		return err
	}

	return writeJSON(out, vec)
}

func (a *app) serveMCP(ctx context.Context, in io.Reader, out io.Writer) error {
	tb, err := a.tools()
	if err != nil {
		return err
	}

	defer a.logUsage()

	srv := mcpserver.New("docpipe", version, a.log)
	srv.Register(tb.Tools()...)

	err = srv.Serve(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) serveHTTP(ctx context.Context) error {
	tb, err := a.tools()
	if err != nil {
		return err
	}

	defer a.logUsage()

	if !a.cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           httpapi.NewRouter(tb, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("httpapi.listening", "addr", a.cfg.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
