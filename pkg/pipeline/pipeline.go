// Package pipeline is the single entry point that runs a named model over a
// document. Run never fails: every failure is reported through the document's
// error fields.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/germanamz/docpipe/pkg/config"
	"github.com/germanamz/docpipe/pkg/document"
	"github.com/germanamz/docpipe/pkg/models"
	"github.com/google/uuid"
)

// Explanations set alongside the error field.
const (
	ExplainNoToken = "I encountered an error talking with OpenAI."
	ExplainHandler = "I encountered an error talking with my AI handler."
)

// PanicError wraps a panic recovered from a handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Pipeline dispatches documents to registered models. It is safe for
// concurrent use.
type Pipeline struct {
	token string
	debug bool
	reg   *models.Registry
	log   *slog.Logger
}

// New creates a Pipeline. The credential and the debug flag are taken from
// cfg; a nil log uses slog.Default.
func New(cfg config.Config, reg *models.Registry, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		token: cfg.Token,
		debug: cfg.Debug(),
		reg:   reg,
		log:   log,
	}
}

// Registry returns the models the pipeline dispatches to.
func (p *Pipeline) Registry() *models.Registry {
	return p.reg
}

// Run runs the model called modelName over doc and returns doc. A nil doc is
// replaced by an empty one. The credential field is never present in the
// returned document.
func (p *Pipeline) Run(ctx context.Context, modelName string, doc document.Document) document.Document {
	if doc == nil {
		doc = document.Document{}
	}

	log := p.log.With("run_id", uuid.New().String(), "model", modelName)

	if p.token == "" {
		delete(doc, document.FieldToken)
		doc.Annotate(fmt.Sprintf("model %s errors with no token.", modelName), ExplainNoToken)
		log.WarnContext(ctx, "pipeline.run.no_token")
		return doc
	}

	start := time.Now()
	err := p.dispatch(ctx, modelName, doc)
	delete(doc, document.FieldToken)

	if err != nil {
		doc.Annotate(fmt.Sprintf("model *%s* errors with %v.", modelName, err), ExplainHandler)

		attrs := []any{"error", err, "elapsed_ms", time.Since(start).Milliseconds()}
		if p.debug {
			attrs = append(attrs, "stack", string(stackOf(err)))
		}
		log.ErrorContext(ctx, "pipeline.run.failed", attrs...)

		return doc
	}

	log.InfoContext(ctx, "pipeline.run.done",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"degraded", doc.Failed(),
	)

	return doc
}

func (p *Pipeline) dispatch(ctx context.Context, modelName string, doc document.Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	entry, err := p.reg.Lookup(modelName)
	if err != nil {
		return err
	}

	doc[document.FieldToken] = p.token

	return entry.Handler(ctx, doc)
}

func stackOf(err error) []byte {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe.Stack
	}
	return debug.Stack()
}
