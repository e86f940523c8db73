package models

import (
	"context"
	"log/slog"

	"github.com/germanamz/docpipe/pkg/document"
	"github.com/germanamz/docpipe/pkg/modeladapter"
	"github.com/germanamz/docpipe/pkg/record"
	"github.com/germanamz/docpipe/pkg/templates"
)

// Model names.
const (
	Keyterms       = "gpt_keyterms"
	Title          = "get_title"
	AnswerQuestion = "answer_question"
	ProblemDim     = "measure_probdim"
	AskGPT         = "ask_gpt"
)

// Output fields.
const (
	FieldKeyterms = "keyterms"
	FieldQuestion = "question"
	FieldTitle    = "title"
	FieldAnswer   = "answer"
)

// askKeyterms caps the keyterms ask_gpt returns.
const askKeyterms = 3

// Kit is what the default handlers are built from.
type Kit struct {
	Templates *templates.Store
	Completer modeladapter.Completer
	Log       *slog.Logger
}

func (k Kit) logger() *slog.Logger {
	if k.Log == nil {
		return slog.Default()
	}
	return k.Log
}

// Defaults returns a Registry with the five document models.
func Defaults(kit Kit) *Registry {
	return NewRegistry(
		Entry{
			Name:        Keyterms,
			Description: "Extract index keyterms and a study question from text.",
			Template:    "get_tandqs",
			Handler:     kit.handler("get_tandqs", mergeKeyterms),
		},
		Entry{
			Name:        Title,
			Description: "Write a title for content.",
			Template:    "get_title",
			Handler:     kit.handler("get_title", mergeField(FieldTitle)),
		},
		Entry{
			Name:        AnswerQuestion,
			Description: "Answer question from content.",
			Template:    "answer_question",
			Handler:     kit.handler("answer_question", mergeField(FieldAnswer)),
		},
		Entry{
			Name:        ProblemDim,
			Description: "Measure the problem dimensions of question.",
			Template:    "get_probdims",
			Handler:     kit.handler("get_probdims", mergeField(FieldAnswer)),
		},
		Entry{
			Name:        AskGPT,
			Description: "Converse about content: answer question and suggest keyterms.",
			Template:    "doc_convo",
			Handler:     kit.handler("doc_convo", mergeAsk),
		},
	)
}

// handler builds the shared handler shape: take the token, render the
// template, complete, parse and merge.
func (k Kit) handler(template string, merge func(document.Document, record.Record)) Handler {
	return func(ctx context.Context, doc document.Document) error {
		token := doc.PopString(document.FieldToken)

		prompt, err := k.Templates.Load(template).Substitute(doc)
		if err != nil {
			return err
		}

		text, err := k.Completer.Complete(ctx, modeladapter.TextRequest{
			APIKey: token,
			Prompt: prompt,
			Params: modeladapter.RecordParams(),
		})

		rec, err := record.FromCompletion(text, err)
		if err != nil {
			k.logger().WarnContext(ctx, "models.completion_failed",
				"template", template,
				"error", err,
			)
			doc.SetDefault(document.FieldError, rec.Error())
			doc.SetDefault(document.FieldExplain, rec.Answer())
			return nil
		}

		merge(doc, rec)

		// The model may report its own error alongside the outputs.
		if v, ok := rec.Value(record.FieldError); ok && v != nil {
			doc.SetDefault(document.FieldError, v)
		}

		return nil
	}
}

func mergeField(key string) func(document.Document, record.Record) {
	return func(doc document.Document, rec record.Record) {
		v, _ := rec.Value(key)
		doc.SetDefault(key, v)
	}
}

func mergeKeyterms(doc document.Document, rec record.Record) {
	if terms, ok := rec.Strings(FieldKeyterms); ok {
		doc.SetDefault(FieldKeyterms, terms)
	} else {
		doc.SetDefault(FieldKeyterms, nil)
	}
	mergeField(FieldQuestion)(doc, rec)
}

func mergeAsk(doc document.Document, rec record.Record) {
	mergeField(FieldAnswer)(doc, rec)

	terms, _ := rec.Strings(FieldKeyterms)
	if len(terms) > askKeyterms {
		terms = terms[:askKeyterms]
	}
	if terms == nil {
		terms = []string{}
	}
	doc.SetDefault(FieldKeyterms, terms)
}
