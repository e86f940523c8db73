// Package models holds the named document handlers and the registry the
// pipeline dispatches through.
package models

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/germanamz/docpipe/pkg/document"
)

// ErrUnknownModel is returned by Lookup for an unregistered name.
var ErrUnknownModel = errors.New("no such model")

// Handler enriches doc in place. A returned error aborts the run; degraded
// model output is reported through the document instead.
type Handler func(ctx context.Context, doc document.Document) error

// Entry describes a registered model.
type Entry struct {
	Name        string
	Description string
	Template    string // Prompt template the handler renders, if any.
	Handler     Handler
}

// Registry is an immutable name to handler table. It is safe for concurrent
// use.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a Registry from entries. When two entries share a name
// the later one wins.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.Name] = e
	}
	return r
}

// Lookup returns the entry registered under name. Names are case-sensitive.
func (r *Registry) Lookup(name string) (Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return e, nil
}

// List returns all entries sorted by name.
func (r *Registry) List() []Entry {
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	entries := r.List()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
