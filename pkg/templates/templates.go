// Package templates loads named prompt templates and renders them against
// documents.
//
// Templates use shell-style placeholders: $name or ${name} is replaced by the
// document field "name" and $$ renders a literal dollar sign. The default
// template set is embedded in the package; a directory on disk can replace it.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

//go:embed prompts/*.txt
var promptFS embed.FS

const ext = ".txt"

var (
	// ErrNilTemplate is returned when rendering a template that failed to load.
	ErrNilTemplate = errors.New("templates: template not loaded")
	// ErrMissingField is returned when a placeholder has no matching document field.
	ErrMissingField = errors.New("templates: missing field")
	// ErrInvalidPlaceholder is returned for a "$" that does not start a placeholder.
	ErrInvalidPlaceholder = errors.New("templates: invalid placeholder")
)

// Store resolves template names to files. It does not cache: every Load
// re-reads the backing storage.
type Store struct {
	fsys fs.FS
	log  *slog.Logger
}

// NewStore creates a Store. An empty dir selects the embedded template set;
// otherwise templates are read from dir.
func NewStore(dir string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(promptFS, "prompts")
		if err != nil {
			// The embed pattern guarantees the directory exists.
			panic(fmt.Sprintf("templates: embedded prompts: %v", err))
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	return &Store{fsys: fsys, log: log}
}

// NewStoreFS creates a Store backed by an arbitrary filesystem.
func NewStoreFS(fsys fs.FS, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{fsys: fsys, log: log}
}

// Load reads the template called name. Read failures are logged and yield a
// nil Renderer; rendering a nil Renderer fails with ErrNilTemplate.
func (s *Store) Load(name string) *Renderer {
	data, err := fs.ReadFile(s.fsys, name+ext)
	if err != nil {
		s.log.Error("templates.load_failed", "template", name, "error", err)
		return nil
	}

	return &Renderer{name: name, text: string(data)}
}

// Names lists the templates available in the store.
func (s *Store) Names() ([]string, error) {
	matches, err := fs.Glob(s.fsys, "*"+ext)
	if err != nil {
		return nil, fmt.Errorf("templates: list: %w", err)
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[:len(m)-len(ext)]
	}

	return names, nil
}
