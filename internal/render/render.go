// Package render serializes parsed documents.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openstat-dev/snatree/internal/model"
)

// Writer serializes a Document in one output format.
type Writer interface {
	Write(w io.Writer, doc *model.Document) error
	Name() string
	Extension() string
	ContentType() string
}

// Registry holds named writers.
type Registry struct {
	writers map[string]Writer
}

// NewRegistry creates an empty writer registry.
func NewRegistry() *Registry {
	return &Registry{writers: make(map[string]Writer)}
}

// Register adds a writer. Panics on duplicate name.
func (r *Registry) Register(w Writer) {
	key := strings.ToLower(w.Name())
	if _, ok := r.writers[key]; ok {
		panic("duplicate output format: " + key)
	}
	r.writers[key] = w
}

// Get returns the writer for name.
func (r *Registry) Get(name string) (Writer, error) {
	w, ok := r.writers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(r.Names(), ", "))
	}
	return w, nil
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.writers))
	for n := range r.writers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in writers.
func DefaultRegistry(indent int) *Registry {
	r := NewRegistry()
	r.Register(&JSON{Indent: indent})
	r.Register(&YAML{Indent: indent})
	r.Register(&CSV{})
	r.Register(&Markdown{})
	return r
}

// JSON writes the document as a list of accounts.
type JSON struct {
	Indent int
}

func (j *JSON) Name() string        { return "json" }
func (j *JSON) Extension() string   { return ".json" }
func (j *JSON) ContentType() string { return "application/json; charset=utf-8" }

func (j *JSON) Write(w io.Writer, doc *model.Document) error {
	return encodeJSON(w, doc, j.Indent)
}

func encodeJSON(w io.Writer, v any, indent int) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// YAML writes the document with the same shape as JSON.
type YAML struct {
	Indent int
}

func (y *YAML) Name() string        { return "yaml" }
func (y *YAML) Extension() string   { return ".yaml" }
func (y *YAML) ContentType() string { return "application/yaml; charset=utf-8" }

func (y *YAML) Write(w io.Writer, doc *model.Document) error {
	enc := yaml.NewEncoder(w)
	if y.Indent > 0 {
		enc.SetIndent(y.Indent)
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
