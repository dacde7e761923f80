// Package content loads and validates lesson documents from a content
// directory and serves them read-only, keyed by slug.
package content

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrNotFound signals an unknown slug. An expected condition, not a failure.
var ErrNotFound = errors.New("document not found")

// LoadError describes one document that failed validation and was excluded
// from the library.
type LoadError struct {
	Path string
	Slug string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Slug, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Library holds all valid lesson documents. Immutable after construction.
type Library struct {
	dir    string
	docs   map[string]Document
	order  []string
	errs   []*LoadError
	schema *gojsonschema.Schema
	mu     sync.RWMutex
}

// NewLibrary loads every document under rootDir. Malformed documents are
// excluded and recorded, not fatal; the library is built from the valid
// remainder.
func NewLibrary(rootDir string) (*Library, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling document schema: %w", err)
	}

	l := &Library{
		dir:    rootDir,
		docs:   make(map[string]Document),
		schema: schema,
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	slog.Info("content loaded", "documents", len(l.docs), "errors", len(l.errs))
	return l, nil
}

// Get returns a document by slug.
func (l *Library) Get(slug string) (Document, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.docs[slug]
	return d, ok
}

// Slugs returns all valid slugs in sorted order.
func (l *Library) Slugs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string{}, l.order...)
}

// All returns every document in slug order.
func (l *Library) All() []Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	docs := make([]Document, 0, len(l.order))
	for _, slug := range l.order {
		docs = append(docs, l.docs[slug])
	}
	return docs
}

// LoadErrors returns the documents that were rejected at load time.
func (l *Library) LoadErrors() []*LoadError {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*LoadError{}, l.errs...)
}

func (l *Library) loadAll() error {
	err := filepath.Walk(l.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}

		slug := strings.TrimSuffix(filepath.Base(path), ext)
		if err := l.loadDocument(path, slug); err != nil {
			le := &LoadError{Path: path, Slug: slug, Err: err}
			slog.Warn("skipping invalid document", "slug", slug, "path", path, "error", err)
			l.errs = append(l.errs, le)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.order = make([]string, 0, len(l.docs))
	for slug := range l.docs {
		l.order = append(l.order, slug)
	}
	sort.Strings(l.order)

	return nil
}

func (l *Library) loadDocument(path, slug string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Structural pass first: decode to a generic mapping and check it
	// against the schema. JSON documents take the same path, being YAML.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	result, err := l.schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("schema violation: %s", strings.Join(issues, "; "))
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	// The filename is the slug of record. An in-document slug must agree.
	if doc.Slug != "" && doc.Slug != slug {
		return fmt.Errorf("slug %q does not match filename slug %q", doc.Slug, slug)
	}
	doc.Slug = slug

	if err := validateDocument(doc); err != nil {
		return err
	}

	if _, exists := l.docs[slug]; exists {
		return fmt.Errorf("duplicate slug %q", slug)
	}
	l.docs[slug] = doc

	return nil
}

// validateDocument enforces the invariants the schema cannot express.
func validateDocument(doc Document) error {
	sectionIDs := make(map[string]bool, len(doc.Sections))
	for _, s := range doc.Sections {
		if sectionIDs[s.ID] {
			return fmt.Errorf("duplicate section id %q", s.ID)
		}
		sectionIDs[s.ID] = true
	}

	questionIDs := make(map[int]bool, len(doc.Questions))
	for _, q := range doc.Questions {
		if questionIDs[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		questionIDs[q.ID] = true

		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %d: correctAnswer %d out of range for %d options",
				q.ID, q.CorrectAnswer, len(q.Options))
		}
	}

	return nil
}
