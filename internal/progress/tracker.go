// Package progress tracks per-document, per-item completion state.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/softdev-labs/learnsite/internal/content"
	"github.com/softdev-labs/learnsite/internal/platform/storage"
)

// ErrUnknownItem signals a toggle against an item the document does not have.
var ErrUnknownItem = errors.New("unknown progress item")

// State maps item IDs to their done flag.
type State map[string]bool

// Summary is the derived completion statistics for one document.
type Summary struct {
	Percent    int `json:"percent"`
	DoneCount  int `json:"doneCount"`
	TotalCount int `json:"totalCount"`
}

// Tracker persists completion state per document through the storage port.
// Each mutation is a whole-blob read-modify-write guarded by the mutex, so
// concurrent toggles never interleave a partial write.
type Tracker struct {
	library *content.Library
	store   storage.Store
	mu      sync.Mutex
}

// NewTracker creates a tracker over the given store. A nil store means
// in-memory tracking only. Non-nil stores are wrapped so a backend failure
// degrades to session-local memory instead of losing toggles.
func NewTracker(library *content.Library, store storage.Store) *Tracker {
	if store == nil {
		store = storage.NewMemoryStore()
	} else {
		store = storage.NewFallbackStore(store)
	}
	return &Tracker{library: library, store: store}
}

// State returns the persisted state for a document, with every current item
// present and missing items defaulting to false. Stale keys from removed
// items are ignored.
func (t *Tracker) State(ctx context.Context, slug string) (State, error) {
	doc, ok := t.library.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", content.ErrNotFound, slug)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	raw := t.load(ctx, slug)
	return project(doc, raw), nil
}

// Toggle flips one item's done flag and persists the updated state before
// returning it. Persistence failures degrade inside the store and never
// block the toggle.
func (t *Tracker) Toggle(ctx context.Context, slug, itemID string) (State, error) {
	doc, ok := t.library.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", content.ErrNotFound, slug)
	}
	if !hasItem(doc, itemID) {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnknownItem, itemID, slug)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	raw := t.load(ctx, slug)
	raw[itemID] = !raw[itemID]

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode progress state: %w", err)
	}
	if err := t.store.Set(ctx, key(slug), data); err != nil {
		slog.Warn("progress state not persisted", "slug", slug, "error", err)
	}

	return project(doc, raw), nil
}

// Summary derives completion statistics for a document. Percent is the
// rounded done/total ratio, zero for documents with no trackable items.
func (t *Tracker) Summary(ctx context.Context, slug string) (Summary, error) {
	state, err := t.State(ctx, slug)
	if err != nil {
		return Summary{}, err
	}

	total := len(state)
	done := 0
	for _, v := range state {
		if v {
			done++
		}
	}

	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(done) / float64(total) * 100))
	}

	return Summary{Percent: percent, DoneCount: done, TotalCount: total}, nil
}

// load reads the raw persisted map for a slug, empty if absent or unreadable.
func (t *Tracker) load(ctx context.Context, slug string) State {
	raw := State{}
	data, ok, err := t.store.Get(ctx, key(slug))
	if err != nil {
		slog.Warn("progress state not loaded", "slug", slug, "error", err)
		return raw
	}
	if !ok {
		return raw
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("discarding corrupt progress state", "slug", slug, "error", err)
		return State{}
	}
	return raw
}

func project(doc content.Document, raw State) State {
	state := State{}
	for _, id := range doc.ItemIDs() {
		state[id] = raw[id]
	}
	return state
}

func hasItem(doc content.Document, itemID string) bool {
	for _, id := range doc.ItemIDs() {
		if id == itemID {
			return true
		}
	}
	return false
}

func key(slug string) string {
	return "progress:" + slug
}
