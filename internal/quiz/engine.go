// Package quiz manages self-check question attempts: answer selection,
// correctness reveal and per-document scoring.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/softdev-labs/learnsite/internal/content"
	"github.com/softdev-labs/learnsite/internal/platform/storage"
)

// ErrNoSelection signals a reveal before any answer was selected.
var ErrNoSelection = errors.New("no answer selected")

// ErrUnknownQuestion signals a question id the document does not have.
var ErrUnknownQuestion = errors.New("unknown question")

// InvalidOptionError signals an option index outside the question's options.
type InvalidOptionError struct {
	QuestionID  int
	Option      int
	OptionCount int
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("question %d: option %d out of range for %d options",
		e.QuestionID, e.Option, e.OptionCount)
}

// Answer is the recorded state of one question.
type Answer struct {
	Selected *int `json:"selectedOption"`
	Revealed bool `json:"revealed"`
}

// Attempt maps question IDs to their recorded answers.
type Attempt map[int]Answer

// RevealResult is the outcome of disclosing a question.
type RevealResult struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// Score aggregates revealed results for one document. Total is always the
// document's full question count, regardless of how many were revealed.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Engine runs the per-question state machine: unanswered, answered, revealed.
// Selecting again after a reveal re-enters answered with the new selection.
type Engine struct {
	library *content.Library
	store   storage.Store
	mu      sync.Mutex
}

// NewEngine creates an engine over the given store. A nil store means
// attempts are ephemeral, reset each session. Non-nil stores are wrapped so
// a backend failure degrades to session-local memory instead of losing
// selections.
func NewEngine(library *content.Library, store storage.Store) *Engine {
	if store == nil {
		store = storage.NewMemoryStore()
	} else {
		store = storage.NewFallbackStore(store)
	}
	return &Engine{library: library, store: store}
}

// SelectAnswer records an option selection for a question, clearing any
// prior reveal.
func (e *Engine) SelectAnswer(ctx context.Context, slug string, questionID, option int) (Attempt, error) {
	doc, ok := e.library.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", content.ErrNotFound, slug)
	}
	q, ok := doc.QuestionByID(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %d in %s", ErrUnknownQuestion, questionID, slug)
	}
	if option < 0 || option >= len(q.Options) {
		return nil, &InvalidOptionError{QuestionID: questionID, Option: option, OptionCount: len(q.Options)}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	attempt := e.load(ctx, slug)
	selected := option
	attempt[questionID] = Answer{Selected: &selected}
	e.persist(ctx, slug, attempt)

	return attempt, nil
}

// Reveal discloses correctness and the explanation for an answered question.
func (e *Engine) Reveal(ctx context.Context, slug string, questionID int) (RevealResult, error) {
	doc, ok := e.library.Get(slug)
	if !ok {
		return RevealResult{}, fmt.Errorf("%w: %s", content.ErrNotFound, slug)
	}
	q, ok := doc.QuestionByID(questionID)
	if !ok {
		return RevealResult{}, fmt.Errorf("%w: %d in %s", ErrUnknownQuestion, questionID, slug)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	attempt := e.load(ctx, slug)
	ans, ok := attempt[questionID]
	if !ok || ans.Selected == nil {
		return RevealResult{}, fmt.Errorf("%w: question %d in %s", ErrNoSelection, questionID, slug)
	}

	ans.Revealed = true
	attempt[questionID] = ans
	e.persist(ctx, slug, attempt)

	return RevealResult{
		Correct:     *ans.Selected == q.CorrectAnswer,
		Explanation: q.Explanation,
	}, nil
}

// Score counts revealed questions whose selection matches the correct
// answer.
func (e *Engine) Score(ctx context.Context, slug string) (Score, error) {
	doc, ok := e.library.Get(slug)
	if !ok {
		return Score{}, fmt.Errorf("%w: %s", content.ErrNotFound, slug)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	attempt := e.load(ctx, slug)
	correct := 0
	for _, q := range doc.Questions {
		ans, ok := attempt[q.ID]
		if ok && ans.Revealed && ans.Selected != nil && *ans.Selected == q.CorrectAnswer {
			correct++
		}
	}

	return Score{Correct: correct, Total: len(doc.Questions)}, nil
}

// Attempt returns the recorded state for a document's questions.
func (e *Engine) Attempt(ctx context.Context, slug string) (Attempt, error) {
	if _, ok := e.library.Get(slug); !ok {
		return nil, fmt.Errorf("%w: %s", content.ErrNotFound, slug)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx, slug), nil
}

func (e *Engine) load(ctx context.Context, slug string) Attempt {
	attempt := Attempt{}
	data, ok, err := e.store.Get(ctx, key(slug))
	if err != nil {
		slog.Warn("quiz state not loaded", "slug", slug, "error", err)
		return attempt
	}
	if !ok {
		return attempt
	}
	if err := json.Unmarshal(data, &attempt); err != nil {
		slog.Warn("discarding corrupt quiz state", "slug", slug, "error", err)
		return Attempt{}
	}
	return attempt
}

func (e *Engine) persist(ctx context.Context, slug string, attempt Attempt) {
	data, err := json.Marshal(attempt)
	if err != nil {
		slog.Warn("quiz state not encoded", "slug", slug, "error", err)
		return
	}
	if err := e.store.Set(ctx, key(slug), data); err != nil {
		slog.Warn("quiz state not persisted", "slug", slug, "error", err)
	}
}

func key(slug string) string {
	return "quiz:" + slug
}
