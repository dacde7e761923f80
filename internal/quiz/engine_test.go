package quiz_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/softdev-labs/learnsite/internal/content"
	"github.com/softdev-labs/learnsite/internal/platform/storage"
	"github.com/softdev-labs/learnsite/internal/quiz"
)

func TestEngine_SelectThenReveal(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), nil)
	ctx := context.Background()

	attempt, err := engine.SelectAnswer(ctx, "composting", 1, 1)
	if err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}
	ans := attempt[1]
	if ans.Selected == nil || *ans.Selected != 1 {
		t.Fatalf("Selected = %v, want 1", ans.Selected)
	}
	if ans.Revealed {
		t.Error("Revealed = true before Reveal()")
	}

	result, err := engine.Reveal(ctx, "composting", 1)
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if !result.Correct {
		t.Error("Correct = false, want true for option 1")
	}
	if result.Explanation == "" {
		t.Error("Explanation is empty")
	}
}

func TestEngine_SelectAnswer_InvalidOption(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), nil)

	_, err := engine.SelectAnswer(context.Background(), "composting", 1, 5)
	var invalid *quiz.InvalidOptionError
	if !errors.As(err, &invalid) {
		t.Fatalf("SelectAnswer() error = %v, want InvalidOptionError", err)
	}
	if invalid.Option != 5 || invalid.OptionCount != 3 {
		t.Errorf("InvalidOptionError = %+v, want option 5 of 3", invalid)
	}

	_, err = engine.SelectAnswer(context.Background(), "composting", 1, -1)
	if !errors.As(err, &invalid) {
		t.Errorf("SelectAnswer(-1) error = %v, want InvalidOptionError", err)
	}
}

func TestEngine_Reveal_BeforeSelect(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), nil)

	_, err := engine.Reveal(context.Background(), "composting", 1)
	if !errors.Is(err, quiz.ErrNoSelection) {
		t.Errorf("Reveal() error = %v, want ErrNoSelection", err)
	}
}

func TestEngine_ReselectClearsReveal(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), nil)
	ctx := context.Background()

	if _, err := engine.SelectAnswer(ctx, "composting", 1, 0); err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}
	if _, err := engine.Reveal(ctx, "composting", 1); err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}

	// A new selection re-enters answered and drops the reveal.
	attempt, err := engine.SelectAnswer(ctx, "composting", 1, 1)
	if err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}
	ans := attempt[1]
	if ans.Revealed {
		t.Error("Revealed = true after re-selection")
	}
	if ans.Selected == nil || *ans.Selected != 1 {
		t.Errorf("Selected = %v, want 1", ans.Selected)
	}
}

func TestEngine_Score(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), nil)
	ctx := context.Background()

	// Question 1 answered correctly and revealed; question 2 answered
	// incorrectly and revealed; question 3 never touched.
	if _, err := engine.SelectAnswer(ctx, "composting", 1, 1); err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}
	if _, err := engine.Reveal(ctx, "composting", 1); err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if _, err := engine.SelectAnswer(ctx, "composting", 2, 0); err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}
	if _, err := engine.Reveal(ctx, "composting", 2); err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}

	score, err := engine.Score(ctx, "composting")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score.Correct != 1 {
		t.Errorf("Correct = %d, want 1", score.Correct)
	}
	if score.Total != 3 {
		t.Errorf("Total = %d, want the full question count 3", score.Total)
	}
}

func TestEngine_Score_UnrevealedDoesNotCount(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), nil)
	ctx := context.Background()

	// Correct selection, never revealed.
	if _, err := engine.SelectAnswer(ctx, "composting", 1, 1); err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}

	score, err := engine.Score(ctx, "composting")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score.Correct != 0 {
		t.Errorf("Correct = %d, want 0 before reveal", score.Correct)
	}
	if score.Total != 3 {
		t.Errorf("Total = %d, want 3", score.Total)
	}
}

func TestEngine_UnknownQuestion(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), nil)

	_, err := engine.SelectAnswer(context.Background(), "composting", 99, 0)
	if !errors.Is(err, quiz.ErrUnknownQuestion) {
		t.Errorf("SelectAnswer() error = %v, want ErrUnknownQuestion", err)
	}
}

func TestEngine_UnknownSlug(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), nil)

	_, err := engine.Score(context.Background(), "nonexistent")
	if !errors.Is(err, content.ErrNotFound) {
		t.Errorf("Score() error = %v, want ErrNotFound", err)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("backend down")
}

func TestEngine_StorageFailureKeepsStateForSession(t *testing.T) {
	engine := quiz.NewEngine(newTestLibrary(t), failingStore{})
	ctx := context.Background()

	if _, err := engine.SelectAnswer(ctx, "composting", 1, 1); err != nil {
		t.Fatalf("SelectAnswer() error = %v, want nil despite storage failure", err)
	}

	// The selection must still be there for the reveal.
	result, err := engine.Reveal(ctx, "composting", 1)
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if !result.Correct {
		t.Error("Correct = false, selection lost after a storage failure")
	}
}

func TestEngine_SharedStorePersistsAttempts(t *testing.T) {
	lib := newTestLibrary(t)
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first := quiz.NewEngine(lib, store)
	if _, err := first.SelectAnswer(ctx, "composting", 1, 2); err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}

	second := quiz.NewEngine(lib, store)
	attempt, err := second.Attempt(ctx, "composting")
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	ans := attempt[1]
	if ans.Selected == nil || *ans.Selected != 2 {
		t.Errorf("Selected = %v, want 2 from shared store", ans.Selected)
	}
}

func newTestLibrary(t *testing.T) *content.Library {
	t.Helper()
	dir := t.TempDir()

	doc := `
title: "Composting"
description: "Turning scraps into soil."
sections:
  - id: basics
    title: "Basics"
    content:
      - type: paragraph
        text: "Balance greens and browns."
testQuestions:
  - id: 1
    question: "What ratio of browns to greens works best?"
    options: ["1:3", "3:1", "1:1"]
    correctAnswer: 1
    explanation: "Roughly three parts carbon to one part nitrogen."
  - id: 2
    question: "Should compost be turned?"
    options: ["Never", "Regularly"]
    correctAnswer: 1
    explanation: "Turning keeps the pile aerobic."
  - id: 3
    question: "Can cooked food go in?"
    options: ["Yes, always", "Best avoided"]
    correctAnswer: 1
    explanation: "Cooked food attracts pests in open piles."
`
	if err := os.WriteFile(filepath.Join(dir, "composting.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	lib, err := content.NewLibrary(dir)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	return lib
}
