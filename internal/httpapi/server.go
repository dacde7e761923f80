// Package httpapi exposes the lesson library, progress tracker and quiz
// engine over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/softdev-labs/learnsite/internal/catalog"
	"github.com/softdev-labs/learnsite/internal/content"
	"github.com/softdev-labs/learnsite/internal/progress"
	"github.com/softdev-labs/learnsite/internal/quiz"
	"github.com/softdev-labs/learnsite/internal/render"
)

// Server bundles the handlers' dependencies.
type Server struct {
	library *content.Library
	tracker *progress.Tracker
	engine  *quiz.Engine
}

// NewServer creates the API server.
func NewServer(library *content.Library, tracker *progress.Tracker, engine *quiz.Engine) *Server {
	return &Server{library: library, tracker: tracker, engine: engine}
}

// Mux returns the HTTP router with all routes registered.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /api/lessons", s.handleList)
	mux.HandleFunc("GET /api/lessons/{slug}", s.handleDetail)
	mux.HandleFunc("GET /lessons/{slug}", s.handleLessonPage)
	mux.HandleFunc("GET /api/lessons/{slug}/progress", s.handleProgress)
	mux.HandleFunc("POST /api/lessons/{slug}/progress/{item}/toggle", s.handleToggle)
	mux.HandleFunc("POST /api/lessons/{slug}/quiz/{id}/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/lessons/{slug}/quiz/{id}/reveal", s.handleReveal)
	mux.HandleFunc("GET /api/lessons/{slug}/quiz/score", s.handleScore)
	return mux
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	// The library loads before the server starts, so reachable means ready.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summaries := catalog.Summaries(s.library)
	if q := r.URL.Query().Get("q"); q != "" {
		summaries = catalog.Filter(summaries, q)
	}
	if summaries == nil {
		summaries = []catalog.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	doc, ok := s.library.Get(slug)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("lesson %q not found", slug))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleLessonPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	doc, ok := s.library.Get(slug)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, render.Document(doc))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	state, err := s.tracker.State(r.Context(), slug)
	if err != nil {
		s.writeTrackError(w, slug, err)
		return
	}
	summary, err := s.tracker.Summary(r.Context(), slug)
	if err != nil {
		s.writeTrackError(w, slug, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{State: state, Summary: summary})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	state, err := s.tracker.Toggle(r.Context(), slug, r.PathValue("item"))
	if err != nil {
		s.writeTrackError(w, slug, err)
		return
	}
	summary, err := s.tracker.Summary(r.Context(), slug)
	if err != nil {
		s.writeTrackError(w, slug, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{State: state, Summary: summary})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	questionID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "question id must be an integer")
		return
	}

	var body struct {
		Option *int `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Option == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"option\": <index>}")
		return
	}

	attempt, err := s.engine.SelectAnswer(r.Context(), slug, questionID, *body.Option)
	if err != nil {
		s.writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	questionID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "question id must be an integer")
		return
	}

	result, err := s.engine.Reveal(r.Context(), slug, questionID)
	if err != nil {
		s.writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.engine.Score(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

type progressResponse struct {
	State   progress.State   `json:"state"`
	Summary progress.Summary `json:"summary"`
}

func (s *Server) writeTrackError(w http.ResponseWriter, slug string, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, progress.ErrUnknownItem):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("progress request failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeQuizError(w http.ResponseWriter, err error) {
	var invalidOption *quiz.InvalidOptionError
	switch {
	case errors.As(err, &invalidOption):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quiz.ErrNoSelection):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, content.ErrNotFound), errors.Is(err, quiz.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("quiz request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
