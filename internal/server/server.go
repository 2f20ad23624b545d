// Package server exposes the pipeline over HTTP: batch generation,
// one-off image generation, topic research, static image serving and a
// websocket progress stream.
package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/analyze"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/illustrate"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/research"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/rewrite"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/sink"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/source"
)

// Services are the wired stage implementations the handlers run against.
type Services struct {
	Source      source.Source
	Analyzer    *analyze.Analyzer
	Rewriter    *rewrite.Rewriter
	Illustrator *illustrate.Generator
	Sink        sink.Sink
	Researcher  *research.Researcher
	Limiter     *rate.Limiter

	// ImageDir backs GET /api/images/{file} when the local store is used.
	ImageDir string
}

type Server struct {
	svc  Services
	log  *logrus.Entry
	runs *runHub
}

func New(svc Services, log *logrus.Entry) *Server {
	return &Server{svc: svc, log: log, runs: newRunHub()}
}

// Router builds the HTTP surface.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/generate", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/api/generate-image", s.handleGenerateImage).Methods(http.MethodPost)
	r.HandleFunc("/api/research", s.handleResearch).Methods(http.MethodPost)
	r.HandleFunc("/api/images/{file}", s.handleImage).Methods(http.MethodGet)
	r.HandleFunc("/api/watch/{run}", s.handleWatch).Methods(http.MethodGet)
	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "x-viral-tweet-generator",
		"endpoints": []string{
			"POST /api/generate",
			"POST /api/generate-image",
			"POST /api/research",
			"GET /api/health",
			"GET /api/images/{file}",
			"GET /api/watch/{run}",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	// filepath.Base blocks traversal out of the image directory.
	if name != filepath.Base(name) || name == "." || name == "" {
		http.Error(w, "bad filename", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.svc.ImageDir, name))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
