package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/pipeline"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

type generateRequest struct {
	Accounts []string         `json:"accounts"`
	Settings generateSettings `json:"settings"`
	// RunID lets the client open /api/watch/{run} before posting. Server
	// assigns one when empty.
	RunID string `json:"run_id,omitempty"`
}

type generateSettings struct {
	MinLikes       int  `json:"min_likes"`
	MinReposts     int  `json:"min_reposts"`
	PostsToAnalyze int  `json:"tweets_to_analyze"`
	PostsToRewrite int  `json:"tweets_to_rewrite"`
	GenerateImages bool `json:"generate_images"`
}

type generateResponse struct {
	RunID   string               `json:"run_id"`
	Results []types.ResultBundle `json:"results"`
	Summary *pipeline.Summary    `json:"summary"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(req.Accounts) == 0 {
		writeError(w, http.StatusBadRequest, "accounts must not be empty")
		return
	}

	runID := req.RunID
	if runID == "" {
		runID = newRunID()
	}
	s.runs.open(runID)
	defer s.runs.finish(runID)

	o := &pipeline.Orchestrator{
		Source:      s.svc.Source,
		Analyzer:    s.svc.Analyzer,
		Rewriter:    s.svc.Rewriter,
		Illustrator: s.svc.Illustrator,
		Sink:        s.svc.Sink,
		Limiter:     s.svc.Limiter,
		Log:         s.log,
		OnProgress:  func(ev pipeline.Event) { s.runs.publish(runID, ev) },
	}

	sum, err := o.Run(r.Context(), req.Accounts, pipeline.Options{
		MinLikes:       req.Settings.MinLikes,
		MinReposts:     req.Settings.MinReposts,
		PostsToAnalyze: req.Settings.PostsToAnalyze,
		PostsToRewrite: req.Settings.PostsToRewrite,
		GenerateImages: req.Settings.GenerateImages,
	})
	if err != nil {
		var te *pipeline.ThresholdError
		if errors.As(err, &te) {
			writeError(w, http.StatusNotFound, te.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{RunID: runID, Results: sum.Results, Summary: sum})
}

type generateImageRequest struct {
	Row       int                 `json:"row"`
	Rewritten types.RewrittenPost `json:"rewritten"`
}

type generateImageResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Rewritten.MainText == "" {
		writeError(w, http.StatusBadRequest, "rewritten.main_text is required")
		return
	}
	if s.svc.Illustrator == nil {
		writeJSON(w, http.StatusOK, generateImageResponse{Success: false, Message: "image generation is not configured"})
		return
	}

	url := s.svc.Illustrator.Illustrate(r.Context(), req.Rewritten)
	if url == "" {
		writeJSON(w, http.StatusOK, generateImageResponse{Success: false, Message: "image generation failed"})
		return
	}

	if req.Row > 0 && s.svc.Sink != nil {
		if err := s.svc.Sink.UpdateImageURL(r.Context(), req.Row, url); err != nil {
			writeJSON(w, http.StatusOK, generateImageResponse{Success: true, URL: url, Message: "image generated, row update failed: " + err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, generateImageResponse{Success: true, URL: url, Message: "image generated"})
}

func newRunID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
