package server

import (
	"encoding/json"
	"net/http"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/research"
)

type researchRequest struct {
	Topic    string `json:"topic"`
	Locale   string `json:"locale,omitempty"`
	Audience string `json:"audience,omitempty"`
	Days     int    `json:"days,omitempty"`
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	if s.svc.Researcher == nil {
		writeError(w, http.StatusServiceUnavailable, "research is not configured")
		return
	}

	pack, err := s.svc.Researcher.ResearchTopic(r.Context(), req.Topic, research.Options{
		Locale:   req.Locale,
		Audience: req.Audience,
		Days:     req.Days,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pack)
}
