package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

// triggerAPI is recorded on runs started over HTTP.
const triggerAPI = "api"

// GenerateRequest is the optional body of POST /generation.
type GenerateRequest struct {
	Cameras  []layout.Camera         `json:"cameras,omitempty"`
	Graphics *layout.GraphicsOverlay `json:"graphics,omitempty"`
	Types    []string                `json:"types,omitempty"`
}

// handlePreview returns the scenes a run would create from empty remote
// state.
//
// Query parameters:
//   - types: comma-separated families (default all)
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var names []string
	if v := r.URL.Query().Get("types"); v != "" {
		names = strings.Split(v, ",")
	}
	types, err := layout.ParseFamilies(names)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.engine.PreviewScenes(types...))
}

// handleGenerate runs a batch and returns its report. The batch runs to
// completion even if the client disconnects.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	types, err := layout.ParseFamilies(req.Types)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if req.Cameras != nil {
		if err := layout.CheckRoster(req.Cameras); err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
	}

	report, err := s.engine.GenerateAllScenes(r.Context(), scenes.GenerateOptions{
		Cameras:  req.Cameras,
		Graphics: req.Graphics,
		Types:    types,
		Trigger:  triggerAPI,
	})
	if err != nil {
		writeSceneError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleListGenerated returns the scenes created during this session.
func (s *Server) handleListGenerated(w http.ResponseWriter, _ *http.Request) {
	names := s.engine.GeneratedScenes()
	writeJSON(w, http.StatusOK, map[string]any{"scenes": names, "count": len(names)})
}

// handleDeleteGenerated removes every scene created during this session.
// Individual failures are reported in the body; the call itself succeeds.
func (s *Server) handleDeleteGenerated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.DeleteGeneratedScenes(r.Context()))
}
