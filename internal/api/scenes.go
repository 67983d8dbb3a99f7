package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/broadcast-scenes/internal/history"
)

// maxSceneNameLen limits scene names taken from paths and bodies.
const maxSceneNameLen = 256

// sceneNameRequest is the body of create, duplicate and rename.
type sceneNameRequest struct {
	Name string `json:"name"`
}

// reorderRequest is the body of PUT /scenes/order.
type reorderRequest struct {
	Order []string `json:"order"`
}

// sceneParam returns the {name} path segment, decoded. Names may contain
// spaces, ampersands and slashes.
func sceneParam(r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(name)
		if err != nil {
			return "", false
		}
		name = decoded
	}
	if name == "" || len(name) > maxSceneNameLen {
		return "", false
	}
	return name, true
}

// decodeName reads a {"name": ...} body.
func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req sceneNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return "", false
	}
	if len(req.Name) > maxSceneNameLen {
		writeBadRequest(w, "name exceeds maximum length")
		return "", false
	}
	return req.Name, true
}

// handleListScenes returns the cached scene listing.
func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	list, err := s.manager.GetScenes()
	if err != nil {
		writeSceneError(w, err)
		return
	}

	resp := map[string]any{"scenes": list, "count": len(list)}
	if s.cache != nil {
		if st := s.cache.State(); st != nil {
			resp["current_program_scene"] = st.CurrentProgramScene
			resp["updated_at"] = st.UpdatedAt.UTC().Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetScene returns a scene with its live item list.
func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	name, ok := sceneParam(r)
	if !ok {
		writeBadRequest(w, "invalid scene name")
		return
	}

	scene, err := s.manager.GetScene(r.Context(), name)
	if err != nil {
		writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

// handleCreateScene creates an empty scene.
func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	scene, err := s.manager.CreateScene(r.Context(), name)
	if err != nil {
		writeSceneError(w, err)
		return
	}
	s.auditLog(history.ActionCreate, name, nil)
	writeJSON(w, http.StatusCreated, scene)
}

// handleDuplicateScene copies a scene and its items under a new name.
//
// Body: {"name": "<destination>"}
func (s *Server) handleDuplicateScene(w http.ResponseWriter, r *http.Request) {
	source, ok := sceneParam(r)
	if !ok {
		writeBadRequest(w, "invalid scene name")
		return
	}
	dest, ok := decodeName(w, r)
	if !ok {
		return
	}

	result, err := s.manager.DuplicateScene(r.Context(), source, dest)
	if err != nil {
		writeSceneError(w, err)
		return
	}
	s.auditLog(history.ActionDuplicate, source, map[string]any{"new_name": dest, "items": result.ItemCount})
	writeJSON(w, http.StatusCreated, result)
}

// handleRenameScene renames a scene.
//
// Body: {"name": "<new name>"}
func (s *Server) handleRenameScene(w http.ResponseWriter, r *http.Request) {
	oldName, ok := sceneParam(r)
	if !ok {
		writeBadRequest(w, "invalid scene name")
		return
	}
	newName, ok := decodeName(w, r)
	if !ok {
		return
	}

	result, err := s.manager.RenameScene(r.Context(), oldName, newName)
	if err != nil {
		writeSceneError(w, err)
		return
	}
	s.auditLog(history.ActionRename, oldName, map[string]any{"new_name": newName})
	writeJSON(w, http.StatusOK, result)
}

// handleDeleteScene removes a scene.
func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	name, ok := sceneParam(r)
	if !ok {
		writeBadRequest(w, "invalid scene name")
		return
	}

	result, err := s.manager.DeleteScene(r.Context(), name)
	if err != nil {
		writeSceneError(w, err)
		return
	}
	s.auditLog(history.ActionDelete, name, nil)
	writeJSON(w, http.StatusOK, result)
}

// handleReorderScenes validates a display order against the cached
// listing. OBS itself is not touched.
//
// Body: {"order": ["Scene A", "Scene B"]}
func (s *Server) handleReorderScenes(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.manager.ReorderScenes(req.Order)
	if err != nil {
		writeSceneError(w, err)
		return
	}
	s.auditLog(history.ActionReorder, "", map[string]any{"order": result.Order})
	writeJSON(w, http.StatusOK, result)
}
