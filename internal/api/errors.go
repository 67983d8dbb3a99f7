package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`

	// RemoteCode is the obs-websocket request status, when OBS rejected
	// the request.
	RemoteCode int `json:"remote_code,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeInternal    = "internal_error"
	ErrCodeValidation  = "validation_error"
	ErrCodeBusy        = "generation_running"
	ErrCodeUnavailable = "unavailable"
	ErrCodeRemote      = "remote_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeSceneError maps an engine or manager error to a response.
//
//	ErrValidation            400
//	ErrSceneNotFound         404
//	already exists (601)     409
//	ErrGenerationRunning     409
//	ErrCacheUnavailable      503
//	anything else from OBS   502, with the remote code when present
func writeSceneError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scenes.ErrValidation):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, scenes.ErrSceneNotFound):
		writeNotFound(w, err.Error())
	case scenes.IsAlreadyExists(err):
		writeJSON(w, http.StatusConflict, Error{
			Status:     http.StatusConflict,
			Code:       ErrCodeConflict,
			Message:    err.Error(),
			RemoteCode: remoteCode(err),
		})
	case errors.Is(err, scenes.ErrGenerationRunning):
		writeError(w, http.StatusConflict, ErrCodeBusy, err.Error())
	case errors.Is(err, scenes.ErrCacheUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	default:
		writeJSON(w, http.StatusBadGateway, Error{
			Status:     http.StatusBadGateway,
			Code:       ErrCodeRemote,
			Message:    err.Error(),
			RemoteCode: remoteCode(err),
		})
	}
}

func remoteCode(err error) int {
	code, _ := scenes.RemoteCode(err)
	return code
}
