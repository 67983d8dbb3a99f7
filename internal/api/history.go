package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/broadcast-scenes/internal/history"
)

// auditChanSize is the buffer size for the async audit log channel.
// Entries beyond this are dropped (best-effort) to avoid back-pressure on requests.
const auditChanSize = 256

// auditSource is recorded on every entry written by the API.
const auditSource = "api"

// auditLog enqueues an audit entry for a scene action. If the channel is
// full the entry is dropped and a warning is logged.
func (s *Server) auditLog(action, scene string, details map[string]any) {
	if s.auditCh == nil {
		return
	}

	entry := &history.AuditLog{
		Action:     action,
		EntityType: history.EntityScene,
		EntityID:   scene,
		Source:     auditSource,
		Details:    details,
	}

	select {
	case s.auditCh <- entry:
	default:
		s.logger.Warn("audit log channel full, dropping entry", "action", action, "scene", scene)
	}
}

// drainAuditLog writes queued entries one at a time until ctx ends, then
// writes whatever is still queued.
func (s *Server) drainAuditLog(ctx context.Context) {
	write := func(entry *history.AuditLog) {
		if err := s.auditRepo.Create(context.Background(), entry); err != nil {
			s.logger.Error("audit log write failed", "action", entry.Action, "error", err)
		}
	}

	for {
		select {
		case entry := <-s.auditCh:
			write(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-s.auditCh:
					write(entry)
				default:
					return
				}
			}
		}
	}
}

// handleListAuditLogs returns paginated audit log entries with optional filters.
//
// Query parameters:
//   - action: generate, cleanup, create, duplicate, rename, delete, reorder
//   - entity_type: scene or generation_run
//   - entity_id: scene name or run ID
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	limit, offset := pageParams(r)
	result, err := s.auditRepo.List(r.Context(), history.AuditFilter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListRuns returns stored generation runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "run history not configured")
		return
	}

	limit, offset := pageParams(r)
	result, err := s.runs.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("failed to list generation runs", "error", err)
		writeInternalError(w, "failed to list generation runs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetRun returns one run with its full report.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "run history not configured")
		return
	}

	run, err := s.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			writeNotFound(w, "generation run not found")
			return
		}
		s.logger.Error("failed to get generation run", "error", err)
		writeInternalError(w, "failed to get generation run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// pageParams reads limit and offset. Unparseable values fall back to the
// repository defaults.
func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
