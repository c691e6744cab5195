package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/qualixa/qualixa/internal/storage"
)

func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	result, err := s.store.ListEndpoints(r.Context(), search, p)
	if err != nil {
		s.logger.Error("list endpoints", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list endpoints")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := s.store.GetEndpoint(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		s.logger.Error("get endpoint", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get endpoint")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var e storage.Endpoint
	if err := readJSON(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	if e.Method == "" {
		e.Method = "GET"
	}

	if err := validateEndpoint(&e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateEndpoint(r.Context(), &e); err != nil {
		s.logger.Error("create endpoint", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create endpoint")
		return
	}

	s.audit(r, "create", "endpoint", e.ID, "")

	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := s.store.GetEndpoint(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		s.logger.Error("get endpoint for update", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get endpoint")
		return
	}

	var e storage.Endpoint
	if err := readJSON(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))

	if err := validateEndpoint(&e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateEndpoint(r.Context(), &e); err != nil {
		s.logger.Error("update endpoint", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update endpoint")
		return
	}

	s.audit(r, "update", "endpoint", e.ID, "")

	updated, err := s.store.GetEndpoint(r.Context(), id)
	if err != nil {
		s.logger.Error("reload endpoint after update", "error", err)
		writeJSON(w, http.StatusOK, e)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = s.store.GetEndpoint(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		s.logger.Error("get endpoint for delete", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get endpoint")
		return
	}

	if err := s.store.DeleteEndpoint(r.Context(), id); err != nil {
		s.logger.Error("delete endpoint", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete endpoint")
		return
	}

	s.audit(r, "delete", "endpoint", id, "")

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListEndpointExecutions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := parsePagination(r)
	result, err := s.store.ListExecutions(r.Context(), storage.ExecutionFilter{EndpointID: &id}, p)
	if err != nil {
		s.logger.Error("list endpoint executions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list executions")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) audit(r *http.Request, action, entity string, entityID int64, detail string) {
	entry := &storage.AuditEntry{
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		TokenName: getTokenName(r.Context()),
		Detail:    detail,
	}
	if err := s.store.InsertAudit(r.Context(), entry); err != nil {
		s.logger.Error("audit log failed", "error", err)
	}
}
