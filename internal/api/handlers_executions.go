package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/qualixa/qualixa/internal/storage"
)

func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	var f storage.ExecutionFilter
	q := r.URL.Query()
	if v := q.Get("endpoint_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid endpoint_id")
			return
		}
		f.EndpointID = &id
	}
	if v := q.Get("test_plan_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid test_plan_id")
			return
		}
		f.TestPlanID = &id
	}
	if v := q.Get("status"); v != "" {
		if v != "passed" && v != "failed" {
			writeError(w, http.StatusBadRequest, "status must be passed or failed")
			return
		}
		f.Status = v
	}

	result, err := s.store.ListExecutions(r.Context(), f, p)
	if err != nil {
		s.logger.Error("list executions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list executions")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exec, err := s.store.GetExecution(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "execution not found")
			return
		}
		s.logger.Error("get execution", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get execution")
		return
	}
	writeJSON(w, http.StatusOK, exec)
}
