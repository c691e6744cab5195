package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/qualixa/qualixa/internal/storage"
)

func (s *Server) handleListTestPlans(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	result, err := s.store.ListTestPlans(r.Context(), p)
	if err != nil {
		s.logger.Error("list test plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list test plans")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTestPlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tp, err := s.store.GetTestPlan(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "test plan not found")
			return
		}
		s.logger.Error("get test plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get test plan")
		return
	}
	writeJSON(w, http.StatusOK, tp)
}

func (s *Server) handleCreateTestPlan(w http.ResponseWriter, r *http.Request) {
	var tp storage.TestPlan
	if err := readJSON(r, &tp); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateTestPlan(&tp); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateTestPlan(r.Context(), &tp); err != nil {
		s.logger.Error("create test plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create test plan")
		return
	}

	s.audit(r, "create", "testplan", tp.ID, "")

	writeJSON(w, http.StatusCreated, tp)
}

func (s *Server) handleDeleteTestPlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = s.store.GetTestPlan(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "test plan not found")
			return
		}
		s.logger.Error("get test plan for delete", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get test plan")
		return
	}

	if err := s.store.DeleteTestPlan(r.Context(), id); err != nil {
		s.logger.Error("delete test plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete test plan")
		return
	}

	s.audit(r, "delete", "testplan", id, "")

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
