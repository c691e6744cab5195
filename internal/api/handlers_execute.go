package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qualixa/qualixa/internal/assertion"
	"github.com/qualixa/qualixa/internal/probe"
	"github.com/qualixa/qualixa/internal/storage"
)

type executeRequest struct {
	EndpointID int64             `json:"endpointId"`
	TestPlanID *int64            `json:"testPlanId,omitempty"`
	BaseURL    string            `json:"baseUrl"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Assertions []assertion.Spec  `json:"assertions,omitempty"`
}

type executionView struct {
	ID               int64              `json:"id,omitempty"`
	Status           string             `json:"status"`
	ResponseStatus   int                `json:"responseStatus"`
	ResponseTime     int64              `json:"responseTime"`
	ResponseBody     string             `json:"responseBody,omitempty"`
	ResponseHeaders  map[string]string  `json:"responseHeaders,omitempty"`
	AssertionResults []assertion.Result `json:"assertionResults"`
}

type executeResponse struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Execution *executionView `json:"execution,omitempty"`
}

// handleExecuteAPITest runs one probe: build the request, dispatch it,
// evaluate the assertions, and persist an immutable execution record.
// Transport failures still persist a failed record and come back as a
// 200 with success:false so the caller can render a normal result.
func (s *Server) handleExecuteAPITest(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateExecuteRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.store.GetEndpoint(r.Context(), req.EndpointID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		s.logger.Error("get endpoint for execute", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get endpoint")
		return
	}

	// The plan reference must resolve before any network activity:
	// the record insert enforces it as a foreign key, and a violation
	// there would reject the run after the probe already fired.
	if req.TestPlanID != nil {
		if _, err := s.store.GetTestPlan(r.Context(), *req.TestPlanID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, "test plan not found")
				return
			}
			s.logger.Error("get test plan for execute", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get test plan")
			return
		}
	}

	preq := probe.BuildRequest(req.Method, req.BaseURL, req.Path, req.Headers, req.Body)
	result := s.dispatcher.Do(r.Context(), preq)

	var (
		results []assertion.Result
		status  = "failed"
		notes   = ""
	)
	if result.Failed() {
		results = []assertion.Result{}
		notes = result.Body
	} else {
		var allPassed bool
		results, allPassed = assertion.Evaluate(req.Assertions, result.Status, result.Headers, result.Body, result.ElapsedMs)
		if allPassed {
			status = "passed"
		}
	}

	reqHeaders, _ := json.Marshal(preq.Headers)
	respHeaders, _ := json.Marshal(result.Headers)
	specs, _ := json.Marshal(req.Assertions)
	resultsJSON, _ := json.Marshal(results)

	exec := &storage.Execution{
		EndpointID:       req.EndpointID,
		TestPlanID:       req.TestPlanID,
		ExecutedBy:       getTokenName(r.Context()),
		Method:           preq.Method,
		URL:              preq.URL,
		RequestHeaders:   reqHeaders,
		RequestBody:      string(preq.Body),
		ResponseStatus:   result.Status,
		ResponseHeaders:  respHeaders,
		ResponseBody:     result.Body,
		ResponseTimeMs:   result.ElapsedMs,
		Status:           status,
		Assertions:       specs,
		AssertionResults: resultsJSON,
		Notes:            notes,
	}
	if err := s.store.InsertExecution(r.Context(), exec); err != nil {
		s.logger.Error("insert execution", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record execution")
		return
	}

	s.audit(r, "execute", "endpoint", req.EndpointID, "")

	view := &executionView{
		ID:               exec.ID,
		Status:           status,
		ResponseStatus:   result.Status,
		ResponseTime:     result.ElapsedMs,
		ResponseBody:     result.Body,
		ResponseHeaders:  result.Headers,
		AssertionResults: results,
	}
	if result.Failed() {
		view.ResponseBody = ""
		view.ResponseHeaders = nil
		writeJSON(w, http.StatusOK, executeResponse{
			Success:   false,
			Error:     result.Body,
			Execution: view,
		})
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		Success:   true,
		Execution: view,
	})
}
