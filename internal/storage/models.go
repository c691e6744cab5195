package storage

import (
	"encoding/json"
	"time"
)

// Endpoint is a registered API endpoint available for probing.
type Endpoint struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	BaseURL     string          `json:"base_url"`
	Path        string          `json:"path"`
	Method      string          `json:"method"`
	Headers     json.RawMessage `json:"headers,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TestPlan groups executions under a named plan.
type TestPlan struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Execution is the immutable audit record of one probe: the request
// that was sent, the response (or transport failure) that came back,
// and every assertion with its outcome. Created exactly once per probe
// invocation, never updated.
type Execution struct {
	ID               int64           `json:"id"`
	EndpointID       int64           `json:"endpoint_id"`
	TestPlanID       *int64          `json:"test_plan_id,omitempty"`
	ExecutedBy       string          `json:"executed_by"`
	Method           string          `json:"method"`
	URL              string          `json:"url"`
	RequestHeaders   json.RawMessage `json:"request_headers,omitempty"`
	RequestBody      string          `json:"request_body,omitempty"`
	ResponseStatus   int             `json:"response_status"`
	ResponseHeaders  json.RawMessage `json:"response_headers,omitempty"`
	ResponseBody     string          `json:"response_body,omitempty"`
	ResponseTimeMs   int64           `json:"response_time_ms"`
	Status           string          `json:"status"` // passed, failed
	Assertions       json.RawMessage `json:"assertions"`
	AssertionResults json.RawMessage `json:"assertion_results"`
	Notes            string          `json:"notes,omitempty"`
	ExecutedAt       time.Time       `json:"executed_at"`
}

// ExecutionFilter holds filter parameters for listing executions.
type ExecutionFilter struct {
	EndpointID *int64
	TestPlanID *int64
	Status     string
}

// AuditEntry logs a mutation or probe run.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	TokenName string    `json:"token_name"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Pagination contains parameters for list queries.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// PaginatedResult wraps a list response with metadata.
type PaginatedResult struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
}
