package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"
)

func (s *SQLiteStore) InsertExecution(ctx context.Context, e *Execution) error {
	if e.RequestHeaders == nil {
		e.RequestHeaders = json.RawMessage("{}")
	}
	if e.ResponseHeaders == nil {
		e.ResponseHeaders = json.RawMessage("{}")
	}
	if e.Assertions == nil {
		e.Assertions = json.RawMessage("[]")
	}
	if e.AssertionResults == nil {
		e.AssertionResults = json.RawMessage("[]")
	}
	now := formatTime(time.Now())
	res, err := s.writeDB.ExecContext(ctx,
		`INSERT INTO executions (endpoint_id, test_plan_id, executed_by, method, url,
		 request_headers, request_body, response_status, response_headers, response_body,
		 response_time, status, assertions, assertion_results, notes, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EndpointID, nullID(e.TestPlanID), e.ExecutedBy, e.Method, e.URL,
		string(e.RequestHeaders), e.RequestBody, e.ResponseStatus, string(e.ResponseHeaders), e.ResponseBody,
		e.ResponseTimeMs, e.Status, string(e.Assertions), string(e.AssertionResults), e.Notes, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	e.ExecutedAt = parseTime(now)
	return nil
}

func (s *SQLiteStore) GetExecution(ctx context.Context, id int64) (*Execution, error) {
	row := s.readDB.QueryRowContext(ctx,
		`SELECT id, endpoint_id, test_plan_id, executed_by, method, url,
		        request_headers, request_body, response_status, response_headers, response_body,
		        response_time, status, assertions, assertion_results, notes, executed_at
		 FROM executions WHERE id = ?`, id)
	return scanExecution(row)
}

func (s *SQLiteStore) ListExecutions(ctx context.Context, f ExecutionFilter, p Pagination) (*PaginatedResult, error) {
	where := "1=1"
	var args []any
	if f.EndpointID != nil {
		where += " AND endpoint_id=?"
		args = append(args, *f.EndpointID)
	}
	if f.TestPlanID != nil {
		where += " AND test_plan_id=?"
		args = append(args, *f.TestPlanID)
	}
	if f.Status != "" {
		where += " AND status=?"
		args = append(args, f.Status)
	}

	var total int64
	countArgs := make([]any, len(args))
	copy(countArgs, args)
	err := s.readDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM executions WHERE "+where, countArgs...).Scan(&total)
	if err != nil {
		return nil, err
	}

	offset := (p.Page - 1) * p.PerPage
	args = append(args, p.PerPage, offset)
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT id, endpoint_id, test_plan_id, executed_by, method, url,
		        request_headers, request_body, response_status, response_headers, response_body,
		        response_time, status, assertions, assertion_results, notes, executed_at
		 FROM executions WHERE `+where+`
		 ORDER BY executed_at DESC, id DESC
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []*Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if executions == nil {
		executions = []*Execution{}
	}

	return &PaginatedResult{
		Data:       executions,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: int(math.Ceil(float64(total) / float64(p.PerPage))),
	}, nil
}

func (s *SQLiteStore) CountExecutions(ctx context.Context) (int64, error) {
	var total int64
	err := s.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM executions").Scan(&total)
	return total, err
}

func scanExecution(row scanner) (*Execution, error) {
	var e Execution
	var testPlanID sql.NullInt64
	var reqHeaders, respHeaders, assertions, assertionResults string
	var executedAt string
	err := row.Scan(&e.ID, &e.EndpointID, &testPlanID, &e.ExecutedBy, &e.Method, &e.URL,
		&reqHeaders, &e.RequestBody, &e.ResponseStatus, &respHeaders, &e.ResponseBody,
		&e.ResponseTimeMs, &e.Status, &assertions, &assertionResults, &e.Notes, &executedAt)
	if err != nil {
		return nil, err
	}
	if testPlanID.Valid {
		tid := testPlanID.Int64
		e.TestPlanID = &tid
	}
	e.RequestHeaders = json.RawMessage(reqHeaders)
	e.ResponseHeaders = json.RawMessage(respHeaders)
	e.Assertions = json.RawMessage(assertions)
	e.AssertionResults = json.RawMessage(assertionResults)
	e.ExecutedAt = parseTime(executedAt)
	return &e, nil
}

func (s *SQLiteStore) InsertAudit(ctx context.Context, entry *AuditEntry) error {
	now := formatTime(time.Now())
	res, err := s.writeDB.ExecContext(ctx,
		`INSERT INTO audit_log (action, entity, entity_id, token_name, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Action, entry.Entity, entry.EntityID, entry.TokenName, entry.Detail, now)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	entry.ID = id
	entry.CreatedAt = parseTime(now)
	return nil
}

func (s *SQLiteStore) PurgeOldData(ctx context.Context, before time.Time) (int64, error) {
	cutoff := formatTime(before)
	var deleted int64

	res, err := s.writeDB.ExecContext(ctx, "DELETE FROM executions WHERE executed_at < ?", cutoff)
	if err != nil {
		return deleted, err
	}
	n, _ := res.RowsAffected()
	deleted += n

	res, err = s.writeDB.ExecContext(ctx, "DELETE FROM audit_log WHERE created_at < ?", cutoff)
	if err != nil {
		return deleted, err
	}
	n, _ = res.RowsAffected()
	deleted += n

	return deleted, nil
}
