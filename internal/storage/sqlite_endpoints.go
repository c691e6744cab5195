package storage

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

func (s *SQLiteStore) CreateEndpoint(ctx context.Context, e *Endpoint) error {
	if e.Headers == nil {
		e.Headers = json.RawMessage("{}")
	}
	now := formatTime(time.Now())
	res, err := s.writeDB.ExecContext(ctx,
		`INSERT INTO endpoints (name, description, base_url, path, method, headers, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Description, e.BaseURL, e.Path, e.Method,
		string(e.Headers), string(e.Body), now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	e.CreatedAt = parseTime(now)
	e.UpdatedAt = parseTime(now)
	return nil
}

func (s *SQLiteStore) GetEndpoint(ctx context.Context, id int64) (*Endpoint, error) {
	row := s.readDB.QueryRowContext(ctx,
		`SELECT id, name, description, base_url, path, method, headers, body, created_at, updated_at
		 FROM endpoints WHERE id = ?`, id)
	return scanEndpoint(row)
}

func (s *SQLiteStore) ListEndpoints(ctx context.Context, search string, p Pagination) (*PaginatedResult, error) {
	where := "1=1"
	var args []any
	if search != "" {
		where += " AND (name LIKE '%' || ? || '%' OR base_url LIKE '%' || ? || '%')"
		args = append(args, search, search)
	}

	var total int64
	countArgs := make([]any, len(args))
	copy(countArgs, args)
	err := s.readDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM endpoints WHERE "+where, countArgs...).Scan(&total)
	if err != nil {
		return nil, err
	}

	offset := (p.Page - 1) * p.PerPage
	args = append(args, p.PerPage, offset)
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT id, name, description, base_url, path, method, headers, body, created_at, updated_at
		 FROM endpoints WHERE `+where+`
		 ORDER BY name COLLATE NOCASE ASC
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []*Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if endpoints == nil {
		endpoints = []*Endpoint{}
	}

	return &PaginatedResult{
		Data:       endpoints,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: int(math.Ceil(float64(total) / float64(p.PerPage))),
	}, nil
}

func (s *SQLiteStore) UpdateEndpoint(ctx context.Context, e *Endpoint) error {
	if e.Headers == nil {
		e.Headers = json.RawMessage("{}")
	}
	now := formatTime(time.Now())
	_, err := s.writeDB.ExecContext(ctx,
		`UPDATE endpoints SET name=?, description=?, base_url=?, path=?, method=?, headers=?, body=?, updated_at=?
		 WHERE id=?`,
		e.Name, e.Description, e.BaseURL, e.Path, e.Method,
		string(e.Headers), string(e.Body), now, e.ID)
	return err
}

func (s *SQLiteStore) DeleteEndpoint(ctx context.Context, id int64) error {
	_, err := s.writeDB.ExecContext(ctx, "DELETE FROM endpoints WHERE id=?", id)
	return err
}

func scanEndpoint(row scanner) (*Endpoint, error) {
	var e Endpoint
	var headers, body, createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.BaseURL, &e.Path, &e.Method,
		&headers, &body, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Headers = json.RawMessage(headers)
	if body != "" {
		e.Body = json.RawMessage(body)
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}
