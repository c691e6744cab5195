package storage

import (
	"context"
	"math"
	"time"
)

func (s *SQLiteStore) CreateTestPlan(ctx context.Context, tp *TestPlan) error {
	now := formatTime(time.Now())
	res, err := s.writeDB.ExecContext(ctx,
		`INSERT INTO test_plans (name, description, created_at) VALUES (?, ?, ?)`,
		tp.Name, tp.Description, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tp.ID = id
	tp.CreatedAt = parseTime(now)
	return nil
}

func (s *SQLiteStore) GetTestPlan(ctx context.Context, id int64) (*TestPlan, error) {
	var tp TestPlan
	var createdAt string
	err := s.readDB.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM test_plans WHERE id = ?`, id).
		Scan(&tp.ID, &tp.Name, &tp.Description, &createdAt)
	if err != nil {
		return nil, err
	}
	tp.CreatedAt = parseTime(createdAt)
	return &tp, nil
}

func (s *SQLiteStore) ListTestPlans(ctx context.Context, p Pagination) (*PaginatedResult, error) {
	var total int64
	if err := s.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM test_plans").Scan(&total); err != nil {
		return nil, err
	}

	offset := (p.Page - 1) * p.PerPage
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM test_plans
		 ORDER BY name COLLATE NOCASE ASC LIMIT ? OFFSET ?`, p.PerPage, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*TestPlan
	for rows.Next() {
		var tp TestPlan
		var createdAt string
		if err := rows.Scan(&tp.ID, &tp.Name, &tp.Description, &createdAt); err != nil {
			return nil, err
		}
		tp.CreatedAt = parseTime(createdAt)
		plans = append(plans, &tp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []*TestPlan{}
	}

	return &PaginatedResult{
		Data:       plans,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: int(math.Ceil(float64(total) / float64(p.PerPage))),
	}, nil
}

func (s *SQLiteStore) DeleteTestPlan(ctx context.Context, id int64) error {
	_, err := s.writeDB.ExecContext(ctx, "DELETE FROM test_plans WHERE id=?", id)
	return err
}
