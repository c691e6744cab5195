package storage

import (
	"context"
	"time"
)

// Store defines the complete storage interface. Executions are
// append-only: there is deliberately no update or delete operation for
// them outside of retention purging.
type Store interface {
	// Endpoints
	CreateEndpoint(ctx context.Context, e *Endpoint) error
	GetEndpoint(ctx context.Context, id int64) (*Endpoint, error)
	ListEndpoints(ctx context.Context, search string, p Pagination) (*PaginatedResult, error)
	UpdateEndpoint(ctx context.Context, e *Endpoint) error
	DeleteEndpoint(ctx context.Context, id int64) error

	// Test plans
	CreateTestPlan(ctx context.Context, tp *TestPlan) error
	GetTestPlan(ctx context.Context, id int64) (*TestPlan, error)
	ListTestPlans(ctx context.Context, p Pagination) (*PaginatedResult, error)
	DeleteTestPlan(ctx context.Context, id int64) error

	// Executions
	InsertExecution(ctx context.Context, e *Execution) error
	GetExecution(ctx context.Context, id int64) (*Execution, error)
	ListExecutions(ctx context.Context, f ExecutionFilter, p Pagination) (*PaginatedResult, error)
	CountExecutions(ctx context.Context) (int64, error)

	// Audit
	InsertAudit(ctx context.Context, entry *AuditEntry) error

	// Data retention
	PurgeOldData(ctx context.Context, before time.Time) (int64, error)

	// Lifecycle
	Close() error
}
