package storage

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS endpoints (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	base_url    TEXT    NOT NULL,
	path        TEXT    NOT NULL DEFAULT '',
	method      TEXT    NOT NULL DEFAULT 'GET',
	headers     TEXT    NOT NULL DEFAULT '{}',
	body        TEXT    NOT NULL DEFAULT '',
	created_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
	updated_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);

CREATE TABLE IF NOT EXISTS test_plans (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	created_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);

CREATE TABLE IF NOT EXISTS executions (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	endpoint_id       INTEGER NOT NULL REFERENCES endpoints(id) ON DELETE CASCADE,
	test_plan_id      INTEGER REFERENCES test_plans(id) ON DELETE SET NULL,
	executed_by       TEXT    NOT NULL DEFAULT '',
	method            TEXT    NOT NULL,
	url               TEXT    NOT NULL,
	request_headers   TEXT    NOT NULL DEFAULT '{}',
	request_body      TEXT    NOT NULL DEFAULT '',
	response_status   INTEGER NOT NULL DEFAULT 0,
	response_headers  TEXT    NOT NULL DEFAULT '{}',
	response_body     TEXT    NOT NULL DEFAULT '',
	response_time     INTEGER NOT NULL DEFAULT 0,
	status            TEXT    NOT NULL,
	assertions        TEXT    NOT NULL DEFAULT '[]',
	assertion_results TEXT    NOT NULL DEFAULT '[]',
	notes             TEXT    NOT NULL DEFAULT '',
	executed_at       TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);

CREATE INDEX IF NOT EXISTS idx_executions_endpoint ON executions(endpoint_id, executed_at DESC);
CREATE INDEX IF NOT EXISTS idx_executions_executed_at ON executions(executed_at);

CREATE TABLE IF NOT EXISTS audit_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	action     TEXT    NOT NULL,
	entity     TEXT    NOT NULL,
	entity_id  INTEGER NOT NULL DEFAULT 0,
	token_name TEXT    NOT NULL DEFAULT '',
	detail     TEXT    NOT NULL DEFAULT '',
	created_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);

CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
`

// migrations holds incremental schema changes after the initial schema.
var migrations = []struct {
	version int
	sql     string
}{}
