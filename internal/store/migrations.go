package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// Timestamps are TEXT in a fixed-width UTC layout (see timeLayout) so that
// string comparison in SQL matches chronological order.

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL UNIQUE,
	full_name       TEXT,
	is_active       INTEGER NOT NULL DEFAULT 1 CHECK(is_active IN (0, 1)),
	hashed_password TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT
);

CREATE TABLE IF NOT EXISTS todos (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL REFERENCES users(id),
	title        TEXT NOT NULL,
	description  TEXT,
	status       TEXT NOT NULL DEFAULT 'pending'
		CHECK(status IN ('pending', 'in_progress', 'completed', 'cancelled')),
	priority     TEXT NOT NULL DEFAULT 'medium'
		CHECK(priority IN ('low', 'medium', 'high', 'urgent')),
	due_date     TEXT,
	is_completed INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
	created_at   TEXT NOT NULL,
	updated_at   TEXT
);

CREATE INDEX IF NOT EXISTS idx_todos_owner_created ON todos(owner_id, created_at);
CREATE INDEX IF NOT EXISTS idx_todos_owner_due ON todos(owner_id, due_date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_todos_owner_status ON todos(owner_id, status);
CREATE INDEX IF NOT EXISTS idx_todos_owner_priority ON todos(owner_id, priority);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
