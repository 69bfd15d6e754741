package sqlite

// baseSchema creates the tables and indexes a fresh workspace database needs
// (spec §4.2). workspace_metadata is deliberately not part of the base
// tasks table — it is added by a forward-only migration (schema.go
// companion migrations.go) exactly as spec §4.2 describes, so that a
// database created by an older build and opened by a newer one upgrades in
// place instead of needing a destructive rebuild.
const baseSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'todo',
	priority        TEXT NOT NULL DEFAULT 'medium',
	parent_task_id  INTEGER,
	depends_on      TEXT NOT NULL DEFAULT '[]',
	tags            TEXT NOT NULL DEFAULT '',
	blocker_reason  TEXT NOT NULL DEFAULT '',
	file_references TEXT NOT NULL DEFAULT '[]',
	created_by      TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL,
	completed_at    TEXT,
	deleted_at      TEXT,
	FOREIGN KEY (parent_task_id) REFERENCES tasks(id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id);
CREATE INDEX IF NOT EXISTS idx_tasks_deleted ON tasks(deleted_at);

CREATE TABLE IF NOT EXISTS entities (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_type TEXT NOT NULL,
	name        TEXT NOT NULL,
	identifier  TEXT,
	description TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	deleted_at  TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_entities_type_identifier
	ON entities(entity_type, identifier) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_entities_deleted ON entities(deleted_at);

CREATE TABLE IF NOT EXISTS task_entity_links (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id    INTEGER NOT NULL REFERENCES tasks(id),
	entity_id  INTEGER NOT NULL REFERENCES entities(id),
	created_by TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_links_task ON task_entity_links(task_id);
CREATE INDEX IF NOT EXISTS idx_links_entity ON task_entity_links(entity_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_links_task_entity
	ON task_entity_links(task_id, entity_id) WHERE deleted_at IS NULL;
`
