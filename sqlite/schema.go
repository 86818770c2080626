package sqlite

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS wbs_employees (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    email            TEXT NOT NULL UNIQUE,
    daily_work_hours REAL NOT NULL DEFAULT 8.0
);

CREATE TABLE IF NOT EXISTS wbs_projects (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    client_name TEXT NOT NULL DEFAULT '',
    manager_id  TEXT REFERENCES wbs_employees(id) ON DELETE SET NULL,
    budget      REAL,
    start_date  TEXT,
    end_date    TEXT,
    status_code TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS wbs_phases (
    id          TEXT PRIMARY KEY,
    project_id  TEXT NOT NULL REFERENCES wbs_projects(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    sort_order  INTEGER NOT NULL DEFAULT 0,
    color       TEXT NOT NULL DEFAULT '#1976d2'
);

CREATE TABLE IF NOT EXISTS wbs_members (
    project_id       TEXT NOT NULL REFERENCES wbs_projects(id) ON DELETE CASCADE,
    employee_id      TEXT NOT NULL REFERENCES wbs_employees(id) ON DELETE CASCADE,
    role             TEXT NOT NULL DEFAULT '',
    allocation_ratio REAL NOT NULL DEFAULT 1.0 CHECK (allocation_ratio BETWEEN 0.01 AND 999.99),
    join_date        TEXT,
    leave_date       TEXT,
    PRIMARY KEY (project_id, employee_id)
);

CREATE TABLE IF NOT EXISTS wbs_tasks (
    id                 TEXT PRIMARY KEY,
    project_id         TEXT NOT NULL REFERENCES wbs_projects(id) ON DELETE CASCADE,
    phase_id           TEXT REFERENCES wbs_phases(id) ON DELETE SET NULL,
    name               TEXT NOT NULL,
    description        TEXT NOT NULL DEFAULT '',
    estimated_duration REAL CHECK (estimated_duration BETWEEN 0 AND 999.99),
    start_date         TEXT,
    end_date           TEXT,
    earliest_start     TEXT,
    deadline           TEXT,
    status_code        TEXT NOT NULL DEFAULT '',
    milestone          INTEGER NOT NULL DEFAULT 0,
    x_position         INTEGER NOT NULL DEFAULT 0,
    y_position         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS wbs_task_dependencies (
    task_id         TEXT NOT NULL REFERENCES wbs_tasks(id) ON DELETE CASCADE,
    depends_on_id   TEXT NOT NULL REFERENCES wbs_tasks(id) ON DELETE CASCADE,
    dependency_type TEXT NOT NULL DEFAULT 'FS',
    PRIMARY KEY (task_id, depends_on_id)
);

CREATE TABLE IF NOT EXISTS wbs_task_assignees (
    task_id     TEXT PRIMARY KEY REFERENCES wbs_tasks(id) ON DELETE CASCADE,
    employee_id TEXT NOT NULL REFERENCES wbs_employees(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS wbs_task_checklists (
    id         TEXT PRIMARY KEY,
    task_id    TEXT NOT NULL REFERENCES wbs_tasks(id) ON DELETE CASCADE,
    item_name  TEXT NOT NULL,
    is_done    INTEGER NOT NULL DEFAULT 0,
    sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS wbs_codes (
    code_value TEXT PRIMARY KEY,
    code_type  TEXT NOT NULL,
    code_label TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_wbs_phases_project ON wbs_phases(project_id);
CREATE INDEX IF NOT EXISTS idx_wbs_tasks_project  ON wbs_tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_wbs_deps_depends   ON wbs_task_dependencies(depends_on_id);
CREATE INDEX IF NOT EXISTS idx_wbs_checklists_task ON wbs_task_checklists(task_id);
CREATE INDEX IF NOT EXISTS idx_wbs_codes_type     ON wbs_codes(code_type);
`

// CreateSchema creates the wbs tables if they don't exist.
func (s *SQLiteStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropSchema drops every wbs table.
func (s *SQLiteStore) DropSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DROP TABLE IF EXISTS wbs_codes;
		DROP TABLE IF EXISTS wbs_task_checklists;
		DROP TABLE IF EXISTS wbs_task_assignees;
		DROP TABLE IF EXISTS wbs_task_dependencies;
		DROP TABLE IF EXISTS wbs_tasks;
		DROP TABLE IF EXISTS wbs_members;
		DROP TABLE IF EXISTS wbs_phases;
		DROP TABLE IF EXISTS wbs_projects;
		DROP TABLE IF EXISTS wbs_employees;`)
	return err
}
