package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS wbs_employees (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    email            TEXT NOT NULL UNIQUE,
    daily_work_hours NUMERIC(5, 2) NOT NULL DEFAULT 8.0,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE TABLE IF NOT EXISTS wbs_projects (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    client_name TEXT NOT NULL DEFAULT '',
    manager_id  TEXT REFERENCES wbs_employees(id) ON DELETE SET NULL,
    budget      NUMERIC(15, 2),
    start_date  DATE,
    end_date    DATE,
    status_code TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE TABLE IF NOT EXISTS wbs_phases (
    id          TEXT PRIMARY KEY,
    project_id  TEXT NOT NULL REFERENCES wbs_projects(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    sort_order  INTEGER NOT NULL DEFAULT 0,
    color       TEXT NOT NULL DEFAULT '#1976d2',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE TABLE IF NOT EXISTS wbs_members (
    project_id       TEXT NOT NULL REFERENCES wbs_projects(id) ON DELETE CASCADE,
    employee_id      TEXT NOT NULL REFERENCES wbs_employees(id) ON DELETE CASCADE,
    role             TEXT NOT NULL DEFAULT '',
    allocation_ratio NUMERIC(5, 2) NOT NULL DEFAULT 1.0 CHECK (allocation_ratio BETWEEN 0.01 AND 999.99),
    join_date        DATE,
    leave_date       DATE,
    PRIMARY KEY (project_id, employee_id)
);

CREATE TABLE IF NOT EXISTS wbs_tasks (
    id                 TEXT PRIMARY KEY,
    project_id         TEXT NOT NULL REFERENCES wbs_projects(id) ON DELETE CASCADE,
    phase_id           TEXT REFERENCES wbs_phases(id) ON DELETE SET NULL,
    name               TEXT NOT NULL,
    description        TEXT NOT NULL DEFAULT '',
    estimated_duration NUMERIC(5, 2) CHECK (estimated_duration BETWEEN 0 AND 999.99),
    start_date         DATE,
    end_date           DATE,
    earliest_start     DATE,
    deadline           DATE,
    status_code        TEXT NOT NULL DEFAULT '',
    milestone          BOOLEAN NOT NULL DEFAULT FALSE,
    x_position         INTEGER NOT NULL DEFAULT 0,
    y_position         INTEGER NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE TABLE IF NOT EXISTS wbs_task_dependencies (
    task_id         TEXT NOT NULL REFERENCES wbs_tasks(id) ON DELETE CASCADE,
    depends_on_id   TEXT NOT NULL REFERENCES wbs_tasks(id) ON DELETE CASCADE,
    dependency_type TEXT NOT NULL DEFAULT 'FS',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
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
    is_done    BOOLEAN NOT NULL DEFAULT FALSE,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE TABLE IF NOT EXISTS wbs_codes (
    code_value TEXT PRIMARY KEY,
    code_type  TEXT NOT NULL,
    code_label TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS idx_wbs_phases_project ON wbs_phases(project_id);
CREATE INDEX IF NOT EXISTS idx_wbs_tasks_project  ON wbs_tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_wbs_deps_depends   ON wbs_task_dependencies(depends_on_id);
CREATE INDEX IF NOT EXISTS idx_wbs_checklists_task ON wbs_task_checklists(task_id);
CREATE INDEX IF NOT EXISTS idx_wbs_codes_type     ON wbs_codes(code_type);
`

// CreateSchema creates the wbs tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops every wbs table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS wbs_codes, wbs_task_checklists, wbs_task_assignees, wbs_task_dependencies, wbs_tasks,
		wbs_members, wbs_phases, wbs_projects, wbs_employees CASCADE;`)
	return err
}
