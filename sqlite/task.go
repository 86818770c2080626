package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

const taskColumns = `id, project_id, phase_id, name, description, estimated_duration, start_date, end_date,
	earliest_start, deadline, status_code, milestone, x_position, y_position`

func scanTask(row scanner, t *wbs.Task) error {
	return row.Scan(&t.ID, &t.ProjectID, &t.PhaseID, &t.Name, &t.Description, &t.EstimatedDuration,
		dateDest(&t.StartDate), dateDest(&t.EndDate), dateDest(&t.EarliestStart), dateDest(&t.Deadline),
		&t.StatusCode, &t.Milestone, &t.XPosition, &t.YPosition)
}

func checkPhase(ctx context.Context, exec executor, projectID string, phaseID *string) error {
	if phaseID == nil {
		return nil
	}
	ok, err := exists(ctx, exec,
		`SELECT EXISTS (SELECT 1 FROM wbs_phases WHERE id = ? AND project_id = ?)`, *phaseID, projectID)
	if err != nil {
		return fmt.Errorf("wbs: find phase: %w", err)
	}
	if !ok {
		return wbs.ErrPhaseNotFound
	}
	return nil
}

func taskProject(ctx context.Context, exec executor, taskID string) (string, error) {
	var projectID string
	err := exec.QueryRowContext(ctx, `SELECT project_id FROM wbs_tasks WHERE id = ?`, taskID).Scan(&projectID)
	if err == sql.ErrNoRows {
		return "", wbs.ErrTaskNotFound
	}
	if err != nil {
		return "", fmt.Errorf("wbs: find task: %w", err)
	}
	return projectID, nil
}

// CreateTask inserts a new task. If t.ID is empty, a new UUID is generated.
// Computed dates are never taken from the caller.
func (s *SQLiteStore) CreateTask(ctx context.Context, t *wbs.Task) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.StartDate, t.EndDate = nil, nil

	ok, err := projectExists(ctx, s.db, t.ProjectID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", wbs.ErrProjectNotFound
	}
	if err := checkPhase(ctx, s.db, t.ProjectID, t.PhaseID); err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wbs_tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.PhaseID, t.Name, t.Description, t.EstimatedDuration,
		dateArg(t.EarliestStart), dateArg(t.Deadline), t.StatusCode, t.Milestone, t.XPosition, t.YPosition,
	)
	if err != nil {
		return "", fmt.Errorf("wbs: insert task: %w", err)
	}
	return t.ID, nil
}

// GetTask retrieves a task by its ID.
func (s *SQLiteStore) GetTask(ctx context.Context, taskID string) (*wbs.Task, error) {
	t := &wbs.Task{}
	err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM wbs_tasks WHERE id = ?`, taskID), t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wbs: get task: %w", err)
	}
	return t, nil
}

// ListTasks returns the tasks of a project in insertion order.
func (s *SQLiteStore) ListTasks(ctx context.Context, projectID string) ([]wbs.Task, error) {
	return listTasks(ctx, s.db, projectID)
}

func listTasks(ctx context.Context, exec executor, projectID string) ([]wbs.Task, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM wbs_tasks WHERE project_id = ? ORDER BY rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("wbs: list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []wbs.Task{}
	for rows.Next() {
		var t wbs.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("wbs: scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask updates the descriptive fields of a task.
func (s *SQLiteStore) UpdateTask(ctx context.Context, t *wbs.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	projectID, err := taskProject(ctx, s.db, t.ID)
	if err != nil {
		return err
	}
	if err := checkPhase(ctx, s.db, projectID, t.PhaseID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE wbs_tasks SET phase_id = ?, name = ?, description = ?, estimated_duration = ?,
		 earliest_start = ?, deadline = ?, status_code = ?, milestone = ?, x_position = ?, y_position = ?
		 WHERE id = ?`,
		t.PhaseID, t.Name, t.Description, t.EstimatedDuration, dateArg(t.EarliestStart), dateArg(t.Deadline),
		t.StatusCode, t.Milestone, t.XPosition, t.YPosition, t.ID,
	)
	if err != nil {
		return fmt.Errorf("wbs: update task: %w", err)
	}
	return expectAffected(res, wbs.ErrTaskNotFound)
}

// DeleteTask deletes a task with its dependencies and assignment.
func (s *SQLiteStore) DeleteTask(ctx context.Context, taskID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wbs_tasks WHERE id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("wbs: delete task: %w", err)
	}
	return expectAffected(res, wbs.ErrTaskNotFound)
}

// AssignTask makes employeeID the single assignee of the task.
func (s *SQLiteStore) AssignTask(ctx context.Context, taskID, employeeID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback()

	projectID, err := taskProject(ctx, tx, taskID)
	if err != nil {
		return err
	}
	ok, err := isMember(ctx, tx, projectID, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return wbs.ErrNotProjectMember
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wbs_task_assignees (task_id, employee_id) VALUES (?, ?)
		 ON CONFLICT (task_id) DO UPDATE SET employee_id = excluded.employee_id`,
		taskID, employeeID,
	); err != nil {
		return fmt.Errorf("wbs: assign task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wbs: commit: %w", err)
	}
	return nil
}

// UnassignTask removes the assignee of an existing task, if any.
func (s *SQLiteStore) UnassignTask(ctx context.Context, taskID string) error {
	if _, err := taskProject(ctx, s.db, taskID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM wbs_task_assignees WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("wbs: unassign task: %w", err)
	}
	return nil
}
