package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

const taskColumns = `id, project_id, phase_id, name, description, estimated_duration, start_date, end_date,
	earliest_start, deadline, status_code, milestone, x_position, y_position`

func scanTask(row rowScanner, t *wbs.Task) error {
	return row.Scan(&t.ID, &t.ProjectID, &t.PhaseID, &t.Name, &t.Description, &t.EstimatedDuration,
		&t.StartDate, &t.EndDate, &t.EarliestStart, &t.Deadline, &t.StatusCode, &t.Milestone,
		&t.XPosition, &t.YPosition)
}

// checkPhase verifies that phaseID, when set, belongs to projectID.
func checkPhase(ctx context.Context, q querier, projectID string, phaseID *string) error {
	if phaseID == nil {
		return nil
	}
	var owner string
	err := q.QueryRow(ctx, `SELECT project_id FROM wbs_phases WHERE id = $1`, *phaseID).Scan(&owner)
	if err != nil {
		if isNoRows(err) {
			return wbs.ErrPhaseNotFound
		}
		return fmt.Errorf("wbs: find phase: %w", err)
	}
	if owner != projectID {
		return wbs.ErrPhaseNotFound
	}
	return nil
}

// CreateTask inserts a task. If t.ID is empty, a UUID is generated.
// Computed dates are never taken from the caller.
func (s *PGStore) CreateTask(ctx context.Context, t *wbs.Task) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.StartDate, t.EndDate = nil, nil

	if err := checkPhase(ctx, s.db, t.ProjectID, t.PhaseID); err != nil {
		return "", err
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO wbs_tasks (`+taskColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, NULL, NULL, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.ProjectID, t.PhaseID, t.Name, t.Description, t.EstimatedDuration,
		t.EarliestStart, t.Deadline, t.StatusCode, t.Milestone, t.XPosition, t.YPosition,
	)
	if err != nil {
		switch code, _ := pgCode(err); code {
		case foreignKeyViolation:
			return "", wbs.ErrProjectNotFound
		case checkViolation:
			return "", wbs.ErrInvalidEstimate
		}
		return "", fmt.Errorf("wbs: insert task: %w", err)
	}
	return t.ID, nil
}

// GetTask fetches a single task by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetTask(ctx context.Context, taskID string) (*wbs.Task, error) {
	var t wbs.Task
	err := scanTask(s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM wbs_tasks WHERE id = $1`, taskID), &t)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("wbs: get task: %w", err)
	}
	return &t, nil
}

// ListTasks returns all tasks of a project in creation order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListTasks(ctx context.Context, projectID string) ([]wbs.Task, error) {
	return listTasks(ctx, s.db, projectID)
}

func listTasks(ctx context.Context, q querier, projectID string) ([]wbs.Task, error) {
	rows, err := q.Query(ctx,
		`SELECT `+taskColumns+` FROM wbs_tasks WHERE project_id = $1 ORDER BY created_at, id`, projectID)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask updates the descriptive fields of a task. Project and computed
// dates are left untouched. Returns wbs.ErrTaskNotFound if the task doesn't exist.
func (s *PGStore) UpdateTask(ctx context.Context, t *wbs.Task) error {
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

	ct, err := s.db.Exec(ctx,
		`UPDATE wbs_tasks SET phase_id = $1, name = $2, description = $3, estimated_duration = $4,
		 earliest_start = $5, deadline = $6, status_code = $7, milestone = $8, x_position = $9, y_position = $10
		 WHERE id = $11`,
		t.PhaseID, t.Name, t.Description, t.EstimatedDuration, t.EarliestStart, t.Deadline,
		t.StatusCode, t.Milestone, t.XPosition, t.YPosition, t.ID,
	)
	if err != nil {
		if code, _ := pgCode(err); code == checkViolation {
			return wbs.ErrInvalidEstimate
		}
		return fmt.Errorf("wbs: update task: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrTaskNotFound
	}
	return nil
}

// DeleteTask deletes a task. Dependencies and assignment are cascade-deleted by the DB.
// Returns wbs.ErrTaskNotFound if the task doesn't exist.
func (s *PGStore) DeleteTask(ctx context.Context, taskID string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM wbs_tasks WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("wbs: delete task: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrTaskNotFound
	}
	return nil
}

// AssignTask makes employeeID the single assignee of the task, replacing any
// previous one. The employee must be a member of the task's project.
func (s *PGStore) AssignTask(ctx context.Context, taskID, employeeID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	projectID, err := taskProject(ctx, tx, taskID)
	if err != nil {
		return err
	}

	var member bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM wbs_members WHERE project_id = $1 AND employee_id = $2)`,
		projectID, employeeID,
	).Scan(&member)
	if err != nil {
		return fmt.Errorf("wbs: find member: %w", err)
	}
	if !member {
		return wbs.ErrNotProjectMember
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO wbs_task_assignees (task_id, employee_id) VALUES ($1, $2)
		 ON CONFLICT (task_id) DO UPDATE SET employee_id = EXCLUDED.employee_id`,
		taskID, employeeID,
	); err != nil {
		return fmt.Errorf("wbs: assign task: %w", err)
	}

	return tx.Commit(ctx)
}

// UnassignTask removes the assignee of a task.
// No error if the task has no assignee; wbs.ErrTaskNotFound if there is no task.
func (s *PGStore) UnassignTask(ctx context.Context, taskID string) error {
	if _, err := taskProject(ctx, s.db, taskID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM wbs_task_assignees WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("wbs: unassign task: %w", err)
	}
	return nil
}
