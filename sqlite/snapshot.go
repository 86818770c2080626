package sqlite

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/wbs"
)

// LoadSnapshot reads everything needed to schedule a project inside one
// transaction so every part reflects the same state.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, projectID string) (*wbs.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback()

	project, err := getProject(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, wbs.ErrProjectNotFound
	}

	snap := &wbs.Snapshot{
		Project:     *project,
		Assignments: make(map[string]string),
		Allocations: make(map[string]float64),
		Employees:   make(map[string]wbs.Employee),
		Phases:      make(map[string]wbs.Phase),
	}

	if snap.Tasks, err = listTasks(ctx, tx, projectID); err != nil {
		return nil, err
	}
	if snap.Dependencies, err = listDependencies(ctx, tx, projectID); err != nil {
		return nil, err
	}

	members, err := listMembers(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		snap.Allocations[m.EmployeeID] = m.AllocationRatio
	}

	if snap.Checklists, err = listProjectChecklists(ctx, tx, projectID); err != nil {
		return nil, err
	}

	phases, err := listPhases(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	for _, ph := range phases {
		snap.Phases[ph.ID] = ph
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT a.task_id, e.id, e.name, e.email, e.daily_work_hours
		 FROM wbs_task_assignees a
		 JOIN wbs_tasks t ON t.id = a.task_id
		 JOIN wbs_employees e ON e.id = a.employee_id
		 WHERE t.project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("wbs: list assignees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID string
		var e wbs.Employee
		if err := rows.Scan(&taskID, &e.ID, &e.Name, &e.Email, &e.DailyWorkHours); err != nil {
			return nil, fmt.Errorf("wbs: scan assignee: %w", err)
		}
		snap.Assignments[taskID] = e.ID
		snap.Employees[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows assignees: %w", err)
	}

	return snap, nil
}

// SaveSchedule writes the computed dates of every task in one transaction.
func (s *SQLiteStore) SaveSchedule(ctx context.Context, projectID string, dates []wbs.TaskDates) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE wbs_tasks SET start_date = ?, end_date = ? WHERE id = ? AND project_id = ?`)
	if err != nil {
		return fmt.Errorf("wbs: prepare update: %w", err)
	}
	defer stmt.Close()

	for _, d := range dates {
		res, err := stmt.ExecContext(ctx, dateArg(&d.StartDate), dateArg(&d.EndDate), d.TaskID, projectID)
		if err != nil {
			return fmt.Errorf("wbs: update task %s: %w", d.TaskID, err)
		}
		if err := expectAffected(res, wbs.ErrTaskNotFound); err != nil {
			return fmt.Errorf("%w: %s", err, d.TaskID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wbs: commit: %w", err)
	}
	return nil
}
