package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/wbs"
)

// LoadSnapshot reads everything needed to schedule a project inside one
// read-only repeatable-read transaction, so all parts see the same state.
// Returns wbs.ErrProjectNotFound if the project doesn't exist.
func (s *PGStore) LoadSnapshot(ctx context.Context, projectID string) (*wbs.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

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

	rows, err := tx.Query(ctx,
		`SELECT a.task_id, e.id, e.name, e.email, e.daily_work_hours
		 FROM wbs_task_assignees a
		 JOIN wbs_tasks t ON t.id = a.task_id
		 JOIN wbs_employees e ON e.id = a.employee_id
		 WHERE t.project_id = $1`, projectID)
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

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("wbs: commit: %w", err)
	}
	return snap, nil
}

// SaveSchedule writes the computed dates of every task in one transaction.
// Any task missing from the project aborts the whole write.
func (s *PGStore) SaveSchedule(ctx context.Context, projectID string, dates []wbs.TaskDates) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, d := range dates {
		batch.Queue(
			`UPDATE wbs_tasks SET start_date = $1, end_date = $2 WHERE id = $3 AND project_id = $4`,
			d.StartDate, d.EndDate, d.TaskID, projectID,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, d := range dates {
		ct, err := br.Exec()
		if err != nil {
			br.Close()
			return fmt.Errorf("wbs: update task %s: %w", d.TaskID, err)
		}
		if ct.RowsAffected() == 0 {
			br.Close()
			return fmt.Errorf("%w: %s", wbs.ErrTaskNotFound, d.TaskID)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("wbs: close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("wbs: commit: %w", err)
	}
	return nil
}
