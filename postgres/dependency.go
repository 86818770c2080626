package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/wbs"
	"github.com/meikuraledutech/wbs/schedule"
)

// AddDependency inserts the edge d.TaskID -> d.DependsOnID.
// Both tasks must belong to the same project and the edge must keep the
// project's graph acyclic. The project row is locked so concurrent edits
// cannot close a cycle between them.
func (s *PGStore) AddDependency(ctx context.Context, d *wbs.Dependency) error {
	if err := d.Normalize(); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	projectID, err := taskProject(ctx, tx, d.TaskID)
	if err != nil {
		return err
	}
	otherID, err := taskProject(ctx, tx, d.DependsOnID)
	if err != nil {
		return err
	}
	if projectID != otherID {
		return fmt.Errorf("%w: tasks belong to different projects", wbs.ErrInvalidDependency)
	}

	if _, err := tx.Exec(ctx, `SELECT id FROM wbs_projects WHERE id = $1 FOR UPDATE`, projectID); err != nil {
		return fmt.Errorf("wbs: lock project: %w", err)
	}

	tasks, err := listTasks(ctx, tx, projectID)
	if err != nil {
		return err
	}
	edges, err := listDependencies(ctx, tx, projectID)
	if err != nil {
		return err
	}
	for _, e := range edges {
		if e.TaskID == d.TaskID && e.DependsOnID == d.DependsOnID {
			return wbs.ErrDependencyExists
		}
	}

	// Append the new edge and validate.
	edges = append(edges, *d)
	if err := validateAcyclic(tasks, edges); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO wbs_task_dependencies (task_id, depends_on_id, dependency_type) VALUES ($1, $2, $3)`,
		d.TaskID, d.DependsOnID, d.DependencyType,
	); err != nil {
		return fmt.Errorf("wbs: insert dependency: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("wbs: commit: %w", err)
	}
	return nil
}

// RemoveDependency deletes the edge taskID -> dependsOnID.
// Returns wbs.ErrDependencyNotFound if the edge doesn't exist.
func (s *PGStore) RemoveDependency(ctx context.Context, taskID, dependsOnID string) error {
	ct, err := s.db.Exec(ctx,
		`DELETE FROM wbs_task_dependencies WHERE task_id = $1 AND depends_on_id = $2`, taskID, dependsOnID)
	if err != nil {
		return fmt.Errorf("wbs: delete dependency: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrDependencyNotFound
	}
	return nil
}

// ListDependencies returns every edge whose dependent task belongs to the project.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListDependencies(ctx context.Context, projectID string) ([]wbs.Dependency, error) {
	return listDependencies(ctx, s.db, projectID)
}

func listDependencies(ctx context.Context, q querier, projectID string) ([]wbs.Dependency, error) {
	rows, err := q.Query(ctx,
		`SELECT d.task_id, d.depends_on_id, d.dependency_type
		 FROM wbs_task_dependencies d
		 JOIN wbs_tasks t ON t.id = d.task_id
		 WHERE t.project_id = $1
		 ORDER BY d.created_at, d.task_id, d.depends_on_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("wbs: list dependencies: %w", err)
	}
	defer rows.Close()

	deps := []wbs.Dependency{}
	for rows.Next() {
		var d wbs.Dependency
		if err := rows.Scan(&d.TaskID, &d.DependsOnID, &d.DependencyType); err != nil {
			return nil, fmt.Errorf("wbs: scan dependency: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows dependencies: %w", err)
	}
	return deps, nil
}

func taskProject(ctx context.Context, q querier, taskID string) (string, error) {
	var projectID string
	err := q.QueryRow(ctx, `SELECT project_id FROM wbs_tasks WHERE id = $1`, taskID).Scan(&projectID)
	if err != nil {
		if isNoRows(err) {
			return "", wbs.ErrTaskNotFound
		}
		return "", fmt.Errorf("wbs: find task: %w", err)
	}
	return projectID, nil
}

// validateAcyclic checks that the edges don't form a cycle over the tasks.
func validateAcyclic(tasks []wbs.Task, edges []wbs.Dependency) error {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	_, err := schedule.TopoSort(ids, edges)
	return err
}
