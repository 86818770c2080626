package sqlite

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/wbs"
	"github.com/meikuraledutech/wbs/schedule"
)

// AddDependency inserts the edge d.TaskID -> d.DependsOnID after checking
// that both tasks share a project and the edge keeps the graph acyclic.
// SQLite serializes writers, so the check and the insert see the same graph.
func (s *SQLiteStore) AddDependency(ctx context.Context, d *wbs.Dependency) error {
	if err := d.Normalize(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback()

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

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	if _, err := schedule.TopoSort(ids, append(edges, *d)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wbs_task_dependencies (task_id, depends_on_id, dependency_type) VALUES (?, ?, ?)`,
		d.TaskID, d.DependsOnID, d.DependencyType,
	); err != nil {
		return fmt.Errorf("wbs: insert dependency: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wbs: commit: %w", err)
	}
	return nil
}

// RemoveDependency deletes the edge taskID -> dependsOnID.
func (s *SQLiteStore) RemoveDependency(ctx context.Context, taskID, dependsOnID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wbs_task_dependencies WHERE task_id = ? AND depends_on_id = ?`, taskID, dependsOnID)
	if err != nil {
		return fmt.Errorf("wbs: delete dependency: %w", err)
	}
	return expectAffected(res, wbs.ErrDependencyNotFound)
}

// ListDependencies returns every edge whose dependent task belongs to the project.
func (s *SQLiteStore) ListDependencies(ctx context.Context, projectID string) ([]wbs.Dependency, error) {
	return listDependencies(ctx, s.db, projectID)
}

func listDependencies(ctx context.Context, exec executor, projectID string) ([]wbs.Dependency, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT d.task_id, d.depends_on_id, d.dependency_type
		 FROM wbs_task_dependencies d
		 JOIN wbs_tasks t ON t.id = d.task_id
		 WHERE t.project_id = ?
		 ORDER BY d.rowid`, projectID)
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
	return deps, rows.Err()
}
