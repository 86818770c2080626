package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

const checklistColumns = `id, task_id, item_name, is_done, sort_order`

func scanChecklist(row scanner, c *wbs.Checklist) error {
	return row.Scan(&c.ID, &c.TaskID, &c.ItemName, &c.Done, &c.SortOrder)
}

// CreateChecklist adds a checklist item to an existing task.
func (s *SQLiteStore) CreateChecklist(ctx context.Context, c *wbs.Checklist) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := taskProject(ctx, s.db, c.TaskID); err != nil {
		return "", err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wbs_task_checklists (`+checklistColumns+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, c.ItemName, c.Done, c.SortOrder,
	)
	if err != nil {
		return "", fmt.Errorf("wbs: insert checklist: %w", err)
	}
	return c.ID, nil
}

// GetChecklist retrieves a checklist item by its ID.
func (s *SQLiteStore) GetChecklist(ctx context.Context, checklistID string) (*wbs.Checklist, error) {
	c := &wbs.Checklist{}
	err := scanChecklist(s.db.QueryRowContext(ctx,
		`SELECT `+checklistColumns+` FROM wbs_task_checklists WHERE id = ?`, checklistID), c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wbs: get checklist: %w", err)
	}
	return c, nil
}

// ListChecklists returns the checklist of a task ordered by sort_order.
func (s *SQLiteStore) ListChecklists(ctx context.Context, taskID string) ([]wbs.Checklist, error) {
	if _, err := taskProject(ctx, s.db, taskID); err != nil {
		return nil, err
	}
	return queryChecklists(ctx, s.db,
		`SELECT `+checklistColumns+` FROM wbs_task_checklists WHERE task_id = ? ORDER BY sort_order, rowid`, taskID)
}

// UpdateChecklist replaces name, state and position of a checklist item.
func (s *SQLiteStore) UpdateChecklist(ctx context.Context, c *wbs.Checklist) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE wbs_task_checklists SET item_name = ?, is_done = ?, sort_order = ? WHERE id = ?`,
		c.ItemName, c.Done, c.SortOrder, c.ID,
	)
	if err != nil {
		return fmt.Errorf("wbs: update checklist: %w", err)
	}
	return expectAffected(res, wbs.ErrChecklistNotFound)
}

// DeleteChecklist deletes a checklist item.
func (s *SQLiteStore) DeleteChecklist(ctx context.Context, checklistID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wbs_task_checklists WHERE id = ?`, checklistID)
	if err != nil {
		return fmt.Errorf("wbs: delete checklist: %w", err)
	}
	return expectAffected(res, wbs.ErrChecklistNotFound)
}

func listProjectChecklists(ctx context.Context, exec executor, projectID string) ([]wbs.Checklist, error) {
	return queryChecklists(ctx, exec,
		`SELECT c.id, c.task_id, c.item_name, c.is_done, c.sort_order
		 FROM wbs_task_checklists c
		 JOIN wbs_tasks t ON t.id = c.task_id
		 WHERE t.project_id = ? ORDER BY c.sort_order, c.rowid`, projectID)
}

func queryChecklists(ctx context.Context, exec executor, query string, args ...any) ([]wbs.Checklist, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("wbs: list checklists: %w", err)
	}
	defer rows.Close()

	items := []wbs.Checklist{}
	for rows.Next() {
		var c wbs.Checklist
		if err := scanChecklist(rows, &c); err != nil {
			return nil, fmt.Errorf("wbs: scan checklist: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
