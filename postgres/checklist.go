package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

const checklistColumns = `id, task_id, item_name, is_done, sort_order`

func scanChecklist(row rowScanner, c *wbs.Checklist) error {
	return row.Scan(&c.ID, &c.TaskID, &c.ItemName, &c.Done, &c.SortOrder)
}

// CreateChecklist adds a checklist item to a task.
// Returns wbs.ErrTaskNotFound if the task doesn't exist.
func (s *PGStore) CreateChecklist(ctx context.Context, c *wbs.Checklist) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO wbs_task_checklists (`+checklistColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.TaskID, c.ItemName, c.Done, c.SortOrder,
	)
	if err != nil {
		if code, _ := pgCode(err); code == foreignKeyViolation {
			return "", wbs.ErrTaskNotFound
		}
		return "", fmt.Errorf("wbs: insert checklist: %w", err)
	}
	return c.ID, nil
}

// GetChecklist fetches a checklist item by ID.
// Returns nil, nil if not found.
func (s *PGStore) GetChecklist(ctx context.Context, checklistID string) (*wbs.Checklist, error) {
	var c wbs.Checklist
	err := scanChecklist(s.db.QueryRow(ctx,
		`SELECT `+checklistColumns+` FROM wbs_task_checklists WHERE id = $1`, checklistID), &c)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("wbs: get checklist: %w", err)
	}
	return &c, nil
}

// ListChecklists returns the checklist of a task ordered by sort_order.
func (s *PGStore) ListChecklists(ctx context.Context, taskID string) ([]wbs.Checklist, error) {
	if _, err := taskProject(ctx, s.db, taskID); err != nil {
		return nil, err
	}
	return queryChecklists(ctx, s.db,
		`SELECT `+checklistColumns+` FROM wbs_task_checklists
		 WHERE task_id = $1 ORDER BY sort_order, created_at, id`, taskID)
}

// UpdateChecklist replaces name, state and position of a checklist item.
func (s *PGStore) UpdateChecklist(ctx context.Context, c *wbs.Checklist) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE wbs_task_checklists SET item_name = $1, is_done = $2, sort_order = $3 WHERE id = $4`,
		c.ItemName, c.Done, c.SortOrder, c.ID,
	)
	if err != nil {
		return fmt.Errorf("wbs: update checklist: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrChecklistNotFound
	}
	return nil
}

// DeleteChecklist deletes a checklist item.
func (s *PGStore) DeleteChecklist(ctx context.Context, checklistID string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM wbs_task_checklists WHERE id = $1`, checklistID)
	if err != nil {
		return fmt.Errorf("wbs: delete checklist: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrChecklistNotFound
	}
	return nil
}

func listProjectChecklists(ctx context.Context, q querier, projectID string) ([]wbs.Checklist, error) {
	return queryChecklists(ctx, q,
		`SELECT c.id, c.task_id, c.item_name, c.is_done, c.sort_order
		 FROM wbs_task_checklists c
		 JOIN wbs_tasks t ON t.id = c.task_id
		 WHERE t.project_id = $1 ORDER BY c.sort_order, c.created_at, c.id`, projectID)
}

func queryChecklists(ctx context.Context, q querier, sql string, args ...any) ([]wbs.Checklist, error) {
	rows, err := q.Query(ctx, sql, args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows checklists: %w", err)
	}
	return items, nil
}
