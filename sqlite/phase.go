package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

// CreatePhase inserts a phase into an existing project.
func (s *SQLiteStore) CreatePhase(ctx context.Context, ph *wbs.Phase) (string, error) {
	if ph.ID == "" {
		ph.ID = uuid.NewString()
	}
	if ph.Color == "" {
		ph.Color = wbs.DefaultPhaseColor
	}

	ok, err := projectExists(ctx, s.db, ph.ProjectID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", wbs.ErrProjectNotFound
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wbs_phases (id, project_id, name, description, sort_order, color) VALUES (?, ?, ?, ?, ?, ?)`,
		ph.ID, ph.ProjectID, ph.Name, ph.Description, ph.SortOrder, ph.Color,
	)
	if err != nil {
		return "", fmt.Errorf("wbs: insert phase: %w", err)
	}
	return ph.ID, nil
}

// GetPhase retrieves a phase by its ID.
func (s *SQLiteStore) GetPhase(ctx context.Context, phaseID string) (*wbs.Phase, error) {
	ph := &wbs.Phase{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, description, sort_order, color FROM wbs_phases WHERE id = ?`, phaseID,
	).Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Description, &ph.SortOrder, &ph.Color)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wbs: get phase: %w", err)
	}
	return ph, nil
}

// UpdatePhase replaces name, description, sort order and color of a phase.
func (s *SQLiteStore) UpdatePhase(ctx context.Context, ph *wbs.Phase) error {
	if ph.Color == "" {
		ph.Color = wbs.DefaultPhaseColor
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE wbs_phases SET name = ?, description = ?, sort_order = ?, color = ? WHERE id = ?`,
		ph.Name, ph.Description, ph.SortOrder, ph.Color, ph.ID,
	)
	if err != nil {
		return fmt.Errorf("wbs: update phase: %w", err)
	}
	return expectAffected(res, wbs.ErrPhaseNotFound)
}

// ListPhases returns the phases of a project ordered by sort_order.
func (s *SQLiteStore) ListPhases(ctx context.Context, projectID string) ([]wbs.Phase, error) {
	return listPhases(ctx, s.db, projectID)
}

func listPhases(ctx context.Context, exec executor, projectID string) ([]wbs.Phase, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT id, project_id, name, description, sort_order, color
		 FROM wbs_phases WHERE project_id = ? ORDER BY sort_order, rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("wbs: list phases: %w", err)
	}
	defer rows.Close()

	phases := []wbs.Phase{}
	for rows.Next() {
		var ph wbs.Phase
		if err := rows.Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Description, &ph.SortOrder, &ph.Color); err != nil {
			return nil, fmt.Errorf("wbs: scan phase: %w", err)
		}
		phases = append(phases, ph)
	}
	return phases, rows.Err()
}

// DeletePhase deletes a phase; its tasks keep existing without a phase.
func (s *SQLiteStore) DeletePhase(ctx context.Context, phaseID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wbs_phases WHERE id = ?`, phaseID)
	if err != nil {
		return fmt.Errorf("wbs: delete phase: %w", err)
	}
	return expectAffected(res, wbs.ErrPhaseNotFound)
}
