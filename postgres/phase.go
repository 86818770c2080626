package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

// CreatePhase inserts a phase into a project.
// Returns wbs.ErrProjectNotFound if the project doesn't exist.
func (s *PGStore) CreatePhase(ctx context.Context, ph *wbs.Phase) (string, error) {
	if ph.ID == "" {
		ph.ID = uuid.NewString()
	}
	if ph.Color == "" {
		ph.Color = wbs.DefaultPhaseColor
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO wbs_phases (id, project_id, name, description, sort_order, color) VALUES ($1, $2, $3, $4, $5, $6)`,
		ph.ID, ph.ProjectID, ph.Name, ph.Description, ph.SortOrder, ph.Color,
	)
	if err != nil {
		if code, _ := pgCode(err); code == foreignKeyViolation {
			return "", wbs.ErrProjectNotFound
		}
		return "", fmt.Errorf("wbs: insert phase: %w", err)
	}
	return ph.ID, nil
}

// GetPhase fetches a phase by ID.
// Returns nil, nil if not found.
func (s *PGStore) GetPhase(ctx context.Context, phaseID string) (*wbs.Phase, error) {
	var ph wbs.Phase
	err := s.db.QueryRow(ctx,
		`SELECT id, project_id, name, description, sort_order, color FROM wbs_phases WHERE id = $1`, phaseID,
	).Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Description, &ph.SortOrder, &ph.Color)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("wbs: get phase: %w", err)
	}
	return &ph, nil
}

// UpdatePhase replaces name, description, sort order and color of a phase.
func (s *PGStore) UpdatePhase(ctx context.Context, ph *wbs.Phase) error {
	if ph.Color == "" {
		ph.Color = wbs.DefaultPhaseColor
	}

	ct, err := s.db.Exec(ctx,
		`UPDATE wbs_phases SET name = $1, description = $2, sort_order = $3, color = $4 WHERE id = $5`,
		ph.Name, ph.Description, ph.SortOrder, ph.Color, ph.ID,
	)
	if err != nil {
		return fmt.Errorf("wbs: update phase: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrPhaseNotFound
	}
	return nil
}

// ListPhases returns the phases of a project ordered by sort_order.
func (s *PGStore) ListPhases(ctx context.Context, projectID string) ([]wbs.Phase, error) {
	return listPhases(ctx, s.db, projectID)
}

func listPhases(ctx context.Context, q querier, projectID string) ([]wbs.Phase, error) {
	rows, err := q.Query(ctx,
		`SELECT id, project_id, name, description, sort_order, color
		 FROM wbs_phases WHERE project_id = $1 ORDER BY sort_order, created_at, id`, projectID)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows phases: %w", err)
	}
	return phases, nil
}

// DeletePhase deletes a phase. Its tasks stay, with phase_id cleared by the DB.
// Returns wbs.ErrPhaseNotFound if the phase doesn't exist.
func (s *PGStore) DeletePhase(ctx context.Context, phaseID string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM wbs_phases WHERE id = $1`, phaseID)
	if err != nil {
		return fmt.Errorf("wbs: delete phase: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrPhaseNotFound
	}
	return nil
}
