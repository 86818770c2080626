package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

const projectColumns = `id, name, client_name, manager_id, budget, start_date, end_date, status_code`

func scanProject(row rowScanner, p *wbs.Project) error {
	return row.Scan(&p.ID, &p.Name, &p.ClientName, &p.ManagerID, &p.Budget, &p.StartDate, &p.EndDate, &p.StatusCode)
}

// CreateProject inserts a project. If p.ID is empty, a UUID is generated.
func (s *PGStore) CreateProject(ctx context.Context, p *wbs.Project) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO wbs_projects (`+projectColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.ClientName, p.ManagerID, p.Budget, p.StartDate, p.EndDate, p.StatusCode,
	)
	if err != nil {
		if code, _ := pgCode(err); code == foreignKeyViolation {
			return "", wbs.ErrEmployeeNotFound
		}
		return "", fmt.Errorf("wbs: insert project: %w", err)
	}
	return p.ID, nil
}

// UpdateProject replaces the fields of a project.
// Returns wbs.ErrProjectNotFound if the project doesn't exist.
func (s *PGStore) UpdateProject(ctx context.Context, p *wbs.Project) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE wbs_projects SET name = $1, client_name = $2, manager_id = $3, budget = $4,
		 start_date = $5, end_date = $6, status_code = $7 WHERE id = $8`,
		p.Name, p.ClientName, p.ManagerID, p.Budget, p.StartDate, p.EndDate, p.StatusCode, p.ID,
	)
	if err != nil {
		if code, _ := pgCode(err); code == foreignKeyViolation {
			return wbs.ErrEmployeeNotFound
		}
		return fmt.Errorf("wbs: update project: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrProjectNotFound
	}
	return nil
}

// GetProject fetches a project by ID.
// Returns nil, nil if not found.
func (s *PGStore) GetProject(ctx context.Context, projectID string) (*wbs.Project, error) {
	return getProject(ctx, s.db, projectID)
}

func getProject(ctx context.Context, q querier, projectID string) (*wbs.Project, error) {
	var p wbs.Project
	err := scanProject(q.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM wbs_projects WHERE id = $1`, projectID), &p)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("wbs: get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns every project ordered by creation.
func (s *PGStore) ListProjects(ctx context.Context) ([]wbs.Project, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+projectColumns+` FROM wbs_projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("wbs: list projects: %w", err)
	}
	defer rows.Close()

	projects := []wbs.Project{}
	for rows.Next() {
		var p wbs.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, fmt.Errorf("wbs: scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows projects: %w", err)
	}
	return projects, nil
}
