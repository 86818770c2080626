package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

const projectColumns = `id, name, client_name, manager_id, budget, start_date, end_date, status_code`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner, p *wbs.Project) error {
	return row.Scan(&p.ID, &p.Name, &p.ClientName, &p.ManagerID, &p.Budget,
		dateDest(&p.StartDate), dateDest(&p.EndDate), &p.StatusCode)
}

// CreateProject inserts a project. If p.ID is empty, a new UUID is generated.
func (s *SQLiteStore) CreateProject(ctx context.Context, p *wbs.Project) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := checkManager(ctx, s.db, p.ManagerID); err != nil {
		return "", err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wbs_projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.ClientName, p.ManagerID, p.Budget, dateArg(p.StartDate), dateArg(p.EndDate), p.StatusCode,
	)
	if err != nil {
		return "", fmt.Errorf("wbs: insert project: %w", err)
	}
	return p.ID, nil
}

// UpdateProject replaces the fields of an existing project.
func (s *SQLiteStore) UpdateProject(ctx context.Context, p *wbs.Project) error {
	if err := checkManager(ctx, s.db, p.ManagerID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE wbs_projects SET name = ?, client_name = ?, manager_id = ?, budget = ?,
		 start_date = ?, end_date = ?, status_code = ? WHERE id = ?`,
		p.Name, p.ClientName, p.ManagerID, p.Budget, dateArg(p.StartDate), dateArg(p.EndDate), p.StatusCode, p.ID,
	)
	if err != nil {
		return fmt.Errorf("wbs: update project: %w", err)
	}
	return expectAffected(res, wbs.ErrProjectNotFound)
}

func checkManager(ctx context.Context, exec executor, managerID *string) error {
	if managerID == nil {
		return nil
	}
	ok, err := exists(ctx, exec, `SELECT EXISTS (SELECT 1 FROM wbs_employees WHERE id = ?)`, *managerID)
	if err != nil {
		return fmt.Errorf("wbs: find manager: %w", err)
	}
	if !ok {
		return wbs.ErrEmployeeNotFound
	}
	return nil
}

// GetProject retrieves a project by its ID.
func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (*wbs.Project, error) {
	return getProject(ctx, s.db, projectID)
}

func getProject(ctx context.Context, exec executor, projectID string) (*wbs.Project, error) {
	p := &wbs.Project{}
	err := scanProject(exec.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM wbs_projects WHERE id = ?`, projectID), p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wbs: get project: %w", err)
	}
	return p, nil
}

// ListProjects returns every project in creation order.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]wbs.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM wbs_projects ORDER BY rowid`)
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
	return projects, rows.Err()
}

func projectExists(ctx context.Context, exec executor, projectID string) (bool, error) {
	ok, err := exists(ctx, exec, `SELECT EXISTS (SELECT 1 FROM wbs_projects WHERE id = ?)`, projectID)
	if err != nil {
		return false, fmt.Errorf("wbs: find project: %w", err)
	}
	return ok, nil
}
