package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

// CreateEmployee inserts an employee. If e.ID is empty, a new UUID is generated.
func (s *SQLiteStore) CreateEmployee(ctx context.Context, e *wbs.Employee) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.DailyWorkHours == 0 {
		e.DailyWorkHours = 8.0
	}

	taken, err := exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM wbs_employees WHERE email = ?)`, e.Email)
	if err != nil {
		return "", fmt.Errorf("wbs: check email: %w", err)
	}
	if taken {
		return "", wbs.ErrDuplicateEmail
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wbs_employees (id, name, email, daily_work_hours) VALUES (?, ?, ?, ?)`,
		e.ID, e.Name, e.Email, e.DailyWorkHours,
	)
	if err != nil {
		return "", fmt.Errorf("wbs: insert employee: %w", err)
	}
	return e.ID, nil
}

// GetEmployee retrieves an employee by its ID.
func (s *SQLiteStore) GetEmployee(ctx context.Context, employeeID string) (*wbs.Employee, error) {
	e := &wbs.Employee{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, daily_work_hours FROM wbs_employees WHERE id = ?`, employeeID,
	).Scan(&e.ID, &e.Name, &e.Email, &e.DailyWorkHours)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wbs: get employee: %w", err)
	}
	return e, nil
}

// ListEmployees returns every employee in creation order.
func (s *SQLiteStore) ListEmployees(ctx context.Context) ([]wbs.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, daily_work_hours FROM wbs_employees ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("wbs: list employees: %w", err)
	}
	defer rows.Close()

	employees := []wbs.Employee{}
	for rows.Next() {
		var e wbs.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.DailyWorkHours); err != nil {
			return nil, fmt.Errorf("wbs: scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// UpdateEmployee replaces the fields of an existing employee.
func (s *SQLiteStore) UpdateEmployee(ctx context.Context, e *wbs.Employee) error {
	if e.DailyWorkHours == 0 {
		e.DailyWorkHours = 8.0
	}

	taken, err := exists(ctx, s.db,
		`SELECT EXISTS (SELECT 1 FROM wbs_employees WHERE email = ? AND id <> ?)`, e.Email, e.ID)
	if err != nil {
		return fmt.Errorf("wbs: check email: %w", err)
	}
	if taken {
		return wbs.ErrDuplicateEmail
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE wbs_employees SET name = ?, email = ?, daily_work_hours = ? WHERE id = ?`,
		e.Name, e.Email, e.DailyWorkHours, e.ID,
	)
	if err != nil {
		return fmt.Errorf("wbs: update employee: %w", err)
	}
	return expectAffected(res, wbs.ErrEmployeeNotFound)
}
