package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/wbs"
)

const defaultDailyWorkHours = 8.0

// CreateEmployee inserts an employee. If e.ID is empty, a UUID is generated.
// Returns wbs.ErrDuplicateEmail when the email is taken.
func (s *PGStore) CreateEmployee(ctx context.Context, e *wbs.Employee) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.DailyWorkHours == 0 {
		e.DailyWorkHours = defaultDailyWorkHours
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO wbs_employees (id, name, email, daily_work_hours) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Name, e.Email, e.DailyWorkHours,
	)
	if err != nil {
		if code, _ := pgCode(err); code == uniqueViolation {
			return "", wbs.ErrDuplicateEmail
		}
		return "", fmt.Errorf("wbs: insert employee: %w", err)
	}
	return e.ID, nil
}

// GetEmployee fetches an employee by ID.
// Returns nil, nil if not found.
func (s *PGStore) GetEmployee(ctx context.Context, employeeID string) (*wbs.Employee, error) {
	var e wbs.Employee
	err := s.db.QueryRow(ctx,
		`SELECT id, name, email, daily_work_hours FROM wbs_employees WHERE id = $1`, employeeID,
	).Scan(&e.ID, &e.Name, &e.Email, &e.DailyWorkHours)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("wbs: get employee: %w", err)
	}
	return &e, nil
}

// ListEmployees returns every employee ordered by creation.
func (s *PGStore) ListEmployees(ctx context.Context) ([]wbs.Employee, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, email, daily_work_hours FROM wbs_employees ORDER BY created_at, id`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows employees: %w", err)
	}
	return employees, nil
}

// UpdateEmployee replaces the fields of an employee.
// Returns wbs.ErrDuplicateEmail when the new email belongs to someone else.
func (s *PGStore) UpdateEmployee(ctx context.Context, e *wbs.Employee) error {
	if e.DailyWorkHours == 0 {
		e.DailyWorkHours = defaultDailyWorkHours
	}

	ct, err := s.db.Exec(ctx,
		`UPDATE wbs_employees SET name = $1, email = $2, daily_work_hours = $3 WHERE id = $4`,
		e.Name, e.Email, e.DailyWorkHours, e.ID,
	)
	if err != nil {
		if code, _ := pgCode(err); code == uniqueViolation {
			return wbs.ErrDuplicateEmail
		}
		return fmt.Errorf("wbs: update employee: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrEmployeeNotFound
	}
	return nil
}
