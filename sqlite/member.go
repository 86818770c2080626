package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/meikuraledutech/wbs"
)

// AddMember staffs an existing employee on an existing project.
func (s *SQLiteStore) AddMember(ctx context.Context, m *wbs.Member) error {
	if err := m.Normalize(); err != nil {
		return err
	}
	if m.JoinDate == nil {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		m.JoinDate = &today
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("wbs: begin tx: %w", err)
	}
	defer tx.Rollback()

	ok, err := projectExists(ctx, tx, m.ProjectID)
	if err != nil {
		return err
	}
	if !ok {
		return wbs.ErrProjectNotFound
	}

	ok, err = exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM wbs_employees WHERE id = ?)`, m.EmployeeID)
	if err != nil {
		return fmt.Errorf("wbs: find employee: %w", err)
	}
	if !ok {
		return wbs.ErrEmployeeNotFound
	}

	ok, err = isMember(ctx, tx, m.ProjectID, m.EmployeeID)
	if err != nil {
		return err
	}
	if ok {
		return wbs.ErrMemberExists
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wbs_members (project_id, employee_id, role, allocation_ratio, join_date, leave_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ProjectID, m.EmployeeID, m.Role, m.AllocationRatio, dateArg(m.JoinDate), dateArg(m.LeaveDate),
	); err != nil {
		return fmt.Errorf("wbs: insert member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wbs: commit: %w", err)
	}
	return nil
}

// UpdateMember replaces role, allocation ratio and dates of a membership.
func (s *SQLiteStore) UpdateMember(ctx context.Context, m *wbs.Member) error {
	if err := m.Normalize(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE wbs_members SET role = ?, allocation_ratio = ?, join_date = ?, leave_date = ?
		 WHERE project_id = ? AND employee_id = ?`,
		m.Role, m.AllocationRatio, dateArg(m.JoinDate), dateArg(m.LeaveDate), m.ProjectID, m.EmployeeID,
	)
	if err != nil {
		return fmt.Errorf("wbs: update member: %w", err)
	}
	return expectAffected(res, wbs.ErrMemberNotFound)
}

// RemoveMember removes an employee from a project. Task assignments are kept.
func (s *SQLiteStore) RemoveMember(ctx context.Context, projectID, employeeID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wbs_members WHERE project_id = ? AND employee_id = ?`, projectID, employeeID)
	if err != nil {
		return fmt.Errorf("wbs: delete member: %w", err)
	}
	return expectAffected(res, wbs.ErrMemberNotFound)
}

// ListMembers returns the members of a project with their employee records.
func (s *SQLiteStore) ListMembers(ctx context.Context, projectID string) ([]wbs.Member, error) {
	return listMembers(ctx, s.db, projectID)
}

func listMembers(ctx context.Context, exec executor, projectID string) ([]wbs.Member, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT m.project_id, m.employee_id, m.role, m.allocation_ratio, m.join_date, m.leave_date,
		        e.id, e.name, e.email, e.daily_work_hours
		 FROM wbs_members m
		 JOIN wbs_employees e ON e.id = m.employee_id
		 WHERE m.project_id = ? ORDER BY m.rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("wbs: list members: %w", err)
	}
	defer rows.Close()

	members := []wbs.Member{}
	for rows.Next() {
		var m wbs.Member
		e := &wbs.Employee{}
		if err := rows.Scan(&m.ProjectID, &m.EmployeeID, &m.Role, &m.AllocationRatio,
			dateDest(&m.JoinDate), dateDest(&m.LeaveDate),
			&e.ID, &e.Name, &e.Email, &e.DailyWorkHours); err != nil {
			return nil, fmt.Errorf("wbs: scan member: %w", err)
		}
		m.Employee = e
		members = append(members, m)
	}
	return members, rows.Err()
}

func isMember(ctx context.Context, exec executor, projectID, employeeID string) (bool, error) {
	ok, err := exists(ctx, exec,
		`SELECT EXISTS (SELECT 1 FROM wbs_members WHERE project_id = ? AND employee_id = ?)`, projectID, employeeID)
	if err != nil {
		return false, fmt.Errorf("wbs: find member: %w", err)
	}
	return ok, nil
}
