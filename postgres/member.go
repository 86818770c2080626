package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meikuraledutech/wbs"
)

// AddMember staffs an employee on a project. JoinDate defaults to today.
// Returns wbs.ErrMemberExists if the employee is already a member.
func (s *PGStore) AddMember(ctx context.Context, m *wbs.Member) error {
	if err := m.Normalize(); err != nil {
		return err
	}
	if m.JoinDate == nil {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		m.JoinDate = &today
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO wbs_members (project_id, employee_id, role, allocation_ratio, join_date, leave_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ProjectID, m.EmployeeID, m.Role, m.AllocationRatio, m.JoinDate, m.LeaveDate,
	)
	if err != nil {
		switch code, constraint := pgCode(err); code {
		case uniqueViolation:
			return wbs.ErrMemberExists
		case checkViolation:
			return wbs.ErrInvalidAllocation
		case foreignKeyViolation:
			if strings.Contains(constraint, "project") {
				return wbs.ErrProjectNotFound
			}
			return wbs.ErrEmployeeNotFound
		}
		return fmt.Errorf("wbs: insert member: %w", err)
	}
	return nil
}

// UpdateMember replaces role, allocation ratio and dates of a membership.
// Returns wbs.ErrMemberNotFound if the membership doesn't exist.
func (s *PGStore) UpdateMember(ctx context.Context, m *wbs.Member) error {
	if err := m.Normalize(); err != nil {
		return err
	}

	ct, err := s.db.Exec(ctx,
		`UPDATE wbs_members SET role = $1, allocation_ratio = $2, join_date = $3, leave_date = $4
		 WHERE project_id = $5 AND employee_id = $6`,
		m.Role, m.AllocationRatio, m.JoinDate, m.LeaveDate, m.ProjectID, m.EmployeeID,
	)
	if err != nil {
		if code, _ := pgCode(err); code == checkViolation {
			return wbs.ErrInvalidAllocation
		}
		return fmt.Errorf("wbs: update member: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrMemberNotFound
	}
	return nil
}

// RemoveMember removes an employee from a project. Existing task assignments
// are kept and fall back to full allocation when scheduling.
func (s *PGStore) RemoveMember(ctx context.Context, projectID, employeeID string) error {
	ct, err := s.db.Exec(ctx,
		`DELETE FROM wbs_members WHERE project_id = $1 AND employee_id = $2`, projectID, employeeID)
	if err != nil {
		return fmt.Errorf("wbs: delete member: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return wbs.ErrMemberNotFound
	}
	return nil
}

// ListMembers returns the members of a project with their employee records.
func (s *PGStore) ListMembers(ctx context.Context, projectID string) ([]wbs.Member, error) {
	return listMembers(ctx, s.db, projectID)
}

func listMembers(ctx context.Context, q querier, projectID string) ([]wbs.Member, error) {
	rows, err := q.Query(ctx,
		`SELECT m.project_id, m.employee_id, m.role, m.allocation_ratio, m.join_date, m.leave_date,
		        e.id, e.name, e.email, e.daily_work_hours
		 FROM wbs_members m
		 JOIN wbs_employees e ON e.id = m.employee_id
		 WHERE m.project_id = $1 ORDER BY m.join_date, m.employee_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("wbs: list members: %w", err)
	}
	defer rows.Close()

	members := []wbs.Member{}
	for rows.Next() {
		var m wbs.Member
		var e wbs.Employee
		if err := rows.Scan(&m.ProjectID, &m.EmployeeID, &m.Role, &m.AllocationRatio, &m.JoinDate, &m.LeaveDate,
			&e.ID, &e.Name, &e.Email, &e.DailyWorkHours); err != nil {
			return nil, fmt.Errorf("wbs: scan member: %w", err)
		}
		m.Employee = &e
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wbs: rows members: %w", err)
	}
	return members, nil
}
