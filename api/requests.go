package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/meikuraledutech/wbs"
)

var errBadRequest = errors.New("bad request")

// Dates travel as YYYY-MM-DD strings.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", errBadRequest, field)
	}
	return &t, nil
}

func required(field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", errBadRequest, field)
	}
	return nil
}

type employeeRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	DailyWorkHours float64 `json:"daily_work_hours"`
}

func (r employeeRequest) employee() (*wbs.Employee, error) {
	if err := required("name", r.Name); err != nil {
		return nil, err
	}
	if err := required("email", r.Email); err != nil {
		return nil, err
	}
	return &wbs.Employee{Name: r.Name, Email: r.Email, DailyWorkHours: r.DailyWorkHours}, nil
}

// employeeUpdate changes only the fields present in the body.
type employeeUpdate struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	DailyWorkHours *float64 `json:"daily_work_hours"`
}

func (r employeeUpdate) apply(e *wbs.Employee) error {
	if r.Name != nil {
		if err := required("name", *r.Name); err != nil {
			return err
		}
		e.Name = *r.Name
	}
	if r.Email != nil {
		if err := required("email", *r.Email); err != nil {
			return err
		}
		e.Email = *r.Email
	}
	if r.DailyWorkHours != nil {
		e.DailyWorkHours = *r.DailyWorkHours
	}
	return nil
}

type projectRequest struct {
	Name       string   `json:"name"`
	ClientName string   `json:"client_name"`
	ManagerID  *string  `json:"manager_id"`
	Budget     *float64 `json:"budget"`
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	StatusCode string   `json:"status_code"`
}

func (r projectRequest) project() (*wbs.Project, error) {
	if err := required("name", r.Name); err != nil {
		return nil, err
	}
	p := &wbs.Project{
		Name:       r.Name,
		ClientName: r.ClientName,
		ManagerID:  r.ManagerID,
		Budget:     r.Budget,
		StatusCode: r.StatusCode,
	}
	var err error
	if p.StartDate, err = parseDate("start_date", r.StartDate); err != nil {
		return nil, err
	}
	if p.EndDate, err = parseDate("end_date", r.EndDate); err != nil {
		return nil, err
	}
	return p, nil
}

type projectUpdate struct {
	Name       *string  `json:"name"`
	ClientName *string  `json:"client_name"`
	ManagerID  *string  `json:"manager_id"`
	Budget     *float64 `json:"budget"`
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	StatusCode *string  `json:"status_code"`
}

func (r projectUpdate) apply(p *wbs.Project) error {
	if r.Name != nil {
		if err := required("name", *r.Name); err != nil {
			return err
		}
		p.Name = *r.Name
	}
	if r.ClientName != nil {
		p.ClientName = *r.ClientName
	}
	if r.ManagerID != nil {
		p.ManagerID = r.ManagerID
	}
	if r.Budget != nil {
		p.Budget = r.Budget
	}
	if r.StatusCode != nil {
		p.StatusCode = *r.StatusCode
	}
	if r.StartDate != nil {
		d, err := parseDate("start_date", r.StartDate)
		if err != nil {
			return err
		}
		p.StartDate = d
	}
	if r.EndDate != nil {
		d, err := parseDate("end_date", r.EndDate)
		if err != nil {
			return err
		}
		p.EndDate = d
	}
	return nil
}

type phaseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	Color       string `json:"color"`
}

type phaseUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	Color       *string `json:"color"`
}

func (r phaseUpdate) apply(ph *wbs.Phase) error {
	if r.Name != nil {
		if err := required("name", *r.Name); err != nil {
			return err
		}
		ph.Name = *r.Name
	}
	if r.Description != nil {
		ph.Description = *r.Description
	}
	if r.SortOrder != nil {
		ph.SortOrder = *r.SortOrder
	}
	if r.Color != nil {
		ph.Color = *r.Color
	}
	return nil
}

type memberRequest struct {
	EmployeeID      string  `json:"employee_id"`
	Role            string  `json:"role"`
	AllocationRatio float64 `json:"allocation_ratio"`
	JoinDate        *string `json:"join_date"`
	LeaveDate       *string `json:"leave_date"`
}

func (r memberRequest) member(projectID string) (*wbs.Member, error) {
	m := &wbs.Member{
		ProjectID:       projectID,
		EmployeeID:      r.EmployeeID,
		Role:            r.Role,
		AllocationRatio: r.AllocationRatio,
	}
	var err error
	if m.JoinDate, err = parseDate("join_date", r.JoinDate); err != nil {
		return nil, err
	}
	if m.LeaveDate, err = parseDate("leave_date", r.LeaveDate); err != nil {
		return nil, err
	}
	return m, nil
}

type taskRequest struct {
	PhaseID           *string  `json:"phase_id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	EstimatedDuration *float64 `json:"estimated_duration"`
	EarliestStart     *string  `json:"earliest_start"`
	Deadline          *string  `json:"deadline"`
	StatusCode        string   `json:"status_code"`
	Milestone         bool     `json:"milestone"`
	XPosition         int      `json:"x_position"`
	YPosition         int      `json:"y_position"`
}

func (r taskRequest) task() (*wbs.Task, error) {
	if err := required("name", r.Name); err != nil {
		return nil, err
	}
	t := &wbs.Task{
		PhaseID:           r.PhaseID,
		Name:              r.Name,
		Description:       r.Description,
		EstimatedDuration: r.EstimatedDuration,
		StatusCode:        r.StatusCode,
		Milestone:         r.Milestone,
		XPosition:         r.XPosition,
		YPosition:         r.YPosition,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var err error
	if t.EarliestStart, err = parseDate("earliest_start", r.EarliestStart); err != nil {
		return nil, err
	}
	if t.Deadline, err = parseDate("deadline", r.Deadline); err != nil {
		return nil, err
	}
	return t, nil
}

type assigneeRequest struct {
	EmployeeID string `json:"employee_id"`
}

type dependencyRequest struct {
	TaskID         string `json:"task_id"`
	DependsOnID    string `json:"depends_on_id"`
	DependencyType string `json:"dependency_type"`
}

type checklistRequest struct {
	ItemName  string `json:"item_name"`
	Done      bool   `json:"is_done"`
	SortOrder int    `json:"sort_order"`
}

type checklistUpdate struct {
	ItemName  *string `json:"item_name"`
	Done      *bool   `json:"is_done"`
	SortOrder *int    `json:"sort_order"`
}

func (r checklistUpdate) apply(c *wbs.Checklist) error {
	if r.ItemName != nil {
		if err := required("item_name", *r.ItemName); err != nil {
			return err
		}
		c.ItemName = *r.ItemName
	}
	if r.Done != nil {
		c.Done = *r.Done
	}
	if r.SortOrder != nil {
		c.SortOrder = *r.SortOrder
	}
	return nil
}

type codeRequest struct {
	Type  string `json:"code_type"`
	Value string `json:"code_value"`
	Label string `json:"code_label"`
}

func (r codeRequest) code() (*wbs.Code, error) {
	for _, f := range []struct{ name, v string }{
		{"code_type", r.Type}, {"code_value", r.Value}, {"code_label", r.Label},
	} {
		if err := required(f.name, f.v); err != nil {
			return nil, err
		}
	}
	return &wbs.Code{Type: r.Type, Value: r.Value, Label: r.Label}, nil
}
