package wbs

import (
	"math"
	"time"
)

// DependencyFS is the finish-to-start dependency type and the default for new edges.
const DependencyFS = "FS"

// DefaultPhaseColor is used for phases created without a color.
const DefaultPhaseColor = "#1976d2"

// Bounds of the NUMERIC(5,2) columns holding estimates and allocation ratios.
const (
	MaxEstimate   = 999.99
	MinAllocation = 0.01
	MaxAllocation = 999.99
)

// Employee is a person that can be staffed on projects.
type Employee struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	DailyWorkHours float64 `json:"daily_work_hours"`
}

// Project is the unit the schedule is calculated for.
// StartDate anchors tasks without predecessors.
type Project struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	ClientName string     `json:"client_name,omitempty"`
	ManagerID  *string    `json:"manager_id,omitempty"`
	Budget     *float64   `json:"budget,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	StatusCode string     `json:"status_code,omitempty"`
}

// Phase groups the tasks of a project.
type Phase struct {
	ID          string `json:"id,omitempty"`
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
	Color       string `json:"color"`
}

// Member staffs an employee on a project.
// AllocationRatio is the share of a business day spent on the project.
type Member struct {
	ProjectID       string     `json:"project_id"`
	EmployeeID      string     `json:"employee_id"`
	Role            string     `json:"role,omitempty"`
	AllocationRatio float64    `json:"allocation_ratio"`
	JoinDate        *time.Time `json:"join_date,omitempty"`
	LeaveDate       *time.Time `json:"leave_date,omitempty"`

	// Employee is filled when listing members.
	Employee *Employee `json:"employee,omitempty"`
}

// Task is a WBS node. StartDate and EndDate are written by the schedule
// calculator only.
type Task struct {
	ID                string     `json:"id,omitempty"`
	ProjectID         string     `json:"project_id"`
	PhaseID           *string    `json:"phase_id,omitempty"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	EstimatedDuration *float64   `json:"estimated_duration,omitempty"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	EarliestStart     *time.Time `json:"earliest_start,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	StatusCode        string     `json:"status_code,omitempty"`
	Milestone         bool       `json:"milestone"`
	XPosition         int        `json:"x_position"`
	YPosition         int        `json:"y_position"`
}

// Dependency is an edge TaskID -> DependsOnID: TaskID cannot start before
// DependsOnID has finished.
type Dependency struct {
	TaskID         string `json:"task_id"`
	DependsOnID    string `json:"depends_on_id"`
	DependencyType string `json:"dependency_type"`
}

// Checklist is one to-do item of a task.
type Checklist struct {
	ID        string `json:"checklist_id,omitempty"`
	TaskID    string `json:"task_id"`
	ItemName  string `json:"item_name"`
	Done      bool   `json:"is_done"`
	SortOrder int    `json:"sort_order"`
}

// Code is a lookup value such as a status code, grouped by Type.
// Value is unique across all types.
type Code struct {
	Type  string `json:"code_type"`
	Value string `json:"code_value"`
	Label string `json:"code_label"`
}

// Assignment binds at most one employee to a task.
type Assignment struct {
	TaskID     string `json:"task_id"`
	EmployeeID string `json:"employee_id"`
}

// Snapshot is a coherent read of everything the schedule calculator needs
// for one project. Tasks keep the store's natural order.
type Snapshot struct {
	Project      Project
	Tasks        []Task
	Dependencies []Dependency

	// Assignments maps task id to employee id.
	Assignments map[string]string
	// Allocations maps employee id to the allocation ratio within the project.
	Allocations map[string]float64
	// Employees holds every assigned employee, by id.
	Employees map[string]Employee
	// Phases holds every phase of the project, by id.
	Phases map[string]Phase
	// Checklists holds the checklist items of every task, ordered by sort order.
	Checklists []Checklist
}

// TaskDates are the computed dates written back for one task.
type TaskDates struct {
	TaskID    string
	StartDate time.Time
	EndDate   time.Time
}

// ScheduledTask is a task with its computed dates and resolved relations.
type ScheduledTask struct {
	Task
	Assignee *Employee `json:"assignee"`
	Phase    *Phase    `json:"phase"`
}

// Progress counts finished checklist items.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// WBSTask is a task with everything a WBS view shows next to it.
// Dependencies holds the edges where the task is the dependent side.
type WBSTask struct {
	Task
	Assignee          *Employee    `json:"assignee"`
	Phase             *Phase       `json:"phase"`
	ChecklistProgress Progress     `json:"checklist_progress"`
	ChecklistItems    []Checklist  `json:"checklist_items"`
	Dependencies      []Dependency `json:"dependencies"`
}

// ScheduleResult is the outcome of a schedule calculation.
type ScheduleResult struct {
	Tasks         []ScheduledTask `json:"tasks"`
	CriticalPath  []string        `json:"critical_path"`
	TotalDuration int             `json:"total_duration"`
}

// Normalize fills the default allocation ratio and rejects ratios outside
// [MinAllocation, MaxAllocation].
func (m *Member) Normalize() error {
	if m.AllocationRatio == 0 {
		m.AllocationRatio = 1.0
	}
	r := m.AllocationRatio
	if math.IsNaN(r) || r < MinAllocation || r > MaxAllocation {
		return ErrInvalidAllocation
	}
	return nil
}

// Validate rejects estimates outside [0, MaxEstimate]. A nil estimate is valid.
func (t *Task) Validate() error {
	if t.EstimatedDuration == nil {
		return nil
	}
	e := *t.EstimatedDuration
	if math.IsNaN(e) || e < 0 || e > MaxEstimate {
		return ErrInvalidEstimate
	}
	return nil
}

// Normalize fills the default dependency type and rejects self edges.
func (d *Dependency) Normalize() error {
	if d.TaskID == "" || d.DependsOnID == "" {
		return ErrInvalidDependency
	}
	if d.TaskID == d.DependsOnID {
		return ErrCircularDependency
	}
	if d.DependencyType == "" {
		d.DependencyType = DependencyFS
	}
	return nil
}

// WBS assembles the WBS view of every task in natural order.
func (s *Snapshot) WBS() []WBSTask {
	items := make(map[string][]Checklist)
	for _, c := range s.Checklists {
		items[c.TaskID] = append(items[c.TaskID], c)
	}
	deps := make(map[string][]Dependency)
	for _, d := range s.Dependencies {
		deps[d.TaskID] = append(deps[d.TaskID], d)
	}

	out := make([]WBSTask, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		w := WBSTask{
			Task:           t,
			ChecklistItems: items[t.ID],
			Dependencies:   deps[t.ID],
		}
		if w.ChecklistItems == nil {
			w.ChecklistItems = []Checklist{}
		}
		if w.Dependencies == nil {
			w.Dependencies = []Dependency{}
		}
		for _, c := range w.ChecklistItems {
			w.ChecklistProgress.Total++
			if c.Done {
				w.ChecklistProgress.Done++
			}
		}
		if empID, ok := s.Assignments[t.ID]; ok {
			if e, ok := s.Employees[empID]; ok {
				w.Assignee = &e
			}
		}
		if t.PhaseID != nil {
			if ph, ok := s.Phases[*t.PhaseID]; ok {
				w.Phase = &ph
			}
		}
		out = append(out, w)
	}
	return out
}
