package wbs

import (
	"context"
	"errors"
)

var (
	ErrProjectNotFound    = errors.New("wbs: project not found")
	ErrEmployeeNotFound   = errors.New("wbs: employee not found")
	ErrPhaseNotFound      = errors.New("wbs: phase not found")
	ErrTaskNotFound       = errors.New("wbs: task not found")
	ErrMemberNotFound     = errors.New("wbs: member not found")
	ErrDependencyNotFound = errors.New("wbs: dependency not found")
	ErrChecklistNotFound  = errors.New("wbs: checklist item not found")

	ErrDuplicateEmail     = errors.New("wbs: email already in use")
	ErrMemberExists       = errors.New("wbs: employee is already a project member")
	ErrDependencyExists   = errors.New("wbs: dependency already exists")
	ErrNotProjectMember   = errors.New("wbs: assignee is not a member of the project")
	ErrCodeExists         = errors.New("wbs: code value already exists")
	ErrInvalidAllocation  = errors.New("wbs: allocation ratio must be between 0.01 and 999.99")
	ErrInvalidEstimate    = errors.New("wbs: estimated duration must be between 0 and 999.99")
	ErrScheduleOutOfRange = errors.New("wbs: schedule ends after year 9999")
	ErrInvalidDependency  = errors.New("wbs: invalid dependency")
	ErrCircularDependency = errors.New("wbs: circular dependency detected in tasks")
)

// Store defines the contract for persisting and retrieving project records.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Employees
	CreateEmployee(ctx context.Context, e *Employee) (string, error)
	GetEmployee(ctx context.Context, employeeID string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	UpdateEmployee(ctx context.Context, e *Employee) error

	// Projects
	CreateProject(ctx context.Context, p *Project) (string, error)
	GetProject(ctx context.Context, projectID string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	UpdateProject(ctx context.Context, p *Project) error

	// Phases
	CreatePhase(ctx context.Context, ph *Phase) (string, error)
	GetPhase(ctx context.Context, phaseID string) (*Phase, error)
	ListPhases(ctx context.Context, projectID string) ([]Phase, error)
	UpdatePhase(ctx context.Context, ph *Phase) error
	DeletePhase(ctx context.Context, phaseID string) error

	// Members
	AddMember(ctx context.Context, m *Member) error
	UpdateMember(ctx context.Context, m *Member) error
	RemoveMember(ctx context.Context, projectID, employeeID string) error
	ListMembers(ctx context.Context, projectID string) ([]Member, error)

	// Tasks
	CreateTask(ctx context.Context, t *Task) (string, error)
	GetTask(ctx context.Context, taskID string) (*Task, error)
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, taskID string) error

	// Assignments
	AssignTask(ctx context.Context, taskID, employeeID string) error
	UnassignTask(ctx context.Context, taskID string) error

	// Checklists
	CreateChecklist(ctx context.Context, c *Checklist) (string, error)
	GetChecklist(ctx context.Context, checklistID string) (*Checklist, error)
	ListChecklists(ctx context.Context, taskID string) ([]Checklist, error)
	UpdateChecklist(ctx context.Context, c *Checklist) error
	DeleteChecklist(ctx context.Context, checklistID string) error

	// Codes
	CreateCode(ctx context.Context, c *Code) error
	ListCodes(ctx context.Context, codeType string) ([]Code, error)

	// Dependencies
	AddDependency(ctx context.Context, d *Dependency) error
	RemoveDependency(ctx context.Context, taskID, dependsOnID string) error
	ListDependencies(ctx context.Context, projectID string) ([]Dependency, error)

	// Scheduling
	LoadSnapshot(ctx context.Context, projectID string) (*Snapshot, error)
	SaveSchedule(ctx context.Context, projectID string, dates []TaskDates) error
}
