package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/meikuraledutech/wbs"
	"github.com/meikuraledutech/wbs/schedule"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.CreateSchema(context.Background()); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return s
}

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return &d
}

func float(f float64) *float64 { return &f }

// seed creates a project starting on a Monday with one staffed employee.
func seed(t *testing.T, s *SQLiteStore) (projectID, employeeID string) {
	t.Helper()
	ctx := context.Background()

	employeeID, err := s.CreateEmployee(ctx, &wbs.Employee{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	projectID, err = s.CreateProject(ctx, &wbs.Project{Name: "Launch", StartDate: day(t, "2024-01-01")})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return projectID, employeeID
}

func createTask(t *testing.T, s *SQLiteStore, projectID, name string, est float64) string {
	t.Helper()
	id, err := s.CreateTask(context.Background(), &wbs.Task{ProjectID: projectID, Name: name, EstimatedDuration: float(est)})
	if err != nil {
		t.Fatalf("CreateTask %s: %v", name, err)
	}
	return id
}

func TestSchemaIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateSchema(ctx); err != nil {
		t.Fatalf("second CreateSchema: %v", err)
	}
	if err := s.DropSchema(ctx); err != nil {
		t.Fatalf("DropSchema: %v", err)
	}
	if err := s.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema after drop: %v", err)
	}
}

func TestEmployeeCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &wbs.Employee{Name: "Ada", Email: "ada@example.com"}
	id, err := s.CreateEmployee(ctx, e)
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected uuid, got %q", id)
	}

	got, err := s.GetEmployee(ctx, id)
	if err != nil {
		t.Fatalf("GetEmployee: %v", err)
	}
	if got == nil || got.Email != "ada@example.com" || got.DailyWorkHours != 8.0 {
		t.Errorf("unexpected employee: %+v", got)
	}

	if _, err := s.CreateEmployee(ctx, &wbs.Employee{Name: "Other", Email: "ada@example.com"}); !errors.Is(err, wbs.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	missing, err := s.GetEmployee(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing employee, got %v, %v", missing, err)
	}

	list, err := s.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("ListEmployees: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 employee, got %d", len(list))
	}
}

func TestUpdateEmployee(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateEmployee(ctx, &wbs.Employee{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	if _, err := s.CreateEmployee(ctx, &wbs.Employee{Name: "Bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}

	// Keeping the own email is not a conflict.
	if err := s.UpdateEmployee(ctx, &wbs.Employee{ID: id, Name: "Ada L.", Email: "ada@example.com", DailyWorkHours: 6}); err != nil {
		t.Fatalf("UpdateEmployee: %v", err)
	}
	got, _ := s.GetEmployee(ctx, id)
	if got.Name != "Ada L." || got.DailyWorkHours != 6 {
		t.Errorf("update not applied: %+v", got)
	}

	if err := s.UpdateEmployee(ctx, &wbs.Employee{ID: id, Name: "Ada", Email: "bob@example.com"}); !errors.Is(err, wbs.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
	if err := s.UpdateEmployee(ctx, &wbs.Employee{ID: "missing", Name: "X", Email: "x@example.com"}); !errors.Is(err, wbs.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, employeeID := seed(t, s)

	p, _ := s.GetProject(ctx, projectID)
	p.Name = "Relaunch"
	p.ManagerID = &employeeID
	p.StartDate = day(t, "2024-02-05")
	if err := s.UpdateProject(ctx, p); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	got, _ := s.GetProject(ctx, projectID)
	if got.Name != "Relaunch" || got.ManagerID == nil || *got.ManagerID != employeeID {
		t.Errorf("update not applied: %+v", got)
	}
	if got.StartDate == nil || !got.StartDate.Equal(*day(t, "2024-02-05")) {
		t.Errorf("start date not updated: %v", got.StartDate)
	}

	bad := "missing"
	p.ManagerID = &bad
	if err := s.UpdateProject(ctx, p); !errors.Is(err, wbs.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := s.UpdateProject(ctx, &wbs.Project{ID: "missing", Name: "X"}); !errors.Is(err, wbs.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := "missing"
	if _, err := s.CreateProject(ctx, &wbs.Project{Name: "X", ManagerID: &bad}); !errors.Is(err, wbs.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}

	projectID, employeeID := seed(t, s)

	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p == nil {
		t.Fatal("project not found")
	}
	if p.StartDate == nil || !p.StartDate.Equal(*day(t, "2024-01-01")) {
		t.Errorf("start date not round-tripped: %v", p.StartDate)
	}
	if p.EndDate != nil || p.ManagerID != nil || p.Budget != nil {
		t.Errorf("expected nil optional fields, got %+v", p)
	}

	budget := 1000.5
	if _, err := s.CreateProject(ctx, &wbs.Project{Name: "Second", ManagerID: &employeeID, Budget: &budget}); err != nil {
		t.Fatalf("CreateProject with manager: %v", err)
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 2 || projects[0].Name != "Launch" || projects[1].Name != "Second" {
		t.Errorf("unexpected projects: %+v", projects)
	}
	if projects[1].Budget == nil || *projects[1].Budget != budget {
		t.Errorf("budget not round-tripped: %v", projects[1].Budget)
	}
}

func TestPhases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, _ := seed(t, s)

	if _, err := s.CreatePhase(ctx, &wbs.Phase{ProjectID: "missing", Name: "X"}); !errors.Is(err, wbs.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}

	late, err := s.CreatePhase(ctx, &wbs.Phase{ProjectID: projectID, Name: "Build", SortOrder: 2})
	if err != nil {
		t.Fatalf("CreatePhase: %v", err)
	}
	if _, err := s.CreatePhase(ctx, &wbs.Phase{ProjectID: projectID, Name: "Design", SortOrder: 1, Color: "#ff0000"}); err != nil {
		t.Fatalf("CreatePhase: %v", err)
	}

	phases, err := s.ListPhases(ctx, projectID)
	if err != nil {
		t.Fatalf("ListPhases: %v", err)
	}
	if len(phases) != 2 || phases[0].Name != "Design" || phases[1].Name != "Build" {
		t.Fatalf("unexpected phase order: %+v", phases)
	}
	if phases[1].Color != wbs.DefaultPhaseColor {
		t.Errorf("expected default color, got %q", phases[1].Color)
	}

	ph, err := s.GetPhase(ctx, late)
	if err != nil || ph == nil {
		t.Fatalf("GetPhase: %v, %v", ph, err)
	}
	ph.Name = "Build v2"
	ph.SortOrder = 0
	ph.Color = ""
	if err := s.UpdatePhase(ctx, ph); err != nil {
		t.Fatalf("UpdatePhase: %v", err)
	}
	phases, _ = s.ListPhases(ctx, projectID)
	if phases[0].Name != "Build v2" || phases[0].Color != wbs.DefaultPhaseColor {
		t.Errorf("update not applied: %+v", phases)
	}
	if err := s.UpdatePhase(ctx, &wbs.Phase{ID: "missing", Name: "X"}); !errors.Is(err, wbs.ErrPhaseNotFound) {
		t.Errorf("expected ErrPhaseNotFound, got %v", err)
	}
	if missing, err := s.GetPhase(ctx, "missing"); err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing phase, got %v, %v", missing, err)
	}

	if err := s.DeletePhase(ctx, late); err != nil {
		t.Fatalf("DeletePhase: %v", err)
	}
	if err := s.DeletePhase(ctx, late); !errors.Is(err, wbs.ErrPhaseNotFound) {
		t.Errorf("expected ErrPhaseNotFound, got %v", err)
	}
}

func TestMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, employeeID := seed(t, s)

	m := &wbs.Member{ProjectID: projectID, EmployeeID: employeeID, Role: "dev"}
	if err := s.AddMember(ctx, m); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if m.AllocationRatio != 1.0 {
		t.Errorf("expected default ratio 1.0, got %v", m.AllocationRatio)
	}
	if m.JoinDate == nil {
		t.Error("expected join date to default to today")
	}

	if err := s.AddMember(ctx, &wbs.Member{ProjectID: projectID, EmployeeID: employeeID}); !errors.Is(err, wbs.ErrMemberExists) {
		t.Errorf("expected ErrMemberExists, got %v", err)
	}
	if err := s.AddMember(ctx, &wbs.Member{ProjectID: "missing", EmployeeID: employeeID}); !errors.Is(err, wbs.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
	if err := s.AddMember(ctx, &wbs.Member{ProjectID: projectID, EmployeeID: "missing"}); !errors.Is(err, wbs.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := s.AddMember(ctx, &wbs.Member{ProjectID: projectID, EmployeeID: employeeID, AllocationRatio: -1}); !errors.Is(err, wbs.ErrInvalidAllocation) {
		t.Errorf("expected ErrInvalidAllocation, got %v", err)
	}

	m.AllocationRatio = 0.5
	m.Role = "lead"
	if err := s.UpdateMember(ctx, m); err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}

	members, err := s.ListMembers(ctx, projectID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].AllocationRatio != 0.5 || members[0].Role != "lead" {
		t.Fatalf("unexpected members: %+v", members)
	}
	if members[0].Employee == nil || members[0].Employee.Name != "Ada" {
		t.Errorf("expected embedded employee, got %+v", members[0].Employee)
	}

	for _, ratio := range []float64{0.001, 1000} {
		bad := &wbs.Member{ProjectID: projectID, EmployeeID: employeeID, AllocationRatio: ratio}
		if err := s.UpdateMember(ctx, bad); !errors.Is(err, wbs.ErrInvalidAllocation) {
			t.Errorf("ratio %v: expected ErrInvalidAllocation, got %v", ratio, err)
		}
	}

	if err := s.RemoveMember(ctx, projectID, employeeID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if err := s.RemoveMember(ctx, projectID, employeeID); !errors.Is(err, wbs.ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
	if err := s.UpdateMember(ctx, m); !errors.Is(err, wbs.ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, _ := seed(t, s)

	other, err := s.CreateProject(ctx, &wbs.Project{Name: "Other"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	foreignPhase, err := s.CreatePhase(ctx, &wbs.Phase{ProjectID: other, Name: "Foreign"})
	if err != nil {
		t.Fatalf("CreatePhase: %v", err)
	}

	if _, err := s.CreateTask(ctx, &wbs.Task{ProjectID: projectID, Name: "x", PhaseID: &foreignPhase}); !errors.Is(err, wbs.ErrPhaseNotFound) {
		t.Errorf("expected ErrPhaseNotFound, got %v", err)
	}
	if _, err := s.CreateTask(ctx, &wbs.Task{ProjectID: "missing", Name: "x"}); !errors.Is(err, wbs.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}

	task := &wbs.Task{
		ProjectID:         projectID,
		Name:              "Design",
		EstimatedDuration: float(2),
		StartDate:         day(t, "2030-01-01"),
		EarliestStart:     day(t, "2024-01-03"),
		Milestone:         true,
	}
	id, err := s.CreateTask(ctx, task)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got == nil {
		t.Fatal("task not found")
	}
	if got.StartDate != nil || got.EndDate != nil {
		t.Errorf("computed dates must not be set on create: %+v", got)
	}
	if got.EarliestStart == nil || !got.EarliestStart.Equal(*day(t, "2024-01-03")) {
		t.Errorf("earliest start not round-tripped: %v", got.EarliestStart)
	}
	if !got.Milestone || got.EstimatedDuration == nil || *got.EstimatedDuration != 2 {
		t.Errorf("unexpected task: %+v", got)
	}

	got.Name = "Design v2"
	got.EstimatedDuration = nil
	if err := s.UpdateTask(ctx, got); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	updated, _ := s.GetTask(ctx, id)
	if updated.Name != "Design v2" || updated.EstimatedDuration != nil {
		t.Errorf("update not applied: %+v", updated)
	}

	for _, est := range []float64{-1, 1000, 1e19} {
		if _, err := s.CreateTask(ctx, &wbs.Task{ProjectID: projectID, Name: "x", EstimatedDuration: float(est)}); !errors.Is(err, wbs.ErrInvalidEstimate) {
			t.Errorf("create estimate %v: expected ErrInvalidEstimate, got %v", est, err)
		}
		bad := *updated
		bad.EstimatedDuration = float(est)
		if err := s.UpdateTask(ctx, &bad); !errors.Is(err, wbs.ErrInvalidEstimate) {
			t.Errorf("update estimate %v: expected ErrInvalidEstimate, got %v", est, err)
		}
	}

	if err := s.UpdateTask(ctx, &wbs.Task{ID: "missing"}); !errors.Is(err, wbs.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	if err := s.DeleteTask(ctx, id); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := s.DeleteTask(ctx, id); !errors.Is(err, wbs.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestAssignTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, employeeID := seed(t, s)
	taskID := createTask(t, s, projectID, "a", 1)

	if err := s.AssignTask(ctx, taskID, employeeID); !errors.Is(err, wbs.ErrNotProjectMember) {
		t.Errorf("expected ErrNotProjectMember, got %v", err)
	}
	if err := s.AssignTask(ctx, "missing", employeeID); !errors.Is(err, wbs.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	if err := s.AddMember(ctx, &wbs.Member{ProjectID: projectID, EmployeeID: employeeID}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := s.AssignTask(ctx, taskID, employeeID); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	// Reassigning the same task replaces the assignee.
	if err := s.AssignTask(ctx, taskID, employeeID); err != nil {
		t.Fatalf("AssignTask again: %v", err)
	}

	snap, err := s.LoadSnapshot(ctx, projectID)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Assignments[taskID] != employeeID {
		t.Errorf("expected assignment, got %v", snap.Assignments)
	}

	if err := s.UnassignTask(ctx, taskID); err != nil {
		t.Fatalf("UnassignTask: %v", err)
	}
	if err := s.UnassignTask(ctx, taskID); err != nil {
		t.Errorf("UnassignTask without assignee: %v", err)
	}
	if err := s.UnassignTask(ctx, "missing"); !errors.Is(err, wbs.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDependencies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, _ := seed(t, s)

	a := createTask(t, s, projectID, "a", 1)
	b := createTask(t, s, projectID, "b", 1)
	c := createTask(t, s, projectID, "c", 1)

	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: b, DependsOnID: a}); err != nil {
		t.Fatalf("AddDependency b->a: %v", err)
	}
	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: c, DependsOnID: b}); err != nil {
		t.Fatalf("AddDependency c->b: %v", err)
	}

	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: b, DependsOnID: a}); !errors.Is(err, wbs.ErrDependencyExists) {
		t.Errorf("expected ErrDependencyExists, got %v", err)
	}
	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: a, DependsOnID: c}); !errors.Is(err, wbs.ErrCircularDependency) {
		t.Errorf("expected ErrCircularDependency, got %v", err)
	}
	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: a, DependsOnID: a}); !errors.Is(err, wbs.ErrCircularDependency) {
		t.Errorf("expected ErrCircularDependency for self edge, got %v", err)
	}
	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: a, DependsOnID: "missing"}); !errors.Is(err, wbs.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	other, _ := s.CreateProject(ctx, &wbs.Project{Name: "Other"})
	x := createTask(t, s, other, "x", 1)
	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: x, DependsOnID: a}); !errors.Is(err, wbs.ErrInvalidDependency) {
		t.Errorf("expected ErrInvalidDependency, got %v", err)
	}

	deps, err := s.ListDependencies(ctx, projectID)
	if err != nil {
		t.Fatalf("ListDependencies: %v", err)
	}
	want := []wbs.Dependency{
		{TaskID: b, DependsOnID: a, DependencyType: wbs.DependencyFS},
		{TaskID: c, DependsOnID: b, DependencyType: wbs.DependencyFS},
	}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("got %+v, want %+v", deps, want)
	}

	if err := s.RemoveDependency(ctx, c, b); err != nil {
		t.Fatalf("RemoveDependency: %v", err)
	}
	if err := s.RemoveDependency(ctx, c, b); !errors.Is(err, wbs.ErrDependencyNotFound) {
		t.Errorf("expected ErrDependencyNotFound, got %v", err)
	}

	// Removing the edge makes a -> c legal again.
	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: a, DependsOnID: c}); err != nil {
		t.Errorf("AddDependency a->c after removal: %v", err)
	}

	if err := s.DeleteTask(ctx, a); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	deps, _ = s.ListDependencies(ctx, projectID)
	if len(deps) != 0 {
		t.Errorf("expected edges to cascade, got %+v", deps)
	}
}

func TestLoadSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadSnapshot(ctx, "missing"); !errors.Is(err, wbs.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}

	projectID, employeeID := seed(t, s)
	phaseID, err := s.CreatePhase(ctx, &wbs.Phase{ProjectID: projectID, Name: "Build"})
	if err != nil {
		t.Fatalf("CreatePhase: %v", err)
	}
	if err := s.AddMember(ctx, &wbs.Member{ProjectID: projectID, EmployeeID: employeeID, AllocationRatio: 0.5}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	a := createTask(t, s, projectID, "a", 1)
	b, err := s.CreateTask(ctx, &wbs.Task{ProjectID: projectID, Name: "b", PhaseID: &phaseID})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: b, DependsOnID: a}); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := s.AssignTask(ctx, b, employeeID); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if _, err := s.CreateChecklist(ctx, &wbs.Checklist{TaskID: b, ItemName: "review", Done: true}); err != nil {
		t.Fatalf("CreateChecklist: %v", err)
	}

	snap, err := s.LoadSnapshot(ctx, projectID)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Project.ID != projectID {
		t.Errorf("wrong project: %+v", snap.Project)
	}
	if len(snap.Tasks) != 2 || snap.Tasks[0].ID != a || snap.Tasks[1].ID != b {
		t.Errorf("tasks not in insertion order: %+v", snap.Tasks)
	}
	if len(snap.Dependencies) != 1 {
		t.Errorf("expected 1 dependency, got %d", len(snap.Dependencies))
	}
	if snap.Assignments[b] != employeeID {
		t.Errorf("missing assignment: %v", snap.Assignments)
	}
	if snap.Allocations[employeeID] != 0.5 {
		t.Errorf("missing allocation: %v", snap.Allocations)
	}
	if snap.Employees[employeeID].Name != "Ada" {
		t.Errorf("missing employee: %v", snap.Employees)
	}
	if snap.Phases[phaseID].Name != "Build" {
		t.Errorf("missing phase: %v", snap.Phases)
	}
	if len(snap.Checklists) != 1 || snap.Checklists[0].TaskID != b || !snap.Checklists[0].Done {
		t.Errorf("unexpected checklists: %+v", snap.Checklists)
	}
}

func TestSaveScheduleIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, _ := seed(t, s)
	a := createTask(t, s, projectID, "a", 1)

	dates := []wbs.TaskDates{
		{TaskID: a, StartDate: *day(t, "2024-01-01"), EndDate: *day(t, "2024-01-02")},
		{TaskID: "missing", StartDate: *day(t, "2024-01-03"), EndDate: *day(t, "2024-01-03")},
	}
	if err := s.SaveSchedule(ctx, projectID, dates); !errors.Is(err, wbs.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	got, _ := s.GetTask(ctx, a)
	if got.StartDate != nil || got.EndDate != nil {
		t.Errorf("partial write leaked: %+v", got)
	}

	if err := s.SaveSchedule(ctx, projectID, dates[:1]); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	got, _ = s.GetTask(ctx, a)
	if got.EndDate == nil || !got.EndDate.Equal(*day(t, "2024-01-02")) {
		t.Errorf("end date not saved: %v", got.EndDate)
	}
}

func TestCalculateScheduleEndToEnd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, employeeID := seed(t, s)

	if err := s.AddMember(ctx, &wbs.Member{ProjectID: projectID, EmployeeID: employeeID, AllocationRatio: 0.5}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	a := createTask(t, s, projectID, "a", 2)
	b := createTask(t, s, projectID, "b", 3)
	if err := s.AddDependency(ctx, &wbs.Dependency{TaskID: b, DependsOnID: a}); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := s.AssignTask(ctx, b, employeeID); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}

	logger, _ := test.NewNullLogger()
	calc := schedule.NewCalculator(s, logger)

	res, err := calc.Calculate(ctx, projectID)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.TotalDuration != 10 {
		t.Errorf("expected total duration 10, got %d", res.TotalDuration)
	}
	if !reflect.DeepEqual(res.CriticalPath, []string{a, b}) {
		t.Errorf("unexpected critical path %v", res.CriticalPath)
	}
	if res.Tasks[1].Assignee == nil || res.Tasks[1].Assignee.ID != employeeID {
		t.Errorf("assignee not resolved: %+v", res.Tasks[1])
	}

	// b takes 6 business days at half allocation, starting after a ends on Jan 2.
	got, _ := s.GetTask(ctx, b)
	if got.StartDate == nil || !got.StartDate.Equal(*day(t, "2024-01-03")) {
		t.Errorf("b start = %v, want 2024-01-03", got.StartDate)
	}
	if got.EndDate == nil || !got.EndDate.Equal(*day(t, "2024-01-10")) {
		t.Errorf("b end = %v, want 2024-01-10", got.EndDate)
	}
}

func TestChecklists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, _ := seed(t, s)
	taskID := createTask(t, s, projectID, "a", 1)

	if _, err := s.CreateChecklist(ctx, &wbs.Checklist{TaskID: "missing", ItemName: "x"}); !errors.Is(err, wbs.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	second, err := s.CreateChecklist(ctx, &wbs.Checklist{TaskID: taskID, ItemName: "deploy", SortOrder: 2})
	if err != nil {
		t.Fatalf("CreateChecklist: %v", err)
	}
	if _, err := s.CreateChecklist(ctx, &wbs.Checklist{TaskID: taskID, ItemName: "write", SortOrder: 1}); err != nil {
		t.Fatalf("CreateChecklist: %v", err)
	}

	items, err := s.ListChecklists(ctx, taskID)
	if err != nil {
		t.Fatalf("ListChecklists: %v", err)
	}
	if len(items) != 2 || items[0].ItemName != "write" || items[1].ItemName != "deploy" {
		t.Fatalf("unexpected checklist order: %+v", items)
	}

	c, err := s.GetChecklist(ctx, second)
	if err != nil || c == nil {
		t.Fatalf("GetChecklist: %v, %v", c, err)
	}
	c.Done = true
	if err := s.UpdateChecklist(ctx, c); err != nil {
		t.Fatalf("UpdateChecklist: %v", err)
	}
	c, _ = s.GetChecklist(ctx, second)
	if !c.Done {
		t.Errorf("update not applied: %+v", c)
	}
	if err := s.UpdateChecklist(ctx, &wbs.Checklist{ID: "missing"}); !errors.Is(err, wbs.ErrChecklistNotFound) {
		t.Errorf("expected ErrChecklistNotFound, got %v", err)
	}
	if _, err := s.ListChecklists(ctx, "missing"); !errors.Is(err, wbs.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	if err := s.DeleteChecklist(ctx, second); err != nil {
		t.Fatalf("DeleteChecklist: %v", err)
	}
	if err := s.DeleteChecklist(ctx, second); !errors.Is(err, wbs.ErrChecklistNotFound) {
		t.Errorf("expected ErrChecklistNotFound, got %v", err)
	}

	// Items go away with their task.
	if err := s.DeleteTask(ctx, taskID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	snap, _ := s.LoadSnapshot(ctx, projectID)
	if len(snap.Checklists) != 0 {
		t.Errorf("expected checklists to cascade, got %+v", snap.Checklists)
	}
}

func TestCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, c := range []wbs.Code{
		{Type: "task_status", Value: "TODO", Label: "To do"},
		{Type: "project_status", Value: "ACTIVE", Label: "Active"},
		{Type: "task_status", Value: "DONE", Label: "Done"},
	} {
		if err := s.CreateCode(ctx, &c); err != nil {
			t.Fatalf("CreateCode %s: %v", c.Value, err)
		}
	}
	if err := s.CreateCode(ctx, &wbs.Code{Type: "other", Value: "TODO", Label: "x"}); !errors.Is(err, wbs.ErrCodeExists) {
		t.Errorf("expected ErrCodeExists, got %v", err)
	}

	codes, err := s.ListCodes(ctx, "task_status")
	if err != nil {
		t.Fatalf("ListCodes: %v", err)
	}
	want := []wbs.Code{
		{Type: "task_status", Value: "TODO", Label: "To do"},
		{Type: "task_status", Value: "DONE", Label: "Done"},
	}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("got %+v, want %+v", codes, want)
	}

	none, err := s.ListCodes(ctx, "unknown")
	if err != nil || len(none) != 0 {
		t.Errorf("expected no codes, got %v, %v", none, err)
	}
}

func TestOpenEnablesForeignKeysOnEveryConnection(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "wbs.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	// Without idle connections every query runs on a fresh connection.
	s.db.SetMaxIdleConns(0)

	for i := 0; i < 3; i++ {
		var fk int
		if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("Failed to query foreign_keys: %v", err)
		}
		if fk != 1 {
			t.Errorf("connection %d: expected foreign_keys enabled (1), got %d", i, fk)
		}
	}

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected journal_mode wal, got %s", mode)
	}

	ctx := context.Background()
	if err := s.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO wbs_tasks (id, project_id, name) VALUES ('t1', 'missing', 'orphan')`); err == nil {
		t.Error("expected foreign key violation for orphan task")
	}
}

func TestCalculateScheduleAtInputBounds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, employeeID := seed(t, s)

	if err := s.AddMember(ctx, &wbs.Member{ProjectID: projectID, EmployeeID: employeeID, AllocationRatio: wbs.MinAllocation}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	a := createTask(t, s, projectID, "a", wbs.MaxEstimate)
	if err := s.AssignTask(ctx, a, employeeID); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}

	logger, _ := test.NewNullLogger()
	calc := schedule.NewCalculator(s, logger)

	res, err := calc.Calculate(ctx, projectID)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	wantEnd := schedule.AddBusinessDays(*day(t, "2024-01-01"), schedule.MaxDuration-1)
	if end := res.Tasks[0].EndDate; end == nil || !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %s", end, wantEnd.Format(time.DateOnly))
	}

	got, err := s.GetTask(ctx, a)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.EndDate == nil || !got.EndDate.Equal(wantEnd) {
		t.Errorf("stored end = %v, want %s", got.EndDate, wantEnd.Format(time.DateOnly))
	}

	// Stored dates read back cleanly on the next run.
	if _, err := calc.Calculate(ctx, projectID); err != nil {
		t.Fatalf("Calculate again: %v", err)
	}
}

func TestCalculateScheduleOutOfRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	projectID, err := s.CreateProject(ctx, &wbs.Project{Name: "Far", StartDate: day(t, "9999-12-01")})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	a := createTask(t, s, projectID, "a", 30)

	logger, _ := test.NewNullLogger()
	if _, err := schedule.NewCalculator(s, logger).Calculate(ctx, projectID); !errors.Is(err, wbs.ErrScheduleOutOfRange) {
		t.Fatalf("expected ErrScheduleOutOfRange, got %v", err)
	}

	got, _ := s.GetTask(ctx, a)
	if got.StartDate != nil || got.EndDate != nil {
		t.Errorf("nothing should be saved, got %+v", got)
	}
}
