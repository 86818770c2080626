package schedule

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/meikuraledutech/wbs"
)

func task(id string, estimate float64) wbs.Task {
	return wbs.Task{ID: id, ProjectID: "p1", Name: id, EstimatedDuration: &estimate}
}

func assertWindow(t *testing.T, plan *Plan, id, start, end string) {
	t.Helper()
	w, ok := plan.Dates[id]
	if !ok {
		t.Fatalf("task %s has no dates", id)
	}
	if !w.Start.Equal(date(t, start)) || !w.End.Equal(date(t, end)) {
		t.Errorf("task %s: got %s..%s, want %s..%s", id,
			w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly), start, end)
	}
}

func TestCompute_RootAnchoredAtProjectStart(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{{ID: "a"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "a", "2024-01-01", "2024-01-01")
	if plan.TotalDuration != 1 {
		t.Errorf("total duration = %d, want 1", plan.TotalDuration)
	}
}

func TestCompute_WeekendSkip(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("a", 5)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "a", "2024-01-01", "2024-01-05")
}

func TestCompute_CrossWeekendDuration(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-04"),
		Tasks:        []wbs.Task{task("a", 3)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "a", "2024-01-04", "2024-01-08")
	if plan.TotalDuration != 5 {
		t.Errorf("total duration = %d, want 5", plan.TotalDuration)
	}
}

func TestCompute_AllocationStretch(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("a", 4), task("b", 4)},
		Assignments:  map[string]string{"a": "half", "b": "ghost"},
		Allocations:  map[string]float64{"half": 0.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 8 business days for the half-time assignee.
	assertWindow(t, plan, "a", "2024-01-01", "2024-01-10")
	// No membership record means full allocation.
	assertWindow(t, plan, "b", "2024-01-01", "2024-01-04")
}

func TestCompute_SuccessorStartsNextBusinessDay(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("b", 1), task("a", 5)},
		Dependencies: []wbs.Dependency{dep("b", "a")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "a", "2024-01-01", "2024-01-05")
	assertWindow(t, plan, "b", "2024-01-08", "2024-01-08")
	if plan.TotalDuration != 8 {
		t.Errorf("total duration = %d, want 8", plan.TotalDuration)
	}
}

func TestCompute_EarliestStartFloor(t *testing.T) {
	later := date(t, "2024-01-10")
	b := task("b", 2)
	b.EarliestStart = &later

	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("a", 5), b},
		Dependencies: []wbs.Dependency{dep("b", "a")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "b", "2024-01-10", "2024-01-11")
}

func TestCompute_EarliestStartOnRoot(t *testing.T) {
	later := date(t, "2024-01-03")
	early := date(t, "2023-12-01")
	a, b := task("a", 1), task("b", 1)
	a.EarliestStart = &later
	b.EarliestStart = &early

	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{a, b},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "a", "2024-01-03", "2024-01-03")
	assertWindow(t, plan, "b", "2024-01-01", "2024-01-01")
}

func TestCompute_LatestPredecessorWins(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("short", 1), task("long", 3), task("join", 1)},
		Dependencies: []wbs.Dependency{dep("join", "short"), dep("join", "long")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "join", "2024-01-04", "2024-01-04")
	if want := []string{"long", "join"}; !reflect.DeepEqual(plan.CriticalPath, want) {
		t.Errorf("critical path = %v, want %v", plan.CriticalPath, want)
	}
}

func TestCompute_DiamondCriticalPath(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("a", 1), task("b", 3), task("c", 1), task("d", 1)},
		Dependencies: []wbs.Dependency{dep("b", "a"), dep("c", "a"), dep("d", "b"), dep("d", "c")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertWindow(t, plan, "a", "2024-01-01", "2024-01-01")
	assertWindow(t, plan, "b", "2024-01-02", "2024-01-04")
	assertWindow(t, plan, "c", "2024-01-02", "2024-01-02")
	assertWindow(t, plan, "d", "2024-01-05", "2024-01-05")

	if want := []string{"a", "b", "d"}; !reflect.DeepEqual(plan.CriticalPath, want) {
		t.Errorf("critical path = %v, want %v", plan.CriticalPath, want)
	}
	if plan.TotalDuration != 5 {
		t.Errorf("total duration = %d, want 5", plan.TotalDuration)
	}
}

func TestCompute_FinishTieBrokenByNaturalOrder(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("x", 2), task("y", 2)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"x"}; !reflect.DeepEqual(plan.CriticalPath, want) {
		t.Errorf("critical path = %v, want %v", plan.CriticalPath, want)
	}
}

func TestCompute_WeekendProjectStartIsKept(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-06"),
		Tasks:        []wbs.Task{task("a", 2)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "a", "2024-01-06", "2024-01-08")
}

func TestCompute_Cycle(t *testing.T) {
	_, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("a", 1), task("b", 1)},
		Dependencies: []wbs.Dependency{dep("a", "b"), dep("b", "a")},
	})
	if !errors.Is(err, wbs.ErrCircularDependency) {
		t.Fatalf("expected ErrCircularDependency, got %v", err)
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	tasks := []wbs.Task{task("a", 2), task("b", 1)}
	_, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        tasks,
		Dependencies: []wbs.Dependency{dep("b", "a")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tk := range tasks {
		if tk.StartDate != nil || tk.EndDate != nil {
			t.Errorf("task %s was mutated", tk.ID)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	in := Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("a", 2), task("b", 3), task("c", 1), task("d", 4), task("e", 1)},
		Dependencies: []wbs.Dependency{dep("b", "a"), dep("c", "a"), dep("d", "c"), dep("e", "b"), dep("e", "d")},
		Assignments:  map[string]string{"d": "emp"},
		Allocations:  map[string]float64{"emp": 0.8},
	}

	first, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Compute(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestCompute_Empty(t *testing.T) {
	plan, err := Compute(Input{ProjectStart: date(t, "2024-01-01")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.CriticalPath) != 0 || plan.TotalDuration != 0 {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}

func TestCompute_MaxBoundTask(t *testing.T) {
	plan, err := Compute(Input{
		ProjectStart: date(t, "2024-01-01"),
		Tasks:        []wbs.Task{task("a", wbs.MaxEstimate)},
		Assignments:  map[string]string{"a": "e1"},
		Allocations:  map[string]float64{"e1": wbs.MinAllocation},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := stepBusinessDays(date(t, "2024-01-01"), MaxDuration-1)
	assertWindow(t, plan, "a", "2024-01-01", want.Format(time.DateOnly))
	if got := daysBetween(date(t, "2024-01-01"), want) + 1; plan.TotalDuration != got {
		t.Errorf("total duration = %d, want %d", plan.TotalDuration, got)
	}
}

func TestCompute_EndAfterYear9999(t *testing.T) {
	_, err := Compute(Input{
		ProjectStart: date(t, "9999-12-01"),
		Tasks:        []wbs.Task{task("a", 30)},
	})
	if !errors.Is(err, wbs.ErrScheduleOutOfRange) {
		t.Fatalf("expected ErrScheduleOutOfRange, got %v", err)
	}
}

func TestCompute_EndOnLastDay(t *testing.T) {
	// 9999-12-31 is a Friday.
	plan, err := Compute(Input{
		ProjectStart: date(t, "9999-12-27"),
		Tasks:        []wbs.Task{task("a", 5)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWindow(t, plan, "a", "9999-12-27", "9999-12-31")
}
