package schedule

import (
	"fmt"
	"time"

	"github.com/meikuraledutech/wbs"
)

// maxYear is the last year a YYYY-MM-DD date can carry.
const maxYear = 9999

// Input is everything the engine needs for one project.
type Input struct {
	ProjectStart time.Time
	// Tasks in natural order; ties are broken by position in this slice.
	Tasks        []wbs.Task
	Dependencies []wbs.Dependency
	// Assignments maps task id to employee id.
	Assignments map[string]string
	// Allocations maps employee id to allocation ratio within the project.
	Allocations map[string]float64
}

// ratio returns the allocation ratio of the task's assignee, 1 when the task
// is unassigned or the assignee has no membership record.
func (in Input) ratio(taskID string) float64 {
	employeeID, ok := in.Assignments[taskID]
	if !ok {
		return 1
	}
	if r, ok := in.Allocations[employeeID]; ok {
		return r
	}
	return 1
}

// Window is the computed span of one task, both ends inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Plan is the engine output. Inputs are never mutated; dates live in Dates.
type Plan struct {
	Order         []string
	Dates         map[string]Window
	CriticalPath  []string
	TotalDuration int
}

// Compute orders the tasks, propagates earliest dates forward over business
// days and derives the critical path and the total duration.
func Compute(in Input) (*Plan, error) {
	ids := make([]string, len(in.Tasks))
	tasks := make(map[string]wbs.Task, len(in.Tasks))
	for i, t := range in.Tasks {
		ids[i] = t.ID
		tasks[t.ID] = t
	}

	g := newGraph(ids, in.Dependencies)
	order, err := g.order()
	if err != nil {
		return nil, err
	}

	projectStart := Day(in.ProjectStart)
	dates := make(map[string]Window, len(order))

	for _, id := range order {
		t := tasks[id]

		start := projectStart
		if preds := g.preds[id]; len(preds) > 0 {
			cleared, ok := clearedAfter(preds, dates)
			if ok {
				start = cleared
			}
		}
		if t.EarliestStart != nil {
			if floor := Day(*t.EarliestStart); floor.After(start) {
				start = floor
			}
		}
		if start.Before(projectStart) {
			start = projectStart
		}

		days := ActualDuration(t.EstimatedDuration, in.ratio(id))
		end := AddBusinessDays(start, days-1)
		if end.Year() > maxYear {
			return nil, fmt.Errorf("%w: task %s ends %s", wbs.ErrScheduleOutOfRange, id, end.Format(time.DateOnly))
		}
		dates[id] = Window{Start: start, End: end}
	}

	return &Plan{
		Order:         order,
		Dates:         dates,
		CriticalPath:  criticalPath(g, dates),
		TotalDuration: totalDuration(dates),
	}, nil
}

// clearedAfter returns the first business day on which every computed
// predecessor has finished. ok is false when none of preds has dates yet.
func clearedAfter(preds []string, dates map[string]Window) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, p := range preds {
		w, ok := dates[p]
		if !ok {
			continue
		}
		next := NextBusinessDay(w.End)
		if !found || next.After(latest) {
			latest = next
			found = true
		}
	}
	return latest, found
}

// criticalPath walks back from the latest finishing task, following at each
// step the predecessor that ends last. The walk is iterative and guarded by a
// visited set.
func criticalPath(g *graph, dates map[string]Window) []string {
	finish := ""
	var latest time.Time
	for _, id := range g.ids {
		w, ok := dates[id]
		if !ok {
			continue
		}
		if finish == "" || w.End.After(latest) {
			finish = id
			latest = w.End
		}
	}
	if finish == "" {
		return []string{}
	}

	visited := make(map[string]bool)
	var path []string
	for id := finish; id != "" && !visited[id]; {
		visited[id] = true
		path = append(path, id)

		next := ""
		var end time.Time
		for _, p := range g.preds[id] {
			w, ok := dates[p]
			if !ok {
				continue
			}
			if next == "" || w.End.After(end) {
				next = p
				end = w.End
			}
		}
		id = next
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// totalDuration is the inclusive number of calendar days between the earliest
// start and the latest end, 0 when nothing is scheduled.
func totalDuration(dates map[string]Window) int {
	if len(dates) == 0 {
		return 0
	}

	var first, last time.Time
	set := false
	for _, w := range dates {
		if !set || w.Start.Before(first) {
			first = w.Start
		}
		if !set || w.End.After(last) {
			last = w.End
		}
		set = true
	}
	return daysBetween(first, last) + 1
}
