package schedule

import (
	"fmt"
	"strings"

	"github.com/meikuraledutech/wbs"
)

// CycleError reports the tasks that could not be ordered because they sit on,
// or downstream of, a dependency cycle.
type CycleError struct {
	TaskIDs []string
}

func (e *CycleError) Error() string {
	if len(e.TaskIDs) == 0 {
		return wbs.ErrCircularDependency.Error()
	}
	return fmt.Sprintf("%s: unresolved tasks %s", wbs.ErrCircularDependency.Error(), strings.Join(e.TaskIDs, ", "))
}

func (e *CycleError) Unwrap() error { return wbs.ErrCircularDependency }

// graph is the dependency graph of one project.
// ids keeps the natural order of the task set and drives every tie-break.
type graph struct {
	ids   []string
	preds map[string][]string // task -> tasks it depends on, in edge order
	succs map[string][]string // task -> dependents, in edge order
}

// newGraph builds the graph over ids. Edges touching a task outside ids are
// dropped.
func newGraph(ids []string, deps []wbs.Dependency) *graph {
	g := &graph{
		ids:   ids,
		preds: make(map[string][]string, len(ids)),
		succs: make(map[string][]string, len(ids)),
	}

	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	for _, d := range deps {
		if !known[d.TaskID] || !known[d.DependsOnID] {
			continue
		}
		g.preds[d.TaskID] = append(g.preds[d.TaskID], d.DependsOnID)
		g.succs[d.DependsOnID] = append(g.succs[d.DependsOnID], d.TaskID)
	}
	return g
}

// order runs Kahn's algorithm. Roots are queued in natural order, dependents
// in edge order, so the result is deterministic for a given input.
func (g *graph) order() ([]string, error) {
	inDegree := make(map[string]int, len(g.ids))
	for _, id := range g.ids {
		inDegree[id] = len(g.preds[id])
	}

	queue := make([]string, 0, len(g.ids))
	for _, id := range g.ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range g.succs[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(g.ids) {
		var stuck []string
		for _, id := range g.ids {
			if inDegree[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, &CycleError{TaskIDs: stuck}
	}
	return order, nil
}

// TopoSort orders taskIDs so every task comes after the tasks it depends on.
// It returns a *CycleError, which matches wbs.ErrCircularDependency, when the
// edges form a cycle.
func TopoSort(taskIDs []string, deps []wbs.Dependency) ([]string, error) {
	return newGraph(taskIDs, deps).order()
}
