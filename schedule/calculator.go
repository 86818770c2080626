package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meikuraledutech/wbs"
	"github.com/sirupsen/logrus"
)

// Repository is the part of wbs.Store the calculator reads from and writes to.
type Repository interface {
	LoadSnapshot(ctx context.Context, projectID string) (*wbs.Snapshot, error)
	SaveSchedule(ctx context.Context, projectID string, dates []wbs.TaskDates) error
}

// Calculator computes and persists project schedules.
type Calculator struct {
	repo Repository
	log  logrus.FieldLogger
	now  func() time.Time
}

// NewCalculator returns a Calculator reading from and writing to repo.
func NewCalculator(repo Repository, log logrus.FieldLogger) *Calculator {
	return &Calculator{repo: repo, log: log, now: time.Now}
}

// WithClock replaces the clock used to default a missing project start date.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Calculate schedules every task of the project and persists the dates as one
// unit. On wbs.ErrProjectNotFound, a dependency cycle or a schedule running
// past year 9999 nothing is written.
func (c *Calculator) Calculate(ctx context.Context, projectID string) (*wbs.ScheduleResult, error) {
	log := c.log.WithField("project_id", projectID)

	snap, err := c.repo.LoadSnapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if len(snap.Tasks) == 0 {
		log.Debug("schedule: project has no tasks")
		return &wbs.ScheduleResult{
			Tasks:        []wbs.ScheduledTask{},
			CriticalPath: []string{},
		}, nil
	}

	projectStart := Day(c.now())
	if snap.Project.StartDate != nil {
		projectStart = Day(*snap.Project.StartDate)
	}

	plan, err := Compute(Input{
		ProjectStart: projectStart,
		Tasks:        snap.Tasks,
		Dependencies: snap.Dependencies,
		Assignments:  snap.Assignments,
		Allocations:  snap.Allocations,
	})
	if err != nil {
		var cycle *CycleError
		if errors.As(err, &cycle) {
			log.WithField("tasks", cycle.TaskIDs).Warn("schedule: circular dependency")
		}
		return nil, err
	}

	dates := make([]wbs.TaskDates, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		w := plan.Dates[t.ID]
		dates = append(dates, wbs.TaskDates{TaskID: t.ID, StartDate: w.Start, EndDate: w.End})
	}
	if err := c.repo.SaveSchedule(ctx, projectID, dates); err != nil {
		return nil, fmt.Errorf("wbs: save schedule: %w", err)
	}

	result := assemble(snap, plan)

	log.WithFields(logrus.Fields{
		"tasks":          len(result.Tasks),
		"critical_path":  len(result.CriticalPath),
		"total_duration": result.TotalDuration,
	}).Info("schedule: calculated")

	return result, nil
}

// assemble builds the response in the snapshot's natural task order.
func assemble(snap *wbs.Snapshot, plan *Plan) *wbs.ScheduleResult {
	tasks := make([]wbs.ScheduledTask, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		w := plan.Dates[t.ID]
		start, end := w.Start, w.End
		t.StartDate = &start
		t.EndDate = &end

		st := wbs.ScheduledTask{Task: t}
		if employeeID, ok := snap.Assignments[t.ID]; ok {
			if e, ok := snap.Employees[employeeID]; ok {
				st.Assignee = &e
			}
		}
		if t.PhaseID != nil {
			if ph, ok := snap.Phases[*t.PhaseID]; ok {
				st.Phase = &ph
			}
		}
		tasks = append(tasks, st)
	}

	return &wbs.ScheduleResult{
		Tasks:         tasks,
		CriticalPath:  plan.CriticalPath,
		TotalDuration: plan.TotalDuration,
	}
}
