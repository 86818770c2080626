package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/wbs"
	"github.com/meikuraledutech/wbs/postgres"
	"github.com/meikuraledutech/wbs/schedule"
	"github.com/meikuraledutech/wbs/sqlite"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx := context.Background()
	log := logrus.New()

	// Postgres when DATABASE_URL is set, an in-memory SQLite database otherwise.
	var store wbs.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	} else {
		s, err := sqlite.Open(":memory:")
		if err != nil {
			log.Fatalf("open: %v", err)
		}
		defer s.Close()
		store = s
	}

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── People ────────────────────────────────────────────────────────
	ada, err := store.CreateEmployee(ctx, &wbs.Employee{Name: "Ada", Email: fmt.Sprintf("ada+%d@example.com", time.Now().UnixNano())})
	if err != nil {
		log.Fatalf("create employee: %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	projectID, err := store.CreateProject(ctx, &wbs.Project{Name: "Website relaunch", ManagerID: &ada, StartDate: &start})
	if err != nil {
		log.Fatalf("create project: %v", err)
	}
	fmt.Printf("project created: %s\n", projectID)

	// Ada works half time on this project, so her tasks take twice as long.
	if err := store.AddMember(ctx, &wbs.Member{ProjectID: projectID, EmployeeID: ada, Role: "developer", AllocationRatio: 0.5}); err != nil {
		log.Fatalf("add member: %v", err)
	}

	design, err := store.CreatePhase(ctx, &wbs.Phase{ProjectID: projectID, Name: "Design", SortOrder: 1})
	if err != nil {
		log.Fatalf("create phase: %v", err)
	}

	// ── Tasks ─────────────────────────────────────────────────────────
	newTask := func(name string, days float64, phaseID *string) string {
		id, err := store.CreateTask(ctx, &wbs.Task{ProjectID: projectID, Name: name, EstimatedDuration: &days, PhaseID: phaseID})
		if err != nil {
			log.Fatalf("create task %s: %v", name, err)
		}
		return id
	}
	wireframes := newTask("Wireframes", 2, &design)
	mockups := newTask("Mockups", 3, &design)
	backend := newTask("Backend", 4, nil)
	launch := newTask("Launch", 1, nil)

	// ── Dependencies ──────────────────────────────────────────────────
	for _, d := range []wbs.Dependency{
		{TaskID: mockups, DependsOnID: wireframes},
		{TaskID: backend, DependsOnID: wireframes},
		{TaskID: launch, DependsOnID: mockups},
		{TaskID: launch, DependsOnID: backend},
	} {
		if err := store.AddDependency(ctx, &d); err != nil {
			log.Fatalf("add dependency: %v", err)
		}
	}

	if err := store.AssignTask(ctx, backend, ada); err != nil {
		log.Fatalf("assign: %v", err)
	}

	// A back edge is rejected before it reaches the database.
	err = store.AddDependency(ctx, &wbs.Dependency{TaskID: wireframes, DependsOnID: launch})
	fmt.Printf("\nback edge rejected: %v\n", err)

	// ── Schedule ──────────────────────────────────────────────────────
	calc := schedule.NewCalculator(store, log)
	result, err := calc.Calculate(ctx, projectID)
	if err != nil {
		log.Fatalf("calculate: %v", err)
	}
	fmt.Println("\nschedule:")
	printJSON(result)
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
