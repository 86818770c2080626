package api

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/wbs"
)

// ── Schema ────────────────────────────────────────────────────────
func (h *handler) schemaRoutes(r fiber.Router) {
	r.Post("/schema", func(c fiber.Ctx) error {
		if err := h.store.CreateSchema(c.Context()); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	r.Delete("/schema", func(c fiber.Ctx) error {
		if err := h.store.DropSchema(c.Context()); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})
}

// ── Employees ─────────────────────────────────────────────────────
func (h *handler) employeeRoutes(r fiber.Router) {
	r.Post("/employees", func(c fiber.Ctx) error {
		var req employeeRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		e, err := req.employee()
		if err != nil {
			return h.fail(c, err)
		}
		id, err := h.store.CreateEmployee(c.Context(), e)
		if err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	})

	r.Get("/employees", func(c fiber.Ctx) error {
		employees, err := h.store.ListEmployees(c.Context())
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(employees)
	})

	r.Get("/employees/:id", func(c fiber.Ctx) error {
		e, err := h.store.GetEmployee(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if e == nil {
			return notFound(c, "employee")
		}
		return c.JSON(e)
	})

	r.Put("/employees/:id", func(c fiber.Ctx) error {
		var req employeeUpdate
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		e, err := h.store.GetEmployee(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if e == nil {
			return notFound(c, "employee")
		}
		if err := req.apply(e); err != nil {
			return h.fail(c, err)
		}
		if err := h.store.UpdateEmployee(c.Context(), e); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(e)
	})
}

// ── Projects and phases ───────────────────────────────────────────
func (h *handler) projectRoutes(r fiber.Router) {
	r.Post("/projects", func(c fiber.Ctx) error {
		var req projectRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		p, err := req.project()
		if err != nil {
			return h.fail(c, err)
		}
		id, err := h.store.CreateProject(c.Context(), p)
		if err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	})

	r.Get("/projects", func(c fiber.Ctx) error {
		projects, err := h.store.ListProjects(c.Context())
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(projects)
	})

	r.Get("/projects/:id", func(c fiber.Ctx) error {
		p, err := h.store.GetProject(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if p == nil {
			return notFound(c, "project")
		}
		return c.JSON(p)
	})

	r.Put("/projects/:id", func(c fiber.Ctx) error {
		var req projectUpdate
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		p, err := h.store.GetProject(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if p == nil {
			return notFound(c, "project")
		}
		if err := req.apply(p); err != nil {
			return h.fail(c, err)
		}
		if err := h.store.UpdateProject(c.Context(), p); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(p)
	})

	r.Post("/projects/:id/phases", func(c fiber.Ctx) error {
		var req phaseRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		if err := required("name", req.Name); err != nil {
			return h.fail(c, err)
		}
		id, err := h.store.CreatePhase(c.Context(), &wbs.Phase{
			ProjectID:   c.Params("id"),
			Name:        req.Name,
			Description: req.Description,
			SortOrder:   req.SortOrder,
			Color:       req.Color,
		})
		if err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	})

	r.Get("/projects/:id/phases", func(c fiber.Ctx) error {
		phases, err := h.store.ListPhases(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(phases)
	})

	r.Put("/phases/:id", func(c fiber.Ctx) error {
		var req phaseUpdate
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		ph, err := h.store.GetPhase(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if ph == nil {
			return notFound(c, "phase")
		}
		if err := req.apply(ph); err != nil {
			return h.fail(c, err)
		}
		if err := h.store.UpdatePhase(c.Context(), ph); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(ph)
	})

	r.Delete("/phases/:id", func(c fiber.Ctx) error {
		if err := h.store.DeletePhase(c.Context(), c.Params("id")); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ── Members ───────────────────────────────────────────────────────
func (h *handler) memberRoutes(r fiber.Router) {
	r.Post("/projects/:id/members", func(c fiber.Ctx) error {
		var req memberRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		if err := required("employee_id", req.EmployeeID); err != nil {
			return h.fail(c, err)
		}
		m, err := req.member(c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if err := h.store.AddMember(c.Context(), m); err != nil {
			return h.fail(c, err)
		}
		if m.Employee, err = h.store.GetEmployee(c.Context(), m.EmployeeID); err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	})

	r.Get("/projects/:id/members", func(c fiber.Ctx) error {
		members, err := h.store.ListMembers(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(members)
	})

	r.Put("/projects/:id/members/:employeeID", func(c fiber.Ctx) error {
		var req memberRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		req.EmployeeID = c.Params("employeeID")
		m, err := req.member(c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if err := h.store.UpdateMember(c.Context(), m); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/projects/:id/members/:employeeID", func(c fiber.Ctx) error {
		if err := h.store.RemoveMember(c.Context(), c.Params("id"), c.Params("employeeID")); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ── Tasks ─────────────────────────────────────────────────────────
func (h *handler) taskRoutes(r fiber.Router) {
	r.Post("/projects/:id/tasks", func(c fiber.Ctx) error {
		var req taskRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		t, err := req.task()
		if err != nil {
			return h.fail(c, err)
		}
		t.ProjectID = c.Params("id")
		id, err := h.store.CreateTask(c.Context(), t)
		if err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	})

	// WBS view: tasks with assignee, phase, checklist and incoming edges.
	r.Get("/projects/:id/tasks", func(c fiber.Ctx) error {
		snap, err := h.store.LoadSnapshot(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(snap.WBS())
	})

	r.Get("/tasks/:id", func(c fiber.Ctx) error {
		t, err := h.store.GetTask(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if t == nil {
			return notFound(c, "task")
		}
		return c.JSON(t)
	})

	r.Put("/tasks/:id", func(c fiber.Ctx) error {
		var req taskRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		t, err := req.task()
		if err != nil {
			return h.fail(c, err)
		}
		t.ID = c.Params("id")
		if err := h.store.UpdateTask(c.Context(), t); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/tasks/:id", func(c fiber.Ctx) error {
		if err := h.store.DeleteTask(c.Context(), c.Params("id")); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/tasks/:id/assignee", func(c fiber.Ctx) error {
		var req assigneeRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		if err := required("employee_id", req.EmployeeID); err != nil {
			return h.fail(c, err)
		}
		if err := h.store.AssignTask(c.Context(), c.Params("id"), req.EmployeeID); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/tasks/:id/assignee", func(c fiber.Ctx) error {
		if err := h.store.UnassignTask(c.Context(), c.Params("id")); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ── Dependencies ──────────────────────────────────────────────────
func (h *handler) dependencyRoutes(r fiber.Router) {
	r.Post("/projects/:id/dependencies", func(c fiber.Ctx) error {
		var req dependencyRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		t, err := h.store.GetTask(c.Context(), req.TaskID)
		if err != nil {
			return h.fail(c, err)
		}
		if t != nil && t.ProjectID != c.Params("id") {
			return h.fail(c, fmt.Errorf("%w: task belongs to another project", wbs.ErrInvalidDependency))
		}
		d := &wbs.Dependency{TaskID: req.TaskID, DependsOnID: req.DependsOnID, DependencyType: req.DependencyType}
		if err := h.store.AddDependency(c.Context(), d); err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	})

	r.Get("/projects/:id/dependencies", func(c fiber.Ctx) error {
		deps, err := h.store.ListDependencies(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(deps)
	})

	r.Delete("/tasks/:id/dependencies/:dependsOnID", func(c fiber.Ctx) error {
		if err := h.store.RemoveDependency(c.Context(), c.Params("id"), c.Params("dependsOnID")); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ── Checklists ────────────────────────────────────────────────────
func (h *handler) checklistRoutes(r fiber.Router) {
	r.Post("/tasks/:id/checklists", func(c fiber.Ctx) error {
		var req checklistRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		if err := required("item_name", req.ItemName); err != nil {
			return h.fail(c, err)
		}
		id, err := h.store.CreateChecklist(c.Context(), &wbs.Checklist{
			TaskID:    c.Params("id"),
			ItemName:  req.ItemName,
			Done:      req.Done,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	})

	r.Get("/tasks/:id/checklists", func(c fiber.Ctx) error {
		items, err := h.store.ListChecklists(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(items)
	})

	r.Put("/checklists/:id", func(c fiber.Ctx) error {
		var req checklistUpdate
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		item, err := h.store.GetChecklist(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		if item == nil {
			return notFound(c, "checklist item")
		}
		if err := req.apply(item); err != nil {
			return h.fail(c, err)
		}
		if err := h.store.UpdateChecklist(c.Context(), item); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(item)
	})

	r.Delete("/checklists/:id", func(c fiber.Ctx) error {
		if err := h.store.DeleteChecklist(c.Context(), c.Params("id")); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ── Codes ─────────────────────────────────────────────────────────
func (h *handler) codeRoutes(r fiber.Router) {
	r.Post("/codes", func(c fiber.Ctx) error {
		var req codeRequest
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		code, err := req.code()
		if err != nil {
			return h.fail(c, err)
		}
		if err := h.store.CreateCode(c.Context(), code); err != nil {
			return h.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(code)
	})

	r.Get("/codes/:type", func(c fiber.Ctx) error {
		codes, err := h.store.ListCodes(c.Context(), c.Params("type"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(codes)
	})
}

// ── Schedule ──────────────────────────────────────────────────────
func (h *handler) scheduleRoutes(r fiber.Router) {
	r.Post("/projects/:id/calculate-schedule", func(c fiber.Ctx) error {
		result, err := h.calc.Calculate(c.Context(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(result)
	})
}
