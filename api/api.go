package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/wbs"
	"github.com/meikuraledutech/wbs/schedule"
	"github.com/sirupsen/logrus"
)

type handler struct {
	store wbs.Store
	calc  *schedule.Calculator
	log   logrus.FieldLogger
}

// New returns a fiber app exposing the store and the schedule calculator.
func New(store wbs.Store, calc *schedule.Calculator, log logrus.FieldLogger) *fiber.App {
	h := &handler{store: store, calc: calc, log: log}

	app := fiber.New()
	h.schemaRoutes(app)
	h.employeeRoutes(app)
	h.projectRoutes(app)
	h.memberRoutes(app)
	h.taskRoutes(app)
	h.dependencyRoutes(app)
	h.checklistRoutes(app)
	h.codeRoutes(app)
	h.scheduleRoutes(app)
	return app
}

// statusFor maps store and engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, wbs.ErrProjectNotFound),
		errors.Is(err, wbs.ErrEmployeeNotFound),
		errors.Is(err, wbs.ErrPhaseNotFound),
		errors.Is(err, wbs.ErrTaskNotFound),
		errors.Is(err, wbs.ErrMemberNotFound),
		errors.Is(err, wbs.ErrDependencyNotFound),
		errors.Is(err, wbs.ErrChecklistNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, wbs.ErrDuplicateEmail),
		errors.Is(err, wbs.ErrMemberExists),
		errors.Is(err, wbs.ErrDependencyExists),
		errors.Is(err, wbs.ErrCodeExists):
		return fiber.StatusConflict
	case errors.Is(err, wbs.ErrCircularDependency),
		errors.Is(err, wbs.ErrScheduleOutOfRange):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, wbs.ErrNotProjectMember),
		errors.Is(err, wbs.ErrInvalidAllocation),
		errors.Is(err, wbs.ErrInvalidEstimate),
		errors.Is(err, wbs.ErrInvalidDependency),
		errors.Is(err, errBadRequest):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func (h *handler) fail(c fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.Path()).Error("api: request failed")
	}

	body := fiber.Map{"error": strings.TrimPrefix(err.Error(), "wbs: ")}
	var cycle *schedule.CycleError
	if errors.As(err, &cycle) {
		body["tasks"] = cycle.TaskIDs
	}
	return c.Status(status).JSON(body)
}

func notFound(c fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": what + " not found"})
}

func invalidBody(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
}
