package controllers

import (
	"jadwali_go/services"
	"jadwali_go/services/timetable"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ScheduleGenerateController assembles a personalized weekly table from the
// parsed timetable of an upload.
type ScheduleGenerateController struct {
	store    *services.TimetableStore
	validate *validator.Validate
}

func NewScheduleGenerateController(store *services.TimetableStore) *ScheduleGenerateController {
	return &ScheduleGenerateController{
		store:    store,
		validate: validator.New(),
	}
}

// Generate builds the weekly table for the requested course selection.
// Validation problems (unknown courses, malformed selections) come back as a
// structured 422; span mismatches and conflicts are reported inside a
// successful response.
func (sgc *ScheduleGenerateController) Generate(c *fiber.Ctx) error {
	uploadID := c.Params("uploadId")
	pt, ok := sgc.store.Get(uploadID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "upload not found or expired"})
	}

	var req timetable.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := sgc.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "desired_courses is required"})
	}

	// Tables are rebuilt per request so canonical span edits apply
	// immediately.
	assembler := timetable.NewAssembler(currentTables())
	result := assembler.Assemble(pt.CourseGroups, req)
	if !result.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}
	return c.JSON(result)
}
