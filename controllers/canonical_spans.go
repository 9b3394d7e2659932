package controllers

import (
	"strings"

	"jadwali_go/database"
	"jadwali_go/models"
	"jadwali_go/services/timetable"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CanonicalSpanController lets operators inspect and adjust the expected
// weekly span table that span validation checks against.
type CanonicalSpanController struct {
	hub      Broadcaster
	validate *validator.Validate
}

func NewCanonicalSpanController(hub Broadcaster) *CanonicalSpanController {
	return &CanonicalSpanController{hub: hub, validate: validator.New()}
}

// currentTables returns the lookup tables with database overrides applied.
// Without a database (or before seeding) the built-in defaults apply.
func currentTables() timetable.Tables {
	tables := timetable.DefaultTables()
	if database.DB == nil {
		return tables
	}
	var rows []models.CanonicalSpan
	if err := database.DB.Find(&rows).Error; err != nil {
		logrus.WithError(err).Warn("Failed to load canonical spans, using defaults")
		return tables
	}
	for _, row := range rows {
		tables.CanonicalSpans[row.CourseCode] = row.ExpectedSpan
	}
	return tables
}

// List returns every canonical span row.
func (csc *CanonicalSpanController) List(c *fiber.Ctx) error {
	var rows []models.CanonicalSpan
	if err := database.DB.Order("course_code").Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch canonical spans"})
	}
	return c.JSON(fiber.Map{"canonical_spans": rows})
}

type canonicalSpanRequest struct {
	CourseCode   string `json:"course_code" validate:"required"`
	ExpectedSpan int    `json:"expected_span" validate:"required,min=1,max=48"`
	Notes        string `json:"notes"`
}

// Upsert creates or updates the expectation for one course code.
func (csc *CanonicalSpanController) Upsert(c *fiber.Ctx) error {
	var req canonicalSpanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	req.CourseCode = strings.TrimSpace(req.CourseCode)
	if err := csc.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "course_code and a positive expected_span are required"})
	}

	row := models.CanonicalSpan{
		CourseCode:   req.CourseCode,
		ExpectedSpan: req.ExpectedSpan,
		Notes:        req.Notes,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"expected_span", "notes"}),
	}).Create(&row).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save canonical span"})
	}

	if csc.hub != nil {
		csc.hub.BroadcastEvent("canonical_spans_updated", fiber.Map{
			"course_code":   req.CourseCode,
			"expected_span": req.ExpectedSpan,
		})
	}
	return c.JSON(fiber.Map{"success": true, "canonical_span": row})
}

// Delete removes the expectation for one course code.
func (csc *CanonicalSpanController) Delete(c *fiber.Ctx) error {
	courseCode := strings.TrimSpace(c.Params("courseCode"))
	if courseCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "course code is required"})
	}
	result := database.DB.Where("course_code = ?", courseCode).Delete(&models.CanonicalSpan{})
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete canonical span"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "canonical span not found"})
	}

	if csc.hub != nil {
		csc.hub.BroadcastEvent("canonical_spans_updated", fiber.Map{"course_code": courseCode, "deleted": true})
	}
	return c.JSON(fiber.Map{"success": true})
}
