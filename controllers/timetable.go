package controllers

import (
	"jadwali_go/database"
	"jadwali_go/models"
	"jadwali_go/services"

	"github.com/gofiber/fiber/v2"
)

// TimetableController serves the parsed data of an upload.
type TimetableController struct {
	store *services.TimetableStore
}

func NewTimetableController(store *services.TimetableStore) *TimetableController {
	return &TimetableController{store: store}
}

// GetCatalog returns the course/group catalog of one upload so a UI can
// render the selection form.
func (tc *TimetableController) GetCatalog(c *fiber.Ctx) error {
	uploadID := c.Params("uploadId")
	pt, ok := tc.store.Get(uploadID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "upload not found or expired"})
	}

	return c.JSON(fiber.Map{
		"upload_id":     pt.UploadID,
		"file_name":     pt.FileName,
		"imported_at":   pt.ImportedAt,
		"course_groups": pt.CourseGroups,
	})
}

// GetEntries returns the flat normalized schedule entries of one upload.
func (tc *TimetableController) GetEntries(c *fiber.Ctx) error {
	uploadID := c.Params("uploadId")
	pt, ok := tc.store.Get(uploadID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "upload not found or expired"})
	}

	return c.JSON(fiber.Map{
		"upload_id":     pt.UploadID,
		"entries":       pt.Entries,
		"span_warnings": pt.SpanWarnings,
	})
}

// ListUploads returns recent upload audit rows.
func (tc *TimetableController) ListUploads(c *fiber.Ctx) error {
	var uploads []models.TimetableUpload
	err := database.DB.
		Order("created_at DESC").
		Limit(50).
		Find(&uploads).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch uploads"})
	}
	return c.JSON(fiber.Map{"uploads": uploads})
}
