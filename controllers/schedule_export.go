package controllers

import (
	"bytes"
	"fmt"
	"time"

	"jadwali_go/config"
	"jadwali_go/services"
	"jadwali_go/services/timetable"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ScheduleExportController renders a generated weekly table as an xlsx
// workbook for download.
type ScheduleExportController struct {
	store    *services.TimetableStore
	archive  *services.ExportArchiveService
	validate *validator.Validate
}

func NewScheduleExportController(store *services.TimetableStore, archive *services.ExportArchiveService) *ScheduleExportController {
	return &ScheduleExportController{
		store:    store,
		archive:  archive,
		validate: validator.New(),
	}
}

// Export assembles the weekly table for the posted selection and streams it
// back as a workbook. The selection must be valid; exports of failed
// assemblies are rejected.
func (sec *ScheduleExportController) Export(c *fiber.Ctx) error {
	uploadID := c.Params("uploadId")
	pt, ok := sec.store.Get(uploadID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "upload not found or expired"})
	}

	var req timetable.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := sec.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "desired_courses is required"})
	}

	assembler := timetable.NewAssembler(currentTables())
	result := assembler.Assemble(pt.CourseGroups, req)
	if !result.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}

	buf, err := renderWeeklyWorkbook(result.WeeklyTable)
	if err != nil {
		logrus.WithError(err).Error("Failed to render schedule workbook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render workbook"})
	}

	fileName := fmt.Sprintf("schedule_%s.xlsx", time.Now().Format("2006-01-02"))

	if config.AppConfig.ArchiveUploads && sec.archive != nil {
		clone := bytes.NewBuffer(append([]byte(nil), buf.Bytes()...))
		go func() {
			if _, err := sec.archive.ArchiveExport(uploadID, fileName, clone); err != nil {
				logrus.WithError(err).Warn("Failed to archive schedule export")
			}
		}()
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.Send(buf.Bytes())
}

const exportSheet = "Schedule"

// renderWeeklyWorkbook draws the weekly table with one row per day and one
// column per period, merging the columns of multi-slot sessions.
func renderWeeklyWorkbook(table *timetable.WeeklyTable) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// The source grids are right-to-left; keep the export the same way.
	rtl := true
	if err := f.SetSheetView(exportSheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "999999"},
			{Type: "right", Style: 1, Color: "999999"},
			{Type: "top", Style: 1, Color: "999999"},
			{Type: "bottom", Style: 1, Color: "999999"},
		},
	})
	if err != nil {
		return nil, err
	}

	// Header row: corner cell then the slot labels.
	if err := f.SetCellValue(exportSheet, "A1", "اليوم"); err != nil {
		return nil, err
	}
	for i, slot := range table.Structure.TimeSlots {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		if err := f.SetCellValue(exportSheet, cell, slot.Label); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(table.Structure.TimeSlots)+1, 1)
	_ = f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)

	for dayIdx, day := range table.Structure.Days {
		rowNum := dayIdx + 2
		dayCell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetCellValue(exportSheet, dayCell, day); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(exportSheet, dayCell, dayCell, headerStyle)

		cells := table.Schedule[day]
		for slotIdx := 0; slotIdx < len(table.Structure.TimeSlots); slotIdx++ {
			if slotIdx >= len(cells) || cells[slotIdx] == nil {
				continue
			}
			block := cells[slotIdx]
			if block.IsContinuation {
				continue
			}

			startCell, _ := excelize.CoordinatesToCellName(slotIdx+2, rowNum)
			endCol := slotIdx + block.TotalSpan
			if endCol > len(table.Structure.TimeSlots) {
				endCol = len(table.Structure.TimeSlots)
			}
			endCell, _ := excelize.CoordinatesToCellName(endCol+1, rowNum)
			if endCell != startCell {
				if err := f.MergeCell(exportSheet, startCell, endCell); err != nil {
					return nil, err
				}
			}

			text := block.CourseLine
			if block.NameLine != "" {
				text += "\n" + block.NameLine
			}
			if block.DetailLine != "" {
				text += "\n" + block.DetailLine
			}
			if err := f.SetCellValue(exportSheet, startCell, text); err != nil {
				return nil, err
			}
			_ = f.SetCellStyle(exportSheet, startCell, endCell, cellStyle)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 14)
	endColName, _ := excelize.ColumnNumberToName(len(table.Structure.TimeSlots) + 1)
	_ = f.SetColWidth(exportSheet, "B", endColName, 22)
	for r := 2; r <= len(table.Structure.Days)+1; r++ {
		_ = f.SetRowHeight(exportSheet, r, 54)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
