package controllers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jadwali_go/config"
	"jadwali_go/database"
	"jadwali_go/models"
	"jadwali_go/services"
	"jadwali_go/services/timetable"
	"jadwali_go/storage"
	"jadwali_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// TimetableImportController handles uploading the university timetable grid
// and turning it into normalized schedule entries.
type TimetableImportController struct {
	store *services.TimetableStore
	hub   Broadcaster
}

// Broadcaster is the slice of the websocket hub the controllers need.
type Broadcaster interface {
	BroadcastEvent(eventType string, data interface{})
}

// NewTimetableImportController wires the controller to the shared store and hub.
func NewTimetableImportController(store *services.TimetableStore, hub Broadcaster) *TimetableImportController {
	return &TimetableImportController{
		store: store,
		hub:   hub,
	}
}

// Import parses an uploaded CSV/XLSX timetable grid and stores the result
// under a fresh upload id.
func (tic *TimetableImportController) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	if fileHeader.Size > config.AppConfig.MaxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file too large"})
	}

	allowed := strings.Split(config.AppConfig.AllowedExtensions, ",")
	if !utils.IsValidFileExtension(fileHeader.Filename, allowed) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type (csv, xlsx)"})
	}

	filename := strings.ToLower(fileHeader.Filename)
	var grid [][]string
	var parseErr error

	if strings.HasSuffix(filename, ".csv") {
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open file"})
		}
		defer file.Close()
		grid, parseErr = readCSVGrid(file)
	} else {
		tmpDir := filepath.Join(os.TempDir(), "jadwali-uploads")
		_ = os.MkdirAll(tmpDir, 0o755)
		tmp := filepath.Join(tmpDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), utils.SanitizeFilename(fileHeader.Filename)))
		if err := c.SaveFile(fileHeader, tmp); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to buffer upload"})
		}
		grid, parseErr = readXLSXGrid(tmp)
		_ = os.Remove(tmp)
	}
	if parseErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": parseErr.Error()})
	}

	uploadID := uuid.New().String()
	extractor := timetable.NewExtractor(currentTables())
	result, err := extractor.Extract(grid)
	if err != nil {
		tic.recordUpload(uploadID, fileHeader.Filename, nil, "failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tic.store.Put(&services.ParsedTimetable{
		UploadID:     uploadID,
		FileName:     fileHeader.Filename,
		Entries:      result.Entries,
		CourseGroups: result.CourseGroups,
		SpanWarnings: result.SpanWarnings,
		ImportedAt:   time.Now(),
	})
	tic.recordUpload(uploadID, fileHeader.Filename, result, "parsed")

	if config.AppConfig.ArchiveUploads {
		// Read the payload before the handler returns; Fiber recycles the
		// request context and the multipart form with it.
		if src, err := fileHeader.Open(); err == nil {
			raw, readErr := io.ReadAll(src)
			src.Close()
			if readErr == nil {
				go tic.archiveUpload(raw, fileHeader.Filename, uploadID)
			}
		}
	}

	if tic.hub != nil {
		tic.hub.BroadcastEvent("timetable_imported", fiber.Map{
			"upload_id":    uploadID,
			"file_name":    fileHeader.Filename,
			"entry_count":  len(result.Entries),
			"course_count": len(result.CourseGroups),
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"upload_id":     uploadID,
		"file_name":     fileHeader.Filename,
		"entry_count":   len(result.Entries),
		"course_count":  len(result.CourseGroups),
		"span_warnings": result.SpanWarnings,
	})
}

func (tic *TimetableImportController) recordUpload(uploadID, fileName string, result *timetable.ExtractResult, status string) {
	if database.DB == nil {
		return
	}
	upload := models.TimetableUpload{
		UploadID: uploadID,
		FileName: utils.SanitizeFilename(fileName),
		Status:   status,
	}
	if result != nil {
		upload.EntryCount = len(result.Entries)
		upload.CourseCount = len(result.CourseGroups)
		if len(result.SpanWarnings) > 0 {
			if raw, err := json.Marshal(result.SpanWarnings); err == nil {
				upload.SpanWarnings = raw
			}
		}
	}
	if err := database.DB.Create(&upload).Error; err != nil {
		logrus.WithError(err).Error("Failed to record timetable upload")
	}
}

func (tic *TimetableImportController) archiveUpload(raw []byte, fileName, uploadID string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("panic recovered while archiving upload")
		}
	}()

	svc, err := storage.NewStorageService()
	if err != nil {
		logrus.WithError(err).Warn("Skipping upload archive: storage unavailable")
		return
	}
	url, err := svc.UploadTimetableBytes(raw, fileName, uploadID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to archive uploaded timetable")
		return
	}
	if database.DB != nil {
		database.DB.Model(&models.TimetableUpload{}).
			Where("upload_id = ?", uploadID).
			Update("archive_url", url)
	}
	logrus.WithField("upload_id", uploadID).Info("Archived uploaded timetable file")
}

func readCSVGrid(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSXGrid(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// Use first sheet
	sht := f.GetSheetName(0)
	if sht == "" {
		sht = "Sheet1"
	}
	data, err := f.GetRows(sht)
	if err != nil {
		return nil, err
	}
	return data, nil
}
