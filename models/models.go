package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// CanonicalSpan is the externally updatable expectation for a course's total
// weekly span. Courses without a row carry no expectation; the built-in
// defaults seed this table on first run.
type CanonicalSpan struct {
	BaseModel
	CourseCode   string `json:"course_code" gorm:"size:20;not null;uniqueIndex"`
	ExpectedSpan int    `json:"expected_span" gorm:"not null"`
	Notes        string `json:"notes,omitempty" gorm:"size:255"`
}

// TimetableUpload is the audit record of one imported timetable file. The
// parsed grid itself is deliberately not persisted; it lives in the TTL store.
type TimetableUpload struct {
	BaseModel
	UploadID     string `json:"upload_id" gorm:"size:36;not null;uniqueIndex"`
	FileName     string `json:"file_name" gorm:"size:255;not null"`
	EntryCount   int    `json:"entry_count"`
	CourseCount  int    `json:"course_count"`
	SpanWarnings JSON   `json:"span_warnings,omitempty"`
	Status       string `json:"status" gorm:"size:20;not null;default:'parsed';type:enum('parsed','failed')"` // parsed, failed
	ArchiveURL   string `json:"archive_url,omitempty" gorm:"size:500"`
}

// ExportArchive records a generated schedule workbook archived to S3.
type ExportArchive struct {
	BaseModel
	UploadID string `json:"upload_id" gorm:"size:36;not null;index"`
	FileName string `json:"file_name" gorm:"size:255;not null"`
	S3Key    string `json:"s3_key" gorm:"size:500;not null"`
	FileSize int64  `json:"file_size"`
}
