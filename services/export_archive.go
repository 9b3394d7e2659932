package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"jadwali_go/config"
	"jadwali_go/database"
	"jadwali_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExportArchiveService keeps copies of generated schedule workbooks in S3 so
// a student can re-download an export after the parsed timetable has expired.
type ExportArchiveService struct {
	awsConfig aws.Config
}

// NewExportArchiveService creates a new service instance.
func NewExportArchiveService() *ExportArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; export archiving will fail until configured")
	}
	return &ExportArchiveService{awsConfig: cfg}
}

// ArchiveExport uploads a generated workbook to S3 and records its metadata.
func (eas *ExportArchiveService) ArchiveExport(uploadID, fileName string, workbook *bytes.Buffer) (*models.ExportArchive, error) {
	if eas.awsConfig.Region == "" {
		return nil, fmt.Errorf("AWS not configured")
	}

	now := time.Now()
	s3Key := fmt.Sprintf("exports/%d/%02d/%s/%s", now.Year(), now.Month(), uploadID, fileName)

	s3Client := s3.NewFromConfig(eas.awsConfig)
	_, err := s3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(config.AppConfig.S3BucketName),
		Key:         aws.String(s3Key),
		Body:        bytes.NewReader(workbook.Bytes()),
		ContentType: aws.String("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload export to S3: %v", err)
	}

	archive := models.ExportArchive{
		UploadID: uploadID,
		FileName: fileName,
		S3Key:    s3Key,
		FileSize: int64(workbook.Len()),
	}
	if err := database.DB.Create(&archive).Error; err != nil {
		logrus.WithError(err).Error("Failed to save export archive metadata")
		return nil, err
	}

	logrus.WithField("s3_key", s3Key).Info("Archived schedule export")
	return &archive, nil
}

// ListExports returns the archived exports for one upload, newest first.
func (eas *ExportArchiveService) ListExports(uploadID string) ([]models.ExportArchive, error) {
	var archives []models.ExportArchive
	err := database.DB.
		Where("upload_id = ?", uploadID).
		Order("created_at DESC").
		Find(&archives).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve export archives: %v", err)
	}
	return archives, nil
}

// DownloadExport streams an archived workbook back from S3.
func (eas *ExportArchiveService) DownloadExport(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.ExportArchive
	if err := database.DB.First(&archive, archiveID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", fmt.Errorf("archive not found")
		}
		return nil, "", fmt.Errorf("failed to retrieve archive: %v", err)
	}

	if eas.awsConfig.Region == "" {
		return nil, "", fmt.Errorf("AWS not configured")
	}
	s3Client := s3.NewFromConfig(eas.awsConfig)
	result, err := s3Client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(config.AppConfig.S3BucketName),
		Key:    aws.String(archive.S3Key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to download export from S3: %v", err)
	}
	return result.Body, archive.FileName, nil
}
