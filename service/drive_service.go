package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"apparel-designer/models"
)

// ErrExportDisabled is returned when no Drive credentials or folder are configured
var ErrExportDisabled = errors.New("design export is not configured")

// DriveUploader stores one file in a Drive folder
type DriveUploader interface {
	Upload(ctx context.Context, folderID, name, mimeType string, data []byte) (models.ExportResponse, error)
}

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
}

// Ensure DriveService implements DriveUploader
var _ DriveUploader = (*DriveService)(nil)

// NewDriveService creates a new DriveService instance.
// credentialsPath is the path to the Service Account JSON file.
func NewDriveService(ctx context.Context, credentialsPath string) (*DriveService, error) {
	client, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveService{client: client}, nil
}

// Upload creates a file inside folderID
func (ds *DriveService) Upload(ctx context.Context, folderID, name, mimeType string, data []byte) (models.ExportResponse, error) {
	file := &drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{folderID},
	}
	created, err := ds.client.Files.Create(file).
		Media(bytes.NewReader(data)).
		Fields("id, name, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return models.ExportResponse{}, fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return models.ExportResponse{FileID: created.Id, FileName: created.Name, WebLink: created.WebViewLink}, nil
}

// ExportService rasterizes a design and uploads it to Drive
type ExportService struct {
	raster   Rasterizer
	uploader DriveUploader
	folderID string
	logger   *zap.Logger
}

// NewExportService creates a new ExportService. A nil uploader disables exports.
func NewExportService(raster Rasterizer, uploader DriveUploader, folderID string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{raster: raster, uploader: uploader, folderID: folderID, logger: logger}
}

// Enabled reports whether exports can be uploaded
func (s *ExportService) Enabled() bool {
	return s.uploader != nil && s.folderID != ""
}

// Export uploads svg as "<summary>.png"
func (s *ExportService) Export(ctx context.Context, summary string, svg []byte) (models.ExportResponse, error) {
	if !s.Enabled() {
		return models.ExportResponse{}, ErrExportDisabled
	}
	png, err := s.raster.PNG(ctx, svg)
	if err != nil {
		return models.ExportResponse{}, err
	}
	res, err := s.uploader.Upload(ctx, s.folderID, summary+".png", "image/png", png)
	if err != nil {
		s.logger.Error("❌ Error exporting design", zap.String("name", summary), zap.Error(err))
		return models.ExportResponse{}, err
	}
	s.logger.Info("✓ Design exported", zap.String("file_id", res.FileID), zap.String("name", res.FileName))
	return res, nil
}
