package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"apparel-designer/models"
)

var (
	// ErrNoStream is returned when capturing without a live camera stream
	ErrNoStream = errors.New("camera stream is not available")
	// ErrNothingCaptured is returned when accepting before a photo was taken
	ErrNothingCaptured = errors.New("no photo captured")
	// ErrDialogClosed is returned for capture actions while the dialog is closed
	ErrDialogClosed = errors.New("capture dialog is not open")
)

// CaptureService creates webcam capture dialogs
type CaptureService struct {
	devices     MediaDevices
	images      *ImageService
	constraints models.MediaConstraints
	logger      *zap.Logger
}

// NewCaptureService creates a new CaptureService
func NewCaptureService(devices MediaDevices, images *ImageService, logger *zap.Logger) *CaptureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureService{
		devices:     devices,
		images:      images,
		constraints: models.DefaultCaptureConstraints,
		logger:      logger,
	}
}

// NewDialog returns a closed dialog
func (s *CaptureService) NewDialog() *CaptureDialog {
	return &CaptureDialog{service: s}
}

// CaptureDialog owns at most one camera stream for as long as it is open.
// Every way out of the dialog (Accept, Close) stops the stream.
type CaptureDialog struct {
	service *CaptureService

	mu       sync.Mutex
	open     bool
	stream   MediaStream
	captured string
}

// Open starts the camera. Acquisition failures are logged and leave the
// dialog open without a stream. Opening an open dialog resets the capture.
func (d *CaptureDialog) Open(ctx context.Context) models.CaptureStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.captured = ""
	if d.open && d.stream != nil && d.stream.Active() {
		return d.statusLocked()
	}
	d.open = true
	if d.stream != nil {
		d.stream.Stop()
		d.stream = nil
	}

	stream, err := d.service.devices.GetUserMedia(ctx, d.service.constraints)
	if err != nil {
		d.service.logger.Error("❌ Error accessing webcam", zap.Error(err))
		return d.statusLocked()
	}
	d.stream = stream
	return d.statusLocked()
}

// Capture samples one frame and holds it as the pending photo
func (d *CaptureDialog) Capture(ctx context.Context) (string, error) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return "", ErrDialogClosed
	}
	stream := d.stream
	d.mu.Unlock()
	if stream == nil || !stream.Active() {
		return "", ErrNoStream
	}

	frame, err := stream.Frame(ctx)
	if err != nil {
		if errors.Is(err, ErrStreamStopped) {
			return "", ErrNoStream
		}
		return "", err
	}
	dataURI, err := d.service.images.EncodeFrame(frame)
	if err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// The dialog may have been closed while the frame was read
	if !d.open || d.stream != stream {
		return "", ErrDialogClosed
	}
	d.captured = dataURI
	return dataURI, nil
}

// Retake discards the pending photo; the stream keeps running
func (d *CaptureDialog) Retake() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrDialogClosed
	}
	d.captured = ""
	return nil
}

// Accept returns the pending photo and closes the dialog
func (d *CaptureDialog) Accept() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return "", ErrDialogClosed
	}
	if d.captured == "" {
		return "", ErrNothingCaptured
	}
	photo := d.captured
	d.closeLocked()
	return photo, nil
}

// Close cancels the dialog and releases the camera. Safe to call repeatedly.
func (d *CaptureDialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
}

// Status describes the dialog
func (d *CaptureDialog) Status() models.CaptureStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusLocked()
}

// StreamID returns the id of the live stream, or ""
func (d *CaptureDialog) StreamID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return ""
	}
	return d.stream.ID()
}

func (d *CaptureDialog) closeLocked() {
	if d.stream != nil {
		d.stream.Stop()
		d.stream = nil
	}
	d.open = false
	d.captured = ""
}

func (d *CaptureDialog) statusLocked() models.CaptureStatus {
	st := models.CaptureStatus{Open: d.open, CapturedImage: d.captured}
	if d.stream != nil && d.stream.Active() {
		st.StreamActive = true
		st.StreamID = d.stream.ID()
	}
	return st
}
