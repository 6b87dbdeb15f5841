package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"apparel-designer/utils"
)

const (
	// Uploads are fit into this box before embedding
	maxUploadDimension = 800
	uploadJPEGQuality  = 85
)

// ErrUnsupportedImage is returned when uploaded bytes are not a decodable image
var ErrUnsupportedImage = errors.New("unsupported image")

// ImageService turns uploaded files and camera frames into embeddable data URIs
type ImageService struct {
	logger *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{logger: logger}
}

// EncodeUpload decodes an uploaded image (PNG, JPEG, GIF or WebP), fits it
// into 800x800 and returns it as a data URI. Images with transparency stay
// PNG; everything else becomes JPEG.
func (s *ImageService) EncodeUpload(data []byte) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	s.logger.Debug("📸 Image decoded", zap.String("format", format), zap.Stringer("bounds", img.Bounds()))

	resized := fitImage(img, maxUploadDimension, maxUploadDimension)

	var buf bytes.Buffer
	if hasAlpha(resized) {
		if err := png.Encode(&buf, resized); err != nil {
			return "", fmt.Errorf("failed to encode to PNG: %w", err)
		}
		s.logger.Debug("✓ Upload optimized", zap.String("output", "png"), zap.Int("bytes", buf.Len()))
		return utils.EncodeDataURI("image/png", buf.Bytes()), nil
	}

	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: uploadJPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	s.logger.Debug("✓ Upload optimized", zap.String("output", "jpeg"), zap.Int("bytes", buf.Len()))
	return utils.EncodeDataURI("image/jpeg", buf.Bytes()), nil
}

// EncodeFrame encodes a camera frame as a PNG data URI
func (s *ImageService) EncodeFrame(frame image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}
	return utils.EncodeDataURI("image/png", buf.Bytes()), nil
}

// DecodeFrame decodes a frame pushed by the browser, either raw image bytes
// or a data URI as produced by canvas.toDataURL
func (s *ImageService) DecodeFrame(data []byte) (image.Image, error) {
	if bytes.HasPrefix(data, []byte("data:")) {
		_, payload, err := utils.DecodeDataURI(string(bytes.TrimSpace(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		data = payload
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

// fitImage scales img down to fit within maxW x maxH, keeping the aspect
// ratio. Smaller images are returned as they are.
func fitImage(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxW && bounds.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

func hasAlpha(img image.Image) bool {
	if opaque, ok := img.(interface{ Opaque() bool }); ok {
		return !opaque.Opaque()
	}
	return true
}
