package models

// FacingMode selects the camera direction requested from the media devices
type FacingMode string

const (
	FacingUser        FacingMode = "user"
	FacingEnvironment FacingMode = "environment"
)

// MediaConstraints describes the preferred video stream
type MediaConstraints struct {
	FacingMode  FacingMode `json:"facingMode"`
	IdealWidth  int        `json:"idealWidth"`
	IdealHeight int        `json:"idealHeight"`
}

// DefaultCaptureConstraints matches the front camera at 640x480
var DefaultCaptureConstraints = MediaConstraints{
	FacingMode:  FacingUser,
	IdealWidth:  640,
	IdealHeight: 480,
}

// CaptureStatus describes the webcam dialog of a session
type CaptureStatus struct {
	Open          bool   `json:"open"`
	StreamActive  bool   `json:"streamActive"`
	StreamID      string `json:"streamId,omitempty"`
	CapturedImage string `json:"capturedImage,omitempty"`
}

// ExportResponse is returned after uploading a rendered design
type ExportResponse struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	WebLink  string `json:"webLink,omitempty"`
}
