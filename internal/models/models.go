package models

import (
	"image"
	"time"
)

// CapturedImage is a decoded, upright picture and the file it came from
type CapturedImage struct {
	Image       image.Image
	Path        string
	Orientation string
	Rotation    int
	Width       int
	Height      int
}

// NewCapturedImage wraps a decoded image with its source metadata
func NewCapturedImage(img image.Image, path, orientation string, rotation int) *CapturedImage {
	b := img.Bounds()
	return &CapturedImage{
		Image:       img,
		Path:        path,
		Orientation: orientation,
		Rotation:    rotation,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}
}

// RecognitionResult holds the text blocks returned by a recognition provider,
// in the order the provider returned them
type RecognitionResult struct {
	Blocks   []string `json:"blocks"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// Notice is a transient, dismissible message shown to the user
type Notice struct {
	ID        int       `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is what a view currently displays
type Snapshot struct {
	HasImage    bool      `json:"has_image"`
	ImageWidth  int       `json:"image_width,omitempty"`
	ImageHeight int       `json:"image_height,omitempty"`
	Rotation    int       `json:"rotation"`
	Blocks      []string  `json:"blocks"`
	Notices     []Notice  `json:"notices"`
	UpdatedAt   time.Time `json:"updated_at"`
}
