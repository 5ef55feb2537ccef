// Package orientation reads the EXIF orientation of a captured picture and
// turns the decoded image upright before it is previewed or recognized.
package orientation

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

// Orientation is the value of the EXIF Orientation tag (0x0112).
type Orientation uint16

const (
	Undefined      Orientation = 0
	Normal         Orientation = 1
	FlipHorizontal Orientation = 2
	Rotate180      Orientation = 3
	FlipVertical   Orientation = 4
	Transpose      Orientation = 5
	Rotate90       Orientation = 6
	Transverse     Orientation = 7
	Rotate270      Orientation = 8
)

const orientationTagID = 0x0112

var names = map[Orientation]string{
	Undefined:      "undefined",
	Normal:         "normal",
	FlipHorizontal: "flip-horizontal",
	Rotate180:      "rotate-180",
	FlipVertical:   "flip-vertical",
	Transpose:      "transpose",
	Rotate90:       "rotate-90",
	Transverse:     "transverse",
	Rotate270:      "rotate-270",
}

func (o Orientation) String() string {
	if name, ok := names[o]; ok {
		return name
	}
	return fmt.Sprintf("orientation(%d)", uint16(o))
}

// rotations holds the clockwise rotation needed to display each tag upright.
// Mirrored variants only contribute their rotation; the mirror is not undone.
var rotations = map[Orientation]int{
	Rotate90:     90,
	Transpose:    90,
	Rotate180:    180,
	FlipVertical: 180,
	Rotate270:    270,
	Transverse:   270,
}

// Rotation maps an orientation tag to a clockwise rotation in degrees.
// Tags without an entry, including Undefined, map to 0.
func Rotation(o Orientation) int {
	return rotations[o]
}

// Read returns the orientation stored in the image file at path.
// A file without EXIF data yields Undefined and no error.
func Read(path string) (Orientation, error) {
	rawExif, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return Undefined, nil
		}
		return Undefined, fmt.Errorf("failed to extract exif from %s: %w", path, err)
	}

	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return Undefined, fmt.Errorf("failed to parse exif from %s: %w", path, err)
	}

	for _, tag := range tags {
		if tag.TagId != orientationTagID {
			continue
		}
		if values, ok := tag.Value.([]uint16); ok && len(values) > 0 {
			return Orientation(values[0]), nil
		}
	}

	return Undefined, nil
}

// Apply rotates img clockwise by degrees. Only multiples of 90 are supported;
// any other value returns img unchanged.
func Apply(img image.Image, degrees int) image.Image {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		// imaging rotates counter-clockwise
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// Load decodes the picture at path and rotates it upright.
// Orientation read failures are logged and treated as Undefined; decode
// failures are returned.
func Load(path string) (image.Image, Orientation, int, error) {
	o, err := Read(path)
	if err != nil {
		slog.Debug("Unable to read orientation, assuming upright", "path", path, "err", err)
		o = Undefined
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, o, 0, fmt.Errorf("failed to decode picture: %w", err)
	}

	rotation := Rotation(o)
	return Apply(img, rotation), o, rotation, nil
}
