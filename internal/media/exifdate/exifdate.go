// Package exifdate reads the capture time embedded in a photo.
package exifdate

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// TakenAt returns the EXIF DateTimeOriginal of data, or nil when the photo
// carries no usable timestamp.
func TakenAt(data []byte) *time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	ts, err := x.DateTime()
	if err != nil || ts.IsZero() || ts.Year() < 1900 {
		return nil
	}
	ts = ts.UTC()
	return &ts
}
