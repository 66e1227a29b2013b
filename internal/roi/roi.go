// Package roi handles the region-of-interest side channel: the saved
// crop rectangle a reviewer drew on the scanned deed, and the cropped
// table image the OCR engine consumes.
package roi

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/disintegration/imaging"
)

// Rect is a crop rectangle in original-image pixel coordinates, stored
// alongside the scan as <base>_rect.json.
type Rect struct {
	SourceImage      string  `json:"source_image"`
	ScaleAtSelection float64 `json:"scale_factor_at_selection"`
	XMin             int     `json:"original_x_min"`
	YMin             int     `json:"original_y_min"`
	XMax             int     `json:"original_x_max"`
	YMax             int     `json:"original_y_max"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
}

// Validate checks the rectangle is non-degenerate and internally
// consistent.
func (r *Rect) Validate() error {
	if r.XMax <= r.XMin || r.YMax <= r.YMin {
		return fmt.Errorf("degenerate crop rectangle [%d,%d,%d,%d]", r.XMin, r.YMin, r.XMax, r.YMax)
	}
	if r.Width != r.XMax-r.XMin || r.Height != r.YMax-r.YMin {
		return fmt.Errorf("crop rectangle size fields do not match its bounds")
	}
	return nil
}

// RectPath returns the side-channel path for an image: the image path
// with its extension replaced by _rect.json.
func RectPath(imagePath string) string {
	return trimExt(imagePath) + "_rect.json"
}

// TablePath returns the cropped table image path for a scan.
func TablePath(imagePath string) string {
	return trimExt(imagePath) + "_table.jpg"
}

func trimExt(path string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndex(path, "/") {
		return path[:i]
	}
	return path
}

// Load reads the saved rectangle for an image.
func Load(imagePath string) (*Rect, error) {
	data, err := os.ReadFile(RectPath(imagePath))
	if err != nil {
		return nil, fmt.Errorf("reading crop rectangle: %w", err)
	}
	var r Rect
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing crop rectangle: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save overwrites the rectangle file for an image.
func Save(imagePath string, r *Rect) error {
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(RectPath(imagePath), data, 0o644); err != nil {
		return fmt.Errorf("writing crop rectangle: %w", err)
	}
	return nil
}

// Crop applies the saved rectangle to the scan and writes the cropped
// table image the OCR engine reads. Returns the written path.
func Crop(imagePath string) (string, error) {
	r, err := Load(imagePath)
	if err != nil {
		return "", err
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", imagePath, err)
	}

	cropped := imaging.Crop(img, image.Rect(r.XMin, r.YMin, r.XMax, r.YMax))
	out := TablePath(imagePath)
	if err := imaging.Save(cropped, out, imaging.JPEGQuality(95)); err != nil {
		return "", fmt.Errorf("saving cropped table image: %w", err)
	}

	slog.Info("cropped table region", "image", imagePath, "out", out,
		"width", r.Width, "height", r.Height)
	return out, nil
}
