// Package export writes composited images to disk.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Format is an output image encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
)

// JPEGQuality is the encoder quality for JPEG output.
const JPEGQuality = 92

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts png, jpg and jpeg in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FileName returns the timestamped name for a capture taken at t.
func FileName(t time.Time, f Format) string {
	stamp := strings.ReplaceAll(t.UTC().Format(time.RFC3339), ":", "-")
	return "Screenshot_" + stamp + "." + string(f)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Save encodes img into dir under a timestamped name and returns the path.
// An existing file is never overwritten; a numeric suffix is added instead.
func Save(img image.Image, dir string, f Format, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".screenshot-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, img, f); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	name := FileName(now, f)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	path := filepath.Join(dir, name)
	for i := 2; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			break
		}
		path = filepath.Join(dir, fmt.Sprintf("%s (%d).%s", base, i, f))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move image into place: %w", err)
	}
	return path, nil
}

// SaveImage is Save reporting only success.
func SaveImage(img image.Image, dir string, f Format) bool {
	path, err := Save(img, dir, f, time.Now())
	if err != nil {
		zap.L().Warn("save failed", zap.String("dir", dir), zap.Error(err))
		return false
	}
	zap.L().Info("image saved", zap.String("path", path))
	return true
}

// DefaultDir is the desktop of the current user, or the home directory when
// there is no desktop folder.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	desktop := filepath.Join(home, "Desktop")
	if st, err := os.Stat(desktop); err == nil && st.IsDir() {
		return desktop
	}
	return home
}
