// Package clipboard puts exported images on the system clipboard.
package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"go.uber.org/zap"
	"golang.design/x/clipboard"
)

var (
	writeMu  sync.Mutex
	initOnce sync.Once
	initErr  error
)

// Init prepares the platform clipboard. It is safe to call more than once.
func Init() error {
	initOnce.Do(func() { initErr = clipboard.Init() })
	return initErr
}

// WriteImage places img on the clipboard as PNG. Writes are serialized.
func WriteImage(img image.Image) error {
	if err := Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}

// CopyImage is WriteImage reporting only success.
func CopyImage(img image.Image) bool {
	if err := WriteImage(img); err != nil {
		zap.L().Warn("copy to clipboard failed", zap.Error(err))
		return false
	}
	return true
}
