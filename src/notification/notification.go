// Package notification reports outcomes the user should see outside the
// overlay: export failures, saved file paths, startup errors.
package notification

import (
	"go.uber.org/zap"
)

const maxMessageLen = 200

func truncate(s string) string {
	if len(s) > maxMessageLen {
		return s[:maxMessageLen] + "..."
	}
	return s
}

// Info records a routine outcome. It never interrupts the user.
func Info(message string) {
	zap.L().Named("notification").Info(truncate(message))
}

// Show pops up an informational message without blocking the caller.
func Show(title, message string) {
	zap.L().Named("notification").Info(truncate(message), zap.String("title", title))
	go popup(title, message, false)
}

// Error reports a failed operation without blocking the caller.
func Error(title, message string) {
	message = truncate(message)
	zap.L().Named("notification").Warn(message, zap.String("title", title))
	go popup(title, message, true)
}

// ShowBlockingError reports a fatal condition and waits for the user.
func ShowBlockingError(title, message string) {
	zap.L().Named("notification").Error(message, zap.String("title", title))
	popup(title, message, true)
}

func popup(title, message string, warning bool) {
	if err := showPopup(title, message, warning); err != nil {
		zap.L().Named("notification").Debug("popup failed", zap.Error(err))
	}
}

// CaptureSound plays the system cue for a completed capture.
func CaptureSound() {
	if err := beep(); err != nil {
		zap.L().Named("notification").Debug("capture sound failed", zap.Error(err))
	}
}
