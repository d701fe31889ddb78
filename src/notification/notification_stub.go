//go:build !windows

package notification

func showPopup(title, message string, warning bool) error { return nil }

func beep() error { return nil }
