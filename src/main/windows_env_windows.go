//go:build windows

package main

import (
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

const processPerMonitorDPIAware = 2

// System metric indices for GetSystemMetrics.
const (
	smCXScreen        = 0
	smCYScreen        = 1
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
	smCMonitors       = 80
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	shcore = windows.NewLazySystemDLL("Shcore.dll")
)

// enableDPIAwareness opts into per-monitor DPI so overlay pixels match
// screenshot pixels on scaled displays.
func enableDPIAwareness() {
	log := zap.L().Named("dpi")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Info("per-monitor DPI awareness set")
		} else {
			log.Warn("SetProcessDpiAwareness failed", zap.Uintptr("hresult", ret))
		}
		return
	}

	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err != nil {
		log.Warn("no DPI awareness API available")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret != 0 {
		log.Info("system DPI awareness set (fallback)")
	} else {
		log.Warn("SetProcessDPIAware failed")
	}
}

func logMonitorConfiguration() {
	getSystemMetrics := user32.NewProc("GetSystemMetrics")
	metric := func(i int) int {
		ret, _, _ := getSystemMetrics.Call(uintptr(i))
		return int(int32(ret))
	}

	zap.L().Named("monitor").Info("display configuration",
		zap.Int("monitors", metric(smCMonitors)),
		zap.Int("virtual_x", metric(smXVirtualScreen)),
		zap.Int("virtual_y", metric(smYVirtualScreen)),
		zap.Int("virtual_w", metric(smCXVirtualScreen)),
		zap.Int("virtual_h", metric(smCYVirtualScreen)),
		zap.Int("primary_w", metric(smCXScreen)),
		zap.Int("primary_h", metric(smCYScreen)),
	)
}
