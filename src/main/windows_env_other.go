//go:build !windows

package main

import (
	"go.uber.org/zap"

	"screen-annotate/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	b, err := screenshot.VirtualBounds()
	if err != nil {
		zap.L().Named("monitor").Warn("display bounds unavailable", zap.Error(err))
		return
	}
	zap.L().Named("monitor").Info("display configuration", zap.Stringer("virtual", b))
}
