package main

import (
	"time"

	"screen-annotate/src/config"
	"screen-annotate/src/editor"
)

func deadline(cfg *config.Config) time.Duration {
	if cfg.CaptureDeadlineSec <= 0 {
		return config.DefaultCaptureDeadSec * time.Second
	}
	return time.Duration(cfg.CaptureDeadlineSec) * time.Second
}

func editorOptions(cfg *config.Config) editor.Options {
	return editor.Options{
		Color:        cfg.DefaultColor,
		LineWidth:    cfg.DefaultLineWidth,
		HistoryLimit: cfg.HistoryLimit,
	}
}
