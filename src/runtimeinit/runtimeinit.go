package runtimeinit

import (
	"fmt"

	"go.uber.org/zap"

	"screen-annotate/src/clipboard"
	"screen-annotate/src/config"
	"screen-annotate/src/hotkey"
	"screen-annotate/src/logutil"
	"screen-annotate/src/notification"
	"screen-annotate/src/settings"
)

type Options struct {
	LoadOptions config.LoadOptions
	// Verbose mirrors logs to stderr.
	Verbose bool
	// ShowBlockingError pops a dialog when the hotkey is unusable, for the
	// resident where there is no console to report to.
	ShowBlockingError bool
	// SkipClipboard leaves the clipboard uninitialized, for headless tools.
	SkipClipboard bool
}

// Runtime is everything a process needs after startup.
type Runtime struct {
	Config   *config.Config
	Settings settings.Settings
	Logger   *zap.Logger
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logutil.Setup(logutil.Options{
		EnableFileLogging: cfg.EnableFileLogging,
		File:              cfg.LogFile,
		Verbose:           opts.Verbose,
	})

	st, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		logger.Warn("settings unreadable, using defaults", zap.String("file", cfg.SettingsFile), zap.Error(err))
		st = settings.Default()
	}

	if err := hotkey.Validate(cfg.Hotkey); err != nil {
		if opts.ShowBlockingError {
			notification.ShowBlockingError("Invalid hotkey", fmt.Sprintf("HOTKEY=%q cannot be used: %v\n\nPlease fix it in your .env file.", cfg.Hotkey, err))
		}
		return nil, err
	}

	if !opts.SkipClipboard {
		if err := clipboard.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}

	logger.Info("runtime ready",
		zap.String("hotkey", cfg.Hotkey),
		zap.String("save_dir", cfg.SaveDir),
		zap.Int("capture_deadline_sec", cfg.CaptureDeadlineSec),
	)
	return &Runtime{Config: cfg, Settings: st, Logger: logger}, nil
}
