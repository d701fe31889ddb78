package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"screen-annotate/src/annotation"
	"screen-annotate/src/export"
)

const (
	EnvPathEnvVar         = "SCREEN_ANNOTATE_ENV"
	DefaultHotkey         = "Ctrl+Shift+8"
	DefaultSettingsFile   = "settings.yaml"
	DefaultCaptureDeadSec = 10
)

// ErrInvalidFormat marks a configuration value that could not be parsed.
var ErrInvalidFormat = errors.New("invalid config value")

type LoadOptions struct {
	EnvPathOverride string
	HotkeyOverride  string
	SaveDirOverride string
}

type Config struct {
	EnvPath            string
	EnableFileLogging  bool
	LogFile            string
	Hotkey             string
	SettingsFile       string
	SaveDir            string
	CaptureDeadlineSec int
	HistoryLimit       int
	DefaultColor       color.NRGBA
	DefaultLineWidth   float64
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order: overrides, process environment, then the .env
	// next to the executable or the file named by SCREEN_ANNOTATE_ENV.
	envPath := strings.TrimSpace(opts.EnvPathOverride)
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
		}
	}

	cfg := &Config{
		EnvPath:            envPath,
		EnableFileLogging:  strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		LogFile:            os.Getenv("LOG_FILE"),
		Hotkey:             firstNonEmpty(opts.HotkeyOverride, os.Getenv("HOTKEY"), DefaultHotkey),
		SettingsFile:       firstNonEmpty(os.Getenv("SETTINGS_FILE"), besideExecutable(DefaultSettingsFile)),
		SaveDir:            firstNonEmpty(opts.SaveDirOverride, os.Getenv("SAVE_DIR")),
		CaptureDeadlineSec: positiveInt("CAPTURE_DEADLINE_SEC", DefaultCaptureDeadSec),
		HistoryLimit:       positiveInt("HISTORY_LIMIT", 0),
		DefaultColor:       annotation.DefaultColor,
		DefaultLineWidth:   annotation.DefaultLineWidth,
	}
	if cfg.SaveDir == "" {
		cfg.SaveDir = export.DefaultDir()
	}

	if v := strings.TrimSpace(os.Getenv("DEFAULT_COLOR")); v != "" {
		c, err := annotation.ParseColor(v)
		if err != nil {
			return nil, fmt.Errorf("%w: DEFAULT_COLOR=%q: %v", ErrInvalidFormat, v, err)
		}
		cfg.DefaultColor = c
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_LINE_WIDTH")); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil || w < annotation.MinLineWidth || w > annotation.MaxLineWidth {
			return nil, fmt.Errorf("%w: DEFAULT_LINE_WIDTH=%q must be between %g and %g",
				ErrInvalidFormat, v, annotation.MinLineWidth, annotation.MaxLineWidth)
		}
		cfg.DefaultLineWidth = w
	}

	return cfg, nil
}

func resolveEnvPath() string {
	if p := besideExecutable(".env"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func besideExecutable(name string) string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(execPath), name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// positiveInt reads key as an integer, falling back to def when unset or not
// positive.
func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
