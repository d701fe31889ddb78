// Package settings holds the persisted user preferences that gate what the
// host does around an editing session.
package settings

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"

	"screen-annotate/src/export"
)

// Settings are read-only for the editor; only the host consults them.
type Settings struct {
	AutoCopyAfterCapture bool          `mapstructure:"autoCopyAfterCapture"`
	CloseAfterCopy       bool          `mapstructure:"closeAfterCopy"`
	PlayCaptureSound     bool          `mapstructure:"playCaptureSound"`
	DefaultExportFormat  export.Format `mapstructure:"defaultExportFormat"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("autoCopyAfterCapture", true)
	v.SetDefault("closeAfterCopy", false)
	v.SetDefault("playCaptureSound", true)
	v.SetDefault("defaultExportFormat", string(export.PNG))
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		AutoCopyAfterCapture: true,
		CloseAfterCopy:       false,
		PlayCaptureSound:     true,
		DefaultExportFormat:  export.PNG,
	}
}

// Load reads settings from path. The format follows the file extension (yaml,
// json or toml). A missing file or empty path yields Default.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Default(), fmt.Errorf("error reading settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Default(), fmt.Errorf("error decoding settings: %w", err)
	}
	f, err := export.ParseFormat(string(s.DefaultExportFormat))
	if err != nil {
		return Default(), fmt.Errorf("invalid defaultExportFormat: %w", err)
	}
	s.DefaultExportFormat = f
	return s, nil
}
