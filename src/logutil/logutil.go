package logutil

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLogFile = "screen_annotate_debug.log"
	maxSizeMB      = 10
	maxArchives    = 3
)

type Options struct {
	// EnableFileLogging writes JSON logs to File with size-based rotation
	// (10MB, 3 archives).
	EnableFileLogging bool
	File              string
	// Verbose adds a console core on stderr at debug level.
	Verbose bool
}

// Setup builds the process logger and installs it as the zap global. With no
// sink enabled logs are discarded, which keeps stdout clean for the resident.
func Setup(opts Options) *zap.Logger {
	var cores []zapcore.Core
	if opts.EnableFileLogging {
		file := opts.File
		if file == "" {
			file = DefaultLogFile
		}
		enc := zap.NewProductionEncoderConfig()
		enc.TimeKey = "timestamp"
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(enc),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   file,
				MaxSize:    maxSizeMB,
				MaxBackups: maxArchives,
			}),
			zap.DebugLevel,
		))
	}
	if opts.Verbose {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			zap.DebugLevel,
		))
	}

	l := zap.NewNop()
	if len(cores) > 0 {
		l = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	}
	zap.ReplaceGlobals(l)
	return l
}
