// Package logger wires logrus with size-based file rotation. Commands call
// Init once at startup; library packages take a logrus.FieldLogger instead
// of touching the global.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide instance set up by Init. Defaults to the
// standard logger so packages can log before Init runs.
var Logger = logrus.StandardLogger()

// Config controls level, destination and rotation.
type Config struct {
	Level      string `yaml:"level"`      // debug, info, warn, error
	OutputFile string `yaml:"outputFile"` // empty: stderr only
	MaxSize    int    `yaml:"maxSize"`    // MB per file before rotation
	MaxBackups int    `yaml:"maxBackups"` // rotated files to keep
	MaxAge     int    `yaml:"maxAge"`     // days to keep rotated files
	Compress   bool   `yaml:"compress"`
}

// Init configures the global logger. With an OutputFile set, output goes to
// both stderr and the rotated file.
func Init(cfg Config) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "parse log level %q", cfg.Level)
		}
		level = parsed
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if cfg.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return nil, errors.Wrap(err, "create log directory")
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.OutputFile,
			MaxSize:    defaultInt(cfg.MaxSize, 100),
			MaxBackups: defaultInt(cfg.MaxBackups, 5),
			MaxAge:     defaultInt(cfg.MaxAge, 14),
			Compress:   cfg.Compress,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotated))
	} else {
		log.SetOutput(os.Stderr)
	}

	Logger = log
	return log, nil
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
