package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string `mapstructure:"log-level" yaml:"log-level"`
	Format     string `mapstructure:"log-format" yaml:"log-format"`
	File       string `mapstructure:"log-file" yaml:"log-file"`
	WithCaller bool   `mapstructure:"with-caller" yaml:"with-caller"`
	// Quiet drops console output, leaving only File. The chat UI owns the
	// terminal and sets this.
	Quiet bool `mapstructure:"-" yaml:"-"`

	// Output replaces stderr as console output.
	Output io.Writer `mapstructure:"-" yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
	}
}

// ParseLevel accepts zerolog level names, case-insensitively. An empty level
// is info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}
	return l, nil
}

// New builds a logger from cfg without touching the global logger.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var writers []io.Writer
	if !cfg.Quiet {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		// default is text
		switch cfg.Format {
		case "json":
			writers = append(writers, out)
		case "", "text":
			writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
		default:
			return zerolog.Nop(), errors.Errorf("invalid log format %q", cfg.Format)
		}
	}

	if cfg.File != "" {
		writers = append(writers, zerolog.ConsoleWriter{
			NoColor: true,
			Out: &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			},
		})
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = io.Discard
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.WithCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}

// InitLogger replaces the global logger and level.
func InitLogger(cfg Config) error {
	logger, err := New(cfg)
	if err != nil {
		return err
	}
	level, _ := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	log.Logger = logger
	return nil
}

// NewWithComponent derives a logger from the global one with a component field.
func NewWithComponent(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
