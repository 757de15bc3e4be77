package console

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger writes human readable key/value lines through charmbracelet/log.
type Logger struct {
	logger *log.Logger
}

type Params struct {
	Debug bool
	// Prefix is shown before every message, e.g. the binary name.
	Prefix string
	// Out defaults to stderr.
	Out io.Writer
}

func New(p Params) *Logger {
	level := log.InfoLevel
	if p.Debug {
		level = log.DebugLevel
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	return &Logger{logger: log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          p.Prefix,
	})}
}

func (c *Logger) Debug(msg string, keyvals ...any) { c.logger.Debug(msg, keyvals...) }

func (c *Logger) Info(msg string, keyvals ...any) { c.logger.Info(msg, keyvals...) }

func (c *Logger) Warn(msg string, keyvals ...any) { c.logger.Warn(msg, keyvals...) }

func (c *Logger) Error(msg string, keyvals ...any) { c.logger.Error(msg, keyvals...) }

func (c *Logger) Fatal(msg string, keyvals ...any) { c.logger.Fatal(msg, keyvals...) }
