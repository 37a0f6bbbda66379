package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is shown in front of console log lines.
const Prefix = "taskgrid"

// Options configures a Logger.
type Options struct {
	Level      string
	Format     string
	Timestamps bool
	// Console receives leveled console output. Nil discards it.
	Console io.Writer
	// Dir is the base directory for run logs. Empty disables the run file.
	Dir     string
	WorkDir string
}

// ParseLogLevel parses a string log level to a charmbracelet/log Level.
func ParseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Logger sends every record to the console logger and, when a run log is
// open, to a JSON logger writing the run file at debug level.
type Logger struct {
	console *log.Logger
	file    *log.Logger
	run     *RunLogger
}

// New builds a Logger from opts. A failure to open the run file is returned
// together with a usable console-only Logger.
func New(opts Options) (*Logger, error) {
	out := opts.Console
	if out == nil {
		out = io.Discard
	}
	l := &Logger{
		console: log.NewWithOptions(out, log.Options{
			Level:           ParseLogLevel(opts.Level),
			Formatter:       ParseLogFormatter(opts.Format),
			ReportTimestamp: opts.Timestamps,
			Prefix:          Prefix,
		}),
	}
	if opts.Dir == "" {
		return l, nil
	}

	run, err := NewRunLogger(opts.Dir, opts.WorkDir)
	if err != nil {
		return l, err
	}
	l.run = run
	l.file = log.NewWithOptions(run.Writer(), log.Options{
		Level:           log.DebugLevel,
		Formatter:       log.JSONFormatter,
		ReportTimestamp: true,
		Prefix:          Prefix,
	})
	return l, nil
}

// Discard returns a Logger that writes nowhere.
func Discard() *Logger {
	l, _ := New(Options{})
	return l
}

// Console returns the console logger.
func (l *Logger) Console() *log.Logger {
	return l.console
}

// Run returns the run log, or nil when file logging is disabled.
func (l *Logger) Run() *RunLogger {
	return l.run
}

// SetConsoleOutput redirects console output. The TUI uses it to keep log
// lines off the screen while it owns the terminal.
func (l *Logger) SetConsoleOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	l.console.SetOutput(w)
}

func (l *Logger) Debug(msg interface{}, keyvals ...interface{}) {
	l.console.Debug(msg, keyvals...)
	if l.file != nil {
		l.file.Debug(msg, keyvals...)
	}
}

func (l *Logger) Info(msg interface{}, keyvals ...interface{}) {
	l.console.Info(msg, keyvals...)
	if l.file != nil {
		l.file.Info(msg, keyvals...)
	}
}

func (l *Logger) Warn(msg interface{}, keyvals ...interface{}) {
	l.console.Warn(msg, keyvals...)
	if l.file != nil {
		l.file.Warn(msg, keyvals...)
	}
}

func (l *Logger) Error(msg interface{}, keyvals ...interface{}) {
	l.console.Error(msg, keyvals...)
	if l.file != nil {
		l.file.Error(msg, keyvals...)
	}
}

// Close closes the run file, if any.
func (l *Logger) Close() error {
	return l.run.Close()
}
