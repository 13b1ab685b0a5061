// Package logger holds the process-wide structured logger. Everything logs through
// charmbracelet/log at warn level by default; Configure applies the CLI settings.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the shared logger.
var Logger *log.Logger

var output io.Writer = os.Stderr

var levels = map[string]log.Level{
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
	"fatal": log.FatalLevel,
}

func init() {
	SetOutput(os.Stderr, log.WarnLevel)
}

// SetOutput points the shared logger at w with level. Component loggers created
// afterwards write to w too.
func SetOutput(w io.Writer, level log.Level) {
	output = w
	Logger = log.NewWithOptions(w, log.Options{Level: level})
}

// Configure applies the log settings. An empty level falls back to OPLA_LOG_LEVEL,
// then warn. A log file is appended to. Test mode pins the level to info so runs
// produce the same output whatever the environment says.
func Configure(logLevel string, logFile string, testMode bool) error {
	if logLevel == "" {
		logLevel = os.Getenv("OPLA_LOG_LEVEL")
	}
	level := ParseLevel(logLevel)
	if testMode {
		level = log.InfoLevel
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		w = file
	}

	SetOutput(w, level)
	return nil
}

// ParseLevel maps a level name to a log level. Unknown names give warn.
func ParseLevel(name string) log.Level {
	if level, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return log.WarnLevel
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// Fatal logs a fatal message with optional key-value pairs and exits.
func Fatal(msg interface{}, keyvals ...interface{}) {
	Logger.Fatal(msg, keyvals...)
}

// ServiceOperation logs a service lifecycle step.
func ServiceOperation(service string, operation string, details ...interface{}) {
	Debug("Service operation", "service", service, "operation", operation, "details", details)
}

// PromptParsed logs the outcome of a prompt scan.
func PromptParsed(raw string, tokens int, locked bool) {
	Debug("Prompt parsed", "input", raw, "tokens", tokens, "locked", locked)
}

// levelBadges are the background colors of the level labels of component loggers.
var levelBadges = []struct {
	level log.Level
	label string
	color string
}{
	{log.DebugLevel, "DEBUG", "240"},
	{log.InfoLevel, "INFO", "33"},
	{log.WarnLevel, "WARN", "214"},
	{log.ErrorLevel, "ERROR", "196"},
	{log.FatalLevel, "FATAL", "88"},
}

// NewStyledLogger creates a component logger (e.g., "Editor") sharing the level and
// output of the shared logger, with badge-style levels and highlighted prompt keys.
func NewStyledLogger(prefix string) *log.Logger {
	styles := log.DefaultStyles()
	for _, badge := range levelBadges {
		styles.Levels[badge.level] = lipgloss.NewStyle().
			SetString(badge.label).
			Padding(0, 1).
			Background(lipgloss.Color(badge.color)).
			Foreground(lipgloss.Color("15"))
	}

	styles.Keys["input"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styles.Keys["command"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styles.Keys["state"] = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styles.Values["state"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	component := log.NewWithOptions(output, log.Options{
		Prefix: prefix + " ",
		Level:  Logger.GetLevel(),
	})
	component.SetStyles(styles)
	return component
}
