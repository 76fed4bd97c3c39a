// Package logger provides leveled structured logging.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields are structured key/value pairs attached to an entry.
type Fields map[string]interface{}

var defaultLogger = newLogrus()

func newLogrus() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(jsonFormatter())
	return l
}

func callerPrettyfier(f *runtime.Frame) (string, string) {
	return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
		CallerPrettyfier: callerPrettyfier,
	}
}

// Init sets the level and format of the default logger. Unknown levels fall
// back to info, unknown formats to json.
func Init(level string, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	defaultLogger.SetLevel(lvl)

	if strings.ToLower(format) == "text" {
		defaultLogger.SetReportCaller(true)
		defaultLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
		return
	}
	defaultLogger.SetReportCaller(false)
	defaultLogger.SetFormatter(jsonFormatter())
}

// SetOutput directs log output to stdout, stderr or a file. Files are
// rotated by lumberjack when maxAge (days) is positive.
func SetOutput(output string, maxAge int) error {
	switch output {
	case "", "stderr":
		defaultLogger.SetOutput(os.Stderr)
	case "stdout":
		defaultLogger.SetOutput(os.Stdout)
	default:
		if maxAge > 0 {
			defaultLogger.SetOutput(&lumberjack.Logger{
				Filename: output,
				MaxAge:   maxAge,
				MaxSize:  100,
				Compress: true,
			})
			return nil
		}
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file '%s': %w", output, err)
		}
		defaultLogger.SetOutput(file)
	}
	return nil
}

// Writer exposes the logger as an io.Writer at info level, for libraries
// that want one.
func Writer() io.Writer {
	return defaultLogger.WriterLevel(logrus.InfoLevel)
}

// With returns an entry carrying fields, for call sites that log several
// structured values.
func With(fields Fields) *logrus.Entry {
	return defaultLogger.WithFields(logrus.Fields(fields))
}

func Debug(format string, args ...interface{}) {
	defaultLogger.Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatalf(format, args...)
}
