package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Fields map[string]interface{}

type LogConfig struct {
	Level  string
	Format string
	Output string

	// File rotation settings, used when Output points at a file path.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Logger struct {
	entry *logrus.Entry
}

func New(config LogConfig) (*Logger, error) {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch strings.ToLower(config.Format) {
	case "text":
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	}

	output, err := resolveOutput(config)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log output: %w", err)
	}
	base.SetOutput(output)

	return &Logger{entry: logrus.NewEntry(base)}, nil
}

func resolveOutput(config LogConfig) (io.Writer, error) {
	switch strings.ToLower(config.Output) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		maxSize := config.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		return &lumberjack.Logger{
			Filename:   config.Output,
			MaxSize:    maxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAgeDays,
			Compress:   true,
		}, nil
	}
}

func (log *Logger) WithFields(fields Fields) *Logger {
	return &Logger{entry: log.entry.WithFields(logrus.Fields(fields))}
}

func (log *Logger) WithError(err error) *Logger {
	return &Logger{entry: log.entry.WithError(err)}
}

func (log *Logger) Debug(message string, keysAndValues ...interface{}) {
	log.entry.WithFields(toFields(keysAndValues)).Debug(message)
}

func (log *Logger) Info(message string, keysAndValues ...interface{}) {
	log.entry.WithFields(toFields(keysAndValues)).Info(message)
}

func (log *Logger) Warn(message string, keysAndValues ...interface{}) {
	log.entry.WithFields(toFields(keysAndValues)).Warn(message)
}

func (log *Logger) Error(message string, keysAndValues ...interface{}) {
	log.entry.WithFields(toFields(keysAndValues)).Error(message)
}

// LogService records one external or internal service operation with a
// uniform field shape so provider calls stay greppable across the pipeline.
func (log *Logger) LogService(service string, operation string, duration time.Duration, fields map[string]interface{}, err error) {
	entry := log.entry.WithFields(logrus.Fields{
		"service":     service,
		"operation":   operation,
		"duration_ms": duration.Milliseconds(),
	})

	for key, value := range fields {
		entry = entry.WithField(key, value)
	}

	if err != nil {
		entry.WithError(err).Error("Service Operation Failed")
		return
	}

	entry.Info("Service Operation Completed")
}

// LogRequest records one handled HTTP request.
func (log *Logger) LogRequest(requestID string, method string, path string, status int, duration time.Duration) {
	log.entry.WithFields(logrus.Fields{
		"request_id":  requestID,
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}).Info("Request Completed")
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields[strings.TrimSpace(key)] = keysAndValues[i+1]
	}
	return fields
}
