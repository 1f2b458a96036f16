// Package logger wraps logrus with context-aware, key/value structured
// logging used across the application.
package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/examhub-dev/examhub/config"

	"github.com/sirupsen/logrus"
)

// VersionKey is the log field carrying the application version.
const VersionKey = "version"

type Logger struct {
	*logrus.Logger
	version string
	logFile *os.File
	logPath string
}

var (
	standardLogger *Logger
	once           sync.Once
)

// StdLogger returns the singleton logger instance
func StdLogger() *Logger {
	once.Do(func() {
		standardLogger = &Logger{
			Logger: logrus.New(),
		}
		standardLogger.SetFormatter(&logrus.JSONFormatter{})
	})
	return standardLogger
}

// New initializes the standard logger from configuration and returns a
// cleanup function closing any open log file.
func New(c *config.Logger) (func(), error) {
	return StdLogger().Init(c)
}

// SetVersion sets the version for logging
func (l *Logger) SetVersion(v string) {
	l.version = v
}

// Init initializes the logger with the given configuration
func (l *Logger) Init(c *config.Logger) (func(), error) {
	if c == nil {
		return func() {}, nil
	}

	l.SetLevel(logrus.Level(c.Level))

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{})
	}

	switch c.Output {
	case "stderr":
		l.SetOutput(os.Stderr)
	case "file":
		l.logPath = c.OutputFile
		if l.logPath != "" {
			if err := l.setupLogFile(); err != nil {
				return nil, err
			}
			go l.periodicLogRotation()
		}
	default:
		l.SetOutput(os.Stdout)
	}

	if c.Elasticsearch != nil && len(c.Elasticsearch.Addresses) > 0 {
		hook, err := NewElasticSearchHook(c.Elasticsearch, c.IndexName)
		if err != nil {
			return nil, fmt.Errorf("error initializing Elasticsearch hook: %w", err)
		}
		l.AddHook(hook)
	}

	return func() {
		if l.logFile != nil {
			_ = l.logFile.Close()
		}
	}, nil
}

func (l *Logger) setupLogFile() error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0o755); err != nil {
		return err
	}
	return l.rotateLog()
}

func (l *Logger) rotateLog() error {
	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return err
		}
	}

	logFilePath := fmt.Sprintf("%s.%s.log", strings.TrimSuffix(l.logPath, ".log"), time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}

	l.logFile = f
	l.SetOutput(l.logFile)
	return nil
}

func (l *Logger) periodicLogRotation() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := l.rotateLog(); err != nil {
			l.Logger.Errorf("Error rotating log: %v", err)
		}
	}
}

// entryFromContext creates a new log entry with fields from context
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}

	traceID := getTraceID(ctx)
	if traceID != "" {
		fields[traceKey] = traceID
	}

	if l.version != "" {
		fields[VersionKey] = l.version
	}

	return l.WithFields(fields)
}

// log emits msg with trailing args folded into fields as key/value pairs.
func (l *Logger) log(ctx context.Context, level logrus.Level, msg string, kv ...any) {
	entry := l.entryFromContext(ctx)
	if len(kv) > 0 {
		fields := logrus.Fields{}
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				key = fmt.Sprint(kv[i])
			}
			fields[key] = kv[i+1]
		}
		entry = entry.WithFields(fields)
	}
	entry.Log(level, msg)
}

func (l *Logger) logf(ctx context.Context, level logrus.Level, format string, args ...any) {
	l.entryFromContext(ctx).Logf(level, format, args...)
}

func (l *Logger) Trace(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.TraceLevel, msg, kv...)
}
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.DebugLevel, msg, kv...)
}
func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.InfoLevel, msg, kv...)
}
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.WarnLevel, msg, kv...)
}
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.ErrorLevel, msg, kv...)
}
func (l *Logger) Fatal(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.FatalLevel, msg, kv...)
}

func (l *Logger) Tracef(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.TraceLevel, format, args...)
}
func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.DebugLevel, format, args...)
}
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.InfoLevel, format, args...)
}
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.WarnLevel, format, args...)
}
func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.ErrorLevel, format, args...)
}
