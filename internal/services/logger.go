// File: internal/services/logger.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Logger is the logging interface shared by every service in the app.
// Key-value pairs alternate key, value.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// AppLogger writes leveled logs to stdout, as JSON in production and as
// plain lines during development.
type AppLogger struct {
	out        *log.Logger
	level      LogLevel
	service    string
	structured bool
}

func NewAppLogger(service string) *AppLogger {
	return &AppLogger{
		out:        log.New(os.Stdout, "", 0),
		level:      LogLevelInfo,
		service:    service,
		structured: true,
	}
}

func (a *AppLogger) SetLevel(level LogLevel)       { a.level = level }
func (a *AppLogger) SetStructured(structured bool) { a.structured = structured }

func (a *AppLogger) Info(msg string, keysAndValues ...interface{}) {
	a.write(LogLevelInfo, msg, keysAndValues...)
}

func (a *AppLogger) Error(msg string, keysAndValues ...interface{}) {
	a.write(LogLevelError, msg, keysAndValues...)
}

func (a *AppLogger) Debug(msg string, keysAndValues ...interface{}) {
	a.write(LogLevelDebug, msg, keysAndValues...)
}

func (a *AppLogger) Warn(msg string, keysAndValues ...interface{}) {
	a.write(LogLevelWarn, msg, keysAndValues...)
}

func (a *AppLogger) write(level LogLevel, msg string, keysAndValues ...interface{}) {
	if level < a.level {
		return
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if a.structured {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level.String(),
			"service":   a.service,
			"message":   msg,
		}
		if len(keysAndValues) > 1 {
			fields := make(map[string]interface{}, len(keysAndValues)/2)
			for i := 0; i+1 < len(keysAndValues); i += 2 {
				if key, ok := keysAndValues[i].(string); ok {
					fields[key] = keysAndValues[i+1]
				}
			}
			if len(fields) > 0 {
				entry["fields"] = fields
			}
		}
		raw, _ := json.Marshal(entry)
		a.out.Println(string(raw))
		return
	}

	var kv strings.Builder
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		kv.WriteString(fmt.Sprintf(" %v=%v", keysAndValues[i], keysAndValues[i+1]))
	}
	a.out.Printf("[%s] %s [%s] %s%s", timestamp, level.String(), a.service, msg, kv.String())
}

// NoOpLogger discards everything. Used in tests.
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// NewLogger builds a logger for the named service from GO_ENV and
// LOG_LEVEL. Tests get the no-op logger, production gets JSON,
// everything else gets readable lines.
func NewLogger(service string) Logger {
	env := os.Getenv("GO_ENV")
	if env == "test" {
		return &NoOpLogger{}
	}

	logger := NewAppLogger(service)
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		logger.SetLevel(LogLevelDebug)
	case "WARN":
		logger.SetLevel(LogLevelWarn)
	case "ERROR":
		logger.SetLevel(LogLevelError)
	}
	logger.SetStructured(env == "production")
	return logger
}
