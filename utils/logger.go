package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// InitLogger initializes the application logger. Log lines go to stdout
// and to a dated file under logs/.
func InitLogger() error {
	logsDir := "logs"
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %v", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	logFile, err := os.OpenFile(
		filepath.Join(logsDir, fmt.Sprintf("app-%s.log", timestamp)),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}

	logger = logrus.New()
	logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if os.Getenv("ENV") == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	return nil
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	if logger != nil {
		logger.Infof(format, v...)
	}
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	if logger != nil {
		logger.Errorf(format, v...)
	}
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	if logger != nil {
		logger.Debugf(format, v...)
	}
}

// LogRequest logs HTTP request details
func LogRequest(method, path, ip string, status int, duration time.Duration) {
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"method":   method,
			"path":     path,
			"ip":       ip,
			"status":   status,
			"duration": duration.String(),
		}).Info("request completed")
	}
}

// LogErrorWithStack logs an error with stack trace
func LogErrorWithStack(err error, stack []byte) {
	if logger != nil {
		logger.Errorf("Error: %v\nStack Trace:\n%s", err, stack)
	}
}
