package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the service logger: JSON to stdout, level from LOG_LEVEL,
// optionally mirrored to logs/contentgate.log when LOG_FILE=1.
func NewLogger() *logrus.Logger {
	l := logrus.New()

	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn":
		l.SetLevel(logrus.WarnLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	l.SetOutput(os.Stdout)

	if os.Getenv("LOG_FILE") == "1" {
		if err := os.MkdirAll("logs", 0750); err != nil {
			log.Fatalf("Failed to create logs directory: %v", err)
		}
		path := filepath.Clean("logs/contentgate.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		l.SetOutput(io.MultiWriter(os.Stdout, file))
	}

	return l
}
