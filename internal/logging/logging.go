package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a configured logger. LOG_LEVEL selects the level (info by
// default); LOG_FORMAT=json switches to the JSON formatter for deployments
// that ship logs.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// NewWithService tags every entry with a service name.
func NewWithService(service string) *logrus.Entry {
	return New().WithField("service", service)
}
