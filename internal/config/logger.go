package config

import (
	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. LOG_FORMAT=json switches to JSON lines;
// an unknown LOG_LEVEL falls back to info.
func (l LogConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
