package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logg = New(os.Getenv("LOG_LEVEL"))

// Get returns the process-wide logger.
func Get() *logrus.Logger {
	return logg
}

// SetLevel changes the level of the process-wide logger. Unknown levels fall back to info.
func SetLevel(level string) {
	logg.SetLevel(parseLevel(level))
}

// New builds a JSON logger writing to stdout.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stdout)
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// LogError writes a structured error entry tagged with where it happened.
func LogError(l *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	l.WithFields(fields).Error(err.Error())
}
