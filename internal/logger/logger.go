package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init with logrus
// defaults.
var Log = logrus.New()

// Init configures Log from the environment. LOG_LEVEL takes any logrus level
// name (default info); LOG_FORMAT=json switches to JSON lines. Logs go to
// stderr so report output on stdout stays clean.
func Init() {
	Log = New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stderr)
}

// New builds a logger with the given level and format names.
func New(level, format string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	l.SetOutput(out)
	return l
}
