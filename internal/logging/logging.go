// Package logging wraps logrus the way the teacher's pkg/log does: build one
// *logrus.Entry carrying static fields at startup and thread it through
// constructors, rather than reaching for a package-level global.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures the base logger.
type Options struct {
	Debug     bool
	Namespace string
	Hostname  string
	LogFile   string // only consulted when Debug is true
}

// New returns a base *logrus.Entry with namespace/hostname/debug fields set.
func New(opts Options) *logrus.Entry {
	var base *logrus.Logger
	if opts.Debug {
		base = development(opts.LogFile)
	} else {
		base = production()
	}
	base.Formatter = &logrus.JSONFormatter{}

	return base.WithFields(logrus.Fields{
		"namespace": opts.Namespace,
		"hostname":  opts.Hostname,
		"debug":     opts.Debug,
	})
}

func development(logFile string) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(level())
	if logFile == "" {
		log.Out = os.Stderr
		return log
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.Out = os.Stderr
		log.Warnf("unable to log to %s, falling back to stderr: %v", logFile, err)
		return log
	}
	log.Out = file
	return log
}

func production() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func level() logrus.Level {
	lvl, err := logrus.ParseLevel(os.Getenv("FLOCKER_LOG_LEVEL"))
	if err != nil {
		return logrus.DebugLevel
	}
	return lvl
}
