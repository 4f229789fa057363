package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level        string
	Format       string
	LogstashAddr string
	Output       io.Writer
}

// New builds the process logger. When a Logstash address is configured the
// returned closer tears down its connection; otherwise it is a no-op.
func New(opts Options) (*logrus.Logger, io.Closer) {
	logger := logrus.New()
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stdout)
	}

	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.TrimSpace(opts.LogstashAddr) == "" {
		return logger, nopCloser{}
	}
	hook, err := NewLogstashHook(opts.LogstashAddr)
	if err != nil {
		logger.WithError(err).Warn("logstash forwarding disabled")
		return logger, nopCloser{}
	}
	logger.AddHook(hook)
	return logger, hook
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
