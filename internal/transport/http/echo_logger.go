package http

import (
	"io"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
)

// echoLogger routes echo's c.Logger() calls into logrus so handler errors land
// in the same structured stream as the access log.
type echoLogger struct {
	log    logrus.FieldLogger
	prefix string
	level  log.Lvl
}

func newEchoLogger(logger logrus.FieldLogger) *echoLogger {
	return &echoLogger{log: logger, level: log.INFO}
}

func (l *echoLogger) entry() logrus.FieldLogger {
	if l.prefix == "" {
		return l.log
	}
	return l.log.WithField("component", l.prefix)
}

func (l *echoLogger) base() *logrus.Logger {
	switch v := l.log.(type) {
	case *logrus.Logger:
		return v
	case *logrus.Entry:
		return v.Logger
	}
	return nil
}

func (l *echoLogger) Output() io.Writer {
	if base := l.base(); base != nil {
		return base.Out
	}
	return io.Discard
}

func (l *echoLogger) SetOutput(w io.Writer) {
	if base := l.base(); base != nil {
		base.SetOutput(w)
	}
}

func (l *echoLogger) Prefix() string { return l.prefix }
func (l *echoLogger) SetPrefix(p string) { l.prefix = p }
func (l *echoLogger) Level() log.Lvl { return l.level }
func (l *echoLogger) SetLevel(v log.Lvl) { l.level = v }

// SetHeader is a no-op; logrus formatters own the layout.
func (l *echoLogger) SetHeader(string) {}

func (l *echoLogger) Print(i ...interface{}) { l.entry().Print(i...) }
func (l *echoLogger) Printf(format string, args ...interface{}) { l.entry().Printf(format, args...) }
func (l *echoLogger) Printj(j log.JSON) { l.entry().WithFields(logrus.Fields(j)).Print() }

func (l *echoLogger) Debug(i ...interface{}) { l.entry().Debug(i...) }
func (l *echoLogger) Debugf(format string, args ...interface{}) { l.entry().Debugf(format, args...) }
func (l *echoLogger) Debugj(j log.JSON) { l.entry().WithFields(logrus.Fields(j)).Debug() }

func (l *echoLogger) Info(i ...interface{}) { l.entry().Info(i...) }
func (l *echoLogger) Infof(format string, args ...interface{}) { l.entry().Infof(format, args...) }
func (l *echoLogger) Infoj(j log.JSON) { l.entry().WithFields(logrus.Fields(j)).Info() }

func (l *echoLogger) Warn(i ...interface{}) { l.entry().Warn(i...) }
func (l *echoLogger) Warnf(format string, args ...interface{}) { l.entry().Warnf(format, args...) }
func (l *echoLogger) Warnj(j log.JSON) { l.entry().WithFields(logrus.Fields(j)).Warn() }

func (l *echoLogger) Error(i ...interface{}) { l.entry().Error(i...) }
func (l *echoLogger) Errorf(format string, args ...interface{}) { l.entry().Errorf(format, args...) }
func (l *echoLogger) Errorj(j log.JSON) { l.entry().WithFields(logrus.Fields(j)).Error() }

func (l *echoLogger) Fatal(i ...interface{}) { l.entry().Fatal(i...) }
func (l *echoLogger) Fatalf(format string, args ...interface{}) { l.entry().Fatalf(format, args...) }
func (l *echoLogger) Fatalj(j log.JSON) { l.entry().WithFields(logrus.Fields(j)).Fatal() }

func (l *echoLogger) Panic(i ...interface{}) { l.entry().Panic(i...) }
func (l *echoLogger) Panicf(format string, args ...interface{}) { l.entry().Panicf(format, args...) }
func (l *echoLogger) Panicj(j log.JSON) { l.entry().WithFields(logrus.Fields(j)).Panic() }

var _ echo.Logger = (*echoLogger)(nil)
