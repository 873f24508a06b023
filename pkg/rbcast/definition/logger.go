// Package definition holds the narrow capability interfaces the engine is
// constructed against: the Application callback boundary and the Logger
// used for diagnostics.
package definition

import "github.com/sirupsen/logrus"

// Logger is the narrow logging interface the engine and its collaborators
// are constructed against. It matches the shape of the teacher's own
// definition.Logger, but is backed by logrus instead of the bare standard
// library logger so structured fields (message id, node id, phase) travel
// with each line.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// DefaultLogger wraps a *logrus.Logger.
type DefaultLogger struct {
	*logrus.Logger
}

// NewDefaultLogger returns the logger used when none is supplied at
// construction.
func NewDefaultLogger() *DefaultLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &DefaultLogger{Logger: l}
}

func (l *DefaultLogger) Infof(format string, args ...interface{})  { l.Logger.Infof(format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...interface{})  { l.Logger.Warnf(format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...interface{}) { l.Logger.Errorf(format, args...) }
func (l *DefaultLogger) Debugf(format string, args ...interface{}) { l.Logger.Debugf(format, args...) }
func (l *DefaultLogger) Fatalf(format string, args ...interface{}) { l.Logger.Fatalf(format, args...) }

// WithFields returns a logrus.Entry pre-populated with the identifying
// fields of a consensus instance, for call sites that want structured
// context attached (e.g. message_id, node_id, phase).
func (l *DefaultLogger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithFields(fields)
}
