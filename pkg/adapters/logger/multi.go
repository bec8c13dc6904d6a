package logger

import "github.com/user/timelapse/pkg/ports"

// MultiLogger fans every message out to several loggers.
type MultiLogger struct {
	loggers []ports.Logger
}

// NewMulti combines loggers. Nil entries are skipped.
func NewMulti(loggers ...ports.Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) Debug(msg string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Debug(msg, args...)
	}
}

func (m *MultiLogger) Info(msg string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Info(msg, args...)
	}
}

func (m *MultiLogger) Warn(msg string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Warn(msg, args...)
	}
}

func (m *MultiLogger) Error(msg string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Error(msg, args...)
	}
}

// WithComponent returns a MultiLogger of component loggers.
func (m *MultiLogger) WithComponent(component string) ports.Logger {
	out := &MultiLogger{loggers: make([]ports.Logger, len(m.loggers))}
	for i, l := range m.loggers {
		out.loggers[i] = l.WithComponent(component)
	}
	return out
}

var _ ports.Logger = (*MultiLogger)(nil)
