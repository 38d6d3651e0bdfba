// Package logrus adapts a logrus entry to archcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/archcache"
)

var _ archcache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New tags every line with component=archcache.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "archcache")}
}

func (l LogrusLogger) Debug(msg string, f archcache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f archcache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f archcache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f archcache.Fields) { l.with(f).Error(msg) }

// with maps an "err" field onto logrus' own error key.
func (l LogrusLogger) with(f archcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			fields[logrus.ErrorKey] = err
			continue
		}
		fields[k] = v
	}
	return l.E.WithFields(fields)
}
