// Package zap adapts a *zap.Logger to archcache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/archcache"
)

var _ archcache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New names the logger "archcache" so cache lines are easy to filter.
func New(l *zap.Logger) ZapLogger { return ZapLogger{L: l.Named("archcache")} }

func (z ZapLogger) Debug(msg string, f archcache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f archcache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f archcache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f archcache.Fields) { z.L.Error(msg, zf(f)...) }

// zf orders fields by key; errors go through zap.NamedError.
func zf(f archcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
