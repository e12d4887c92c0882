// Package ovnlog is a thin structured-logging shim over logrus, giving
// lflowcache, conjids, and incengine a consistent per-component logger
// plus rate-limited warnings for the input-validation path (spec §7:
// "row is skipped and rate-limited warning logged").
package ovnlog

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// For modeled after Cilium's package-level
// `log = logging.DefaultLogger.WithField(...)` convention: each owning
// package calls ovnlog.For("conjids") once and keeps the *logrus.Entry.
func For(component string) *logrus.Entry {
	return logrus.StandardLogger().WithField("component", component)
}

// Limiter wraps a token-bucket rate limiter guarding a single warning
// site, so a flood of malformed rows logs at most a few lines per
// second instead of one line per row.
type Limiter struct {
	mu  sync.Mutex
	rl  *rate.Limiter
	log *logrus.Entry
}

// NewLimiter returns a rate limiter permitting burst immediate log lines
// and then one every 1/eventsPerSecond thereafter.
func NewLimiter(log *logrus.Entry, eventsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		rl:  rate.NewLimiter(rate.Limit(eventsPerSecond), burst),
		log: log,
	}
}

// Warn logs msg at warning level if the limiter currently has budget,
// and silently drops it otherwise; dropped messages are not counted.
func (l *Limiter) Warn(msg string, fields logrus.Fields) {
	l.mu.Lock()
	allow := l.rl.Allow()
	l.mu.Unlock()
	if !allow {
		return
	}
	l.log.WithFields(fields).Warn(msg)
}

// Timed logs the wall-clock duration of fn at debug level under name,
// mirroring fuse.LatencyMap's per-operation timing but without
// retaining history — callers that need history use ovnstats.Counters
// alongside this.
func Timed(log *logrus.Entry, name string, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		log.WithField("op", name).WithField("dt", d).Debug("timed operation")
	}
	return d
}
