// Package autosync keeps a device synchronized in the background. A
// watcher probes the server on an interval, fires a full round when
// connectivity comes back after an outage, and spaces periodic rounds
// while the connection holds. Round overlap is handled by the engine
// itself, which rejects a second concurrent round.
package autosync

import (
	"context"
	"log/slog"
	"time"

	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/sync"
)

// Syncer runs one synchronization round.
type Syncer interface {
	FullSync(ctx context.Context) sync.Result
}

// Prober reports server reachability.
type Prober interface {
	CheckReachable(ctx context.Context) bool
}

// Reauther refreshes the session token before a background round.
type Reauther interface {
	SilentReauth(ctx context.Context) (*models.User, error)
}

// Options tune the watcher loop. Zero values fall back to defaults.
type Options struct {
	// ProbeInterval is how often reachability is checked.
	ProbeInterval time.Duration
	// SettleDelay is how long to wait after connectivity returns before
	// syncing, so a flapping link does not trigger half-finished rounds.
	SettleDelay time.Duration
	// SyncInterval spaces periodic rounds while the connection holds.
	SyncInterval time.Duration
}

const (
	defaultProbeInterval = 10 * time.Second
	defaultSettleDelay   = 2 * time.Second
	defaultSyncInterval  = 5 * time.Minute
)

func (o *Options) fill() {
	if o.ProbeInterval <= 0 {
		o.ProbeInterval = defaultProbeInterval
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = defaultSettleDelay
	}
	if o.SyncInterval <= 0 {
		o.SyncInterval = defaultSyncInterval
	}
}

// Watcher drives background synchronization. Not safe for concurrent use;
// Run owns it for the lifetime of the loop.
type Watcher struct {
	syncer Syncer
	probe  Prober
	reauth Reauther
	opts   Options

	online    bool
	lastRound time.Time
}

// New builds a watcher. reauth may be nil when no session refresh is
// wanted before background rounds.
func New(syncer Syncer, probe Prober, reauth Reauther, opts Options) *Watcher {
	opts.fill()
	return &Watcher{syncer: syncer, probe: probe, reauth: reauth, opts: opts}
}

// Run loops until the context is cancelled. The watcher starts assuming
// offline, so a device that boots with connectivity syncs on the first
// probe.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.ProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	reachable := w.probe.CheckReachable(ctx)
	switch {
	case reachable && !w.online:
		w.online = true
		slog.Info("connection restored")
		if w.opts.SettleDelay > 0 {
			select {
			case <-time.After(w.opts.SettleDelay):
			case <-ctx.Done():
				return
			}
		}
		w.round(ctx)
	case reachable && time.Since(w.lastRound) >= w.opts.SyncInterval:
		w.round(ctx)
	case !reachable && w.online:
		w.online = false
		slog.Info("connection lost, queuing local changes")
	}
}

func (w *Watcher) round(ctx context.Context) {
	w.lastRound = time.Now()
	if w.reauth != nil {
		if _, err := w.reauth.SilentReauth(ctx); err != nil {
			slog.Warn("background reauth failed, skipping round", "err", err)
			return
		}
	}
	res := w.syncer.FullSync(ctx)
	if res.Success {
		slog.Info("background sync finished", "message", res.Message)
	} else {
		slog.Warn("background sync finished with errors", "errors", res.Errors)
	}
}
