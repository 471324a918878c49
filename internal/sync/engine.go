// Package sync implements the offline-first synchronization engine:
// a two-pass push of locally pending records, a merge-preserving pull,
// and an observable status snapshot for UI surfaces.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/easygest/bp/internal/db"
)

// Engine drives full synchronization rounds against a Gateway. At most one
// round runs at a time; concurrent callers are rejected, not queued.
type Engine struct {
	store *db.DB
	gw    Gateway

	inFlight atomic.Bool
	now      func() time.Time

	mu        gosync.Mutex
	listeners map[int]Listener
	nextSub   int
}

// New returns an engine bound to the local store and the given gateway.
func New(store *db.DB, gw Gateway) *Engine {
	return &Engine{
		store:     store,
		gw:        gw,
		now:       func() time.Time { return time.Now().UTC() },
		listeners: make(map[int]Listener),
	}
}

// FullSync runs one complete round: push local changes, pull server state,
// advance the checkpoint. If a round is already running the call returns
// immediately with an error result and touches nothing.
func (e *Engine) FullSync(ctx context.Context) Result {
	if !e.inFlight.CompareAndSwap(false, true) {
		return Result{
			Errors:  []string{ErrSyncInProgress.Error()},
			Message: ErrSyncInProgress.Error(),
		}
	}
	defer func() {
		e.inFlight.Store(false)
		e.notify(ctx)
	}()
	e.notify(ctx)

	if !e.gw.CheckReachable(ctx) {
		slog.Info("server unreachable, skipping sync")
		return Result{
			Errors:  []string{ErrOffline.Error()},
			Message: "offline — sync impossible",
		}
	}

	var res Result

	push := e.pushLocal(ctx)
	res.SyncedCount += push.synced
	res.ConflictsCount += push.conflicts
	res.Errors = append(res.Errors, push.errors...)
	e.notify(ctx)

	pull := e.pullRemote(ctx)
	res.Errors = append(res.Errors, pull.errors...)

	// The checkpoint only moves after a successful pull; a failed pull must
	// be retried from the same point or records would be skipped forever.
	if pull.ok {
		if err := e.store.SetLastSync(e.now()); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("save checkpoint: %v", err))
		}
	}

	res.Success = len(res.Errors) == 0
	switch {
	case res.Success && res.SyncedCount == 0 && res.ConflictsCount == 0:
		res.Message = "nothing to synchronize"
	case res.Success:
		res.Message = fmt.Sprintf("%d synced, %d conflicts", res.SyncedCount, res.ConflictsCount)
	default:
		res.Message = "sync finished with errors"
	}
	slog.Info("sync round finished",
		"synced", res.SyncedCount,
		"conflicts", res.ConflictsCount,
		"errors", len(res.Errors))
	return res
}

// Busy reports whether a round is currently running.
func (e *Engine) Busy() bool {
	return e.inFlight.Load()
}
