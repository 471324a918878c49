package sync

import (
	"context"
	"log/slog"
)

// Subscribe registers a listener for status snapshots and returns its
// unsubscribe function. The listener fires on every sync start, between
// phases, and on completion.
func (e *Engine) Subscribe(fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Status recomputes a fresh snapshot from the store and the gateway probe.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	st := Status{IsSyncing: e.inFlight.Load()}
	pending, err := e.store.CountPendingAll()
	if err != nil {
		return st, err
	}
	st.PendingCount = pending
	last, err := e.store.LastSync()
	if err != nil {
		return st, err
	}
	st.LastSync = last
	st.IsOnline = e.gw.CheckReachable(ctx)
	return st, nil
}

// Refresh recomputes the status and pushes it to subscribers. Callers use
// it after local writes that change the pending count outside a sync round.
func (e *Engine) Refresh(ctx context.Context) {
	e.notify(ctx)
}

func (e *Engine) notify(ctx context.Context) {
	st, err := e.Status(ctx)
	if err != nil {
		slog.Warn("status snapshot failed", "err", err)
		return
	}
	e.mu.Lock()
	fns := make([]Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}
