package autosync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/sync"
)

type fakeSyncer struct {
	rounds int
}

func (s *fakeSyncer) FullSync(ctx context.Context) sync.Result {
	s.rounds++
	return sync.Result{Success: true}
}

type fakeProber struct {
	reachable bool
}

func (p *fakeProber) CheckReachable(ctx context.Context) bool { return p.reachable }

type fakeReauther struct {
	calls int
	err   error
}

func (r *fakeReauther) SilentReauth(ctx context.Context) (*models.User, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &models.User{ID: 1}, nil
}

func testWatcher(syncer Syncer, probe Prober, reauth Reauther) *Watcher {
	return New(syncer, probe, reauth, Options{
		ProbeInterval: time.Millisecond,
		SettleDelay:   0,
		SyncInterval:  time.Hour,
	})
}

func TestTick_SyncsWhenConnectivityReturns(t *testing.T) {
	syncer := &fakeSyncer{}
	probe := &fakeProber{reachable: false}
	w := testWatcher(syncer, probe, nil)
	ctx := context.Background()

	w.tick(ctx)
	if syncer.rounds != 0 {
		t.Fatalf("rounds while offline: got %d, want 0", syncer.rounds)
	}

	probe.reachable = true
	w.tick(ctx)
	if syncer.rounds != 1 {
		t.Fatalf("rounds after reconnect: got %d, want 1", syncer.rounds)
	}

	// Still online, periodic interval not reached yet: no extra round.
	w.tick(ctx)
	if syncer.rounds != 1 {
		t.Fatalf("rounds while settled: got %d, want 1", syncer.rounds)
	}

	// Drop and restore again: another edge, another round.
	probe.reachable = false
	w.tick(ctx)
	probe.reachable = true
	w.tick(ctx)
	if syncer.rounds != 2 {
		t.Fatalf("rounds after second reconnect: got %d, want 2", syncer.rounds)
	}
}

func TestTick_PeriodicRoundsWhileOnline(t *testing.T) {
	syncer := &fakeSyncer{}
	probe := &fakeProber{reachable: true}
	w := New(syncer, probe, nil, Options{
		ProbeInterval: time.Millisecond,
		SettleDelay:   0,
		SyncInterval:  time.Millisecond,
	})
	ctx := context.Background()

	w.tick(ctx) // reconnect edge
	time.Sleep(2 * time.Millisecond)
	w.tick(ctx) // periodic
	if syncer.rounds != 2 {
		t.Fatalf("rounds: got %d, want 2", syncer.rounds)
	}
}

func TestRound_ReauthFailureSkipsSync(t *testing.T) {
	syncer := &fakeSyncer{}
	probe := &fakeProber{reachable: true}
	reauth := &fakeReauther{err: errors.New("session expired")}
	w := testWatcher(syncer, probe, reauth)

	w.tick(context.Background())
	if reauth.calls != 1 {
		t.Fatalf("reauth calls: got %d, want 1", reauth.calls)
	}
	if syncer.rounds != 0 {
		t.Fatalf("rounds after failed reauth: got %d, want 0", syncer.rounds)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	syncer := &fakeSyncer{}
	probe := &fakeProber{reachable: false}
	w := testWatcher(syncer, probe, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
