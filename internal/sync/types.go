package sync

import (
	"context"
	"errors"
	"time"

	"github.com/easygest/bp/internal/api"
)

var (
	// ErrSyncInProgress is reported when a round is rejected because
	// another round holds the in-flight guard.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrOffline is reported when the reachability pre-flight fails.
	ErrOffline = errors.New("server unreachable")
)

// Gateway is the remote side of a synchronization round. The HTTP client
// in internal/syncclient satisfies it; tests substitute an in-memory fake.
type Gateway interface {
	// CheckReachable reports whether the server answers its health probe.
	// It never returns an error: unreachable is a state, not a failure.
	CheckReachable(ctx context.Context) bool

	// Pull fetches server state changed since the given checkpoint.
	// An empty since requests everything.
	Pull(ctx context.Context, since string) (*api.PullResponse, error)

	// Push uploads locally pending records and returns per-record verdicts.
	Push(ctx context.Context, req *api.PushRequest) (*api.PushResponse, error)

	// Ack confirms that pulled records were applied locally.
	Ack(ctx context.Context, tables []api.TableIDs) (*api.AckResponse, error)
}

// Result summarizes one synchronization round.
type Result struct {
	Success        bool
	SyncedCount    int
	ConflictsCount int
	Errors         []string
	Message        string
}

// Status is a point-in-time snapshot of the engine, recomputed on demand
// and delivered to subscribers on every transition.
type Status struct {
	LastSync     *time.Time
	PendingCount int64
	IsSyncing    bool
	IsOnline     bool
}

// Listener receives status snapshots. Callbacks run synchronously on the
// engine goroutine, so they must not call back into the engine.
type Listener func(Status)

// phaseResult carries the outcome of a single push or pull phase.
type phaseResult struct {
	synced    int
	conflicts int
	errors    []string
	ok        bool
}
