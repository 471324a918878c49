package syncclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/easygest/bp/internal/api"
)

// Pull fetches server-side changes since the given checkpoint. An empty
// since requests a full snapshot.
func (c *Client) Pull(ctx context.Context, since string) (*api.PullResponse, error) {
	params := url.Values{}
	if since != "" {
		params.Set("last_sync", since)
	}
	var resp api.PullResponse
	if err := c.do(ctx, http.MethodGet, queryPath("/sync/pull", params), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Push submits a batch of local records. The server decides per record; the
// caller must inspect Synced and Conflicts even when Success is false.
func (c *Client) Push(ctx context.Context, req *api.PushRequest) (*api.PushResponse, error) {
	var resp api.PushResponse
	if err := c.do(ctx, http.MethodPost, "/sync/push", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ack confirms receipt of pulled collections. Best-effort: callers log
// failures without failing the sync cycle.
func (c *Client) Ack(ctx context.Context, synced []api.TableIDs) (*api.AckResponse, error) {
	var resp api.AckResponse
	if err := c.do(ctx, http.MethodPost, "/sync/ack", &api.AckRequest{SyncedData: synced}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
