package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/easygest/bp/internal/api"
	"github.com/easygest/bp/internal/models"
)

// pullRemote fetches server state since the last checkpoint and merges it
// into the local store. Master data (users, products, active sellers) is
// applied unconditionally; operational records never overwrite a local copy
// that still has unpushed edits. Applied collections are acknowledged
// best-effort: an ack failure only means the server re-sends next round,
// and re-applying is harmless.
func (e *Engine) pullRemote(ctx context.Context) phaseResult {
	var res phaseResult

	since := ""
	last, err := e.store.LastSync()
	if err != nil {
		res.errors = append(res.errors, fmt.Sprintf("load checkpoint: %v", err))
		return res
	}
	if last != nil {
		since = last.UTC().Format(time.RFC3339)
	}

	resp, err := e.gw.Pull(ctx, since)
	if err != nil {
		res.errors = append(res.errors, fmt.Sprintf("pull: %v", err))
		return res
	}
	if !resp.Success {
		res.errors = append(res.errors, fmt.Sprintf("pull rejected: %s", resp.Message))
		return res
	}

	now := e.now()
	applied := 0
	var ack []api.TableIDs

	for i := range resp.Data.Users {
		u := resp.Data.Users[i]
		stamp(&u.SyncMeta, now)
		if err := e.store.UpsertUser(&u); err != nil {
			res.errors = append(res.errors, fmt.Sprintf("apply user #%d: %v", u.ID, err))
			continue
		}
		applied++
	}
	ack = appendAck(ack, models.TableUsers, userIDs(resp.Data.Users))

	for i := range resp.Data.Products {
		p := resp.Data.Products[i]
		stamp(&p.SyncMeta, now)
		if err := e.store.UpsertProduct(&p); err != nil {
			res.errors = append(res.errors, fmt.Sprintf("apply product #%d: %v", p.ID, err))
			continue
		}
		applied++
	}
	ack = appendAck(ack, models.TableProducts, productIDs(resp.Data.Products))

	for i := range resp.Data.ActiveSellers {
		va := resp.Data.ActiveSellers[i]
		stamp(&va.SyncMeta, now)
		if err := e.store.UpsertActiveSeller(&va); err != nil {
			res.errors = append(res.errors, fmt.Sprintf("apply active seller #%d: %v", va.ID, err))
			continue
		}
		applied++
	}
	ack = appendAck(ack, models.TableActiveSellers, sellerIDs(resp.Data.ActiveSellers))

	for i := range resp.Data.Receptions {
		rec := resp.Data.Receptions[i]
		overwrite, err := e.mayOverwrite(models.TableReceptions, rec.ID)
		if err != nil {
			res.errors = append(res.errors, err.Error())
			continue
		}
		if !overwrite {
			continue
		}
		stamp(&rec.SyncMeta, now)
		if err := e.store.UpsertReception(&rec); err != nil {
			res.errors = append(res.errors, fmt.Sprintf("apply reception #%d: %v", rec.ID, err))
			continue
		}
		applied++
	}
	ack = appendAck(ack, models.TableReceptions, receptionIDs(resp.Data.Receptions))

	for i := range resp.Data.Returns {
		ret := resp.Data.Returns[i]
		overwrite, err := e.mayOverwrite(models.TableReturns, ret.ID)
		if err != nil {
			res.errors = append(res.errors, err.Error())
			continue
		}
		if !overwrite {
			continue
		}
		stamp(&ret.SyncMeta, now)
		if err := e.store.UpsertReturn(&ret); err != nil {
			res.errors = append(res.errors, fmt.Sprintf("apply return #%d: %v", ret.ID, err))
			continue
		}
		applied++
	}
	ack = appendAck(ack, models.TableReturns, returnIDs(resp.Data.Returns))

	for i := range resp.Data.SaleSessions {
		sess := resp.Data.SaleSessions[i]
		overwrite, err := e.mayOverwrite(models.TableSaleSessions, sess.ID)
		if err != nil {
			res.errors = append(res.errors, err.Error())
			continue
		}
		if !overwrite {
			continue
		}
		stamp(&sess.SyncMeta, now)
		if err := e.store.UpsertSaleSession(&sess); err != nil {
			res.errors = append(res.errors, fmt.Sprintf("apply session #%d: %v", sess.ID, err))
			continue
		}
		applied++
	}
	ack = appendAck(ack, models.TableSaleSessions, sessionIDs(resp.Data.SaleSessions))

	if len(ack) > 0 {
		if _, err := e.gw.Ack(ctx, ack); err != nil {
			slog.Warn("acknowledge failed, server will re-send", "err", err)
		}
	}

	if applied > 0 {
		slog.Info("pull applied", "records", applied)
	}
	res.ok = len(res.errors) == 0
	return res
}

// mayOverwrite reports whether a pulled copy of table/id may replace the
// local row. A row with unpushed local edits wins over the server copy;
// anything else, including a conflict the server already resolved on its
// side, gets replaced.
func (e *Engine) mayOverwrite(table string, id int64) (bool, error) {
	status, err := e.store.SyncStatusOf(table, id)
	if err != nil {
		return false, fmt.Errorf("check local copy %s #%d: %w", table, id, err)
	}
	return status != models.SyncPending, nil
}

func stamp(m *models.SyncMeta, now time.Time) {
	m.SyncStatus = models.SyncSynced
	t := now
	m.LastSyncedAt = &t
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
}

func appendAck(ack []api.TableIDs, table string, ids []int64) []api.TableIDs {
	if len(ids) == 0 {
		return ack
	}
	return append(ack, api.TableIDs{Table: table, IDs: ids})
}

func userIDs(users []models.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func productIDs(products []models.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func sellerIDs(sellers []models.ActiveSeller) []int64 {
	ids := make([]int64, 0, len(sellers))
	for _, va := range sellers {
		ids = append(ids, va.ID)
	}
	return ids
}

func receptionIDs(recs []models.Reception) []int64 {
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}

func returnIDs(rets []models.Return) []int64 {
	ids := make([]int64, 0, len(rets))
	for _, r := range rets {
		ids = append(ids, r.ID)
	}
	return ids
}

func sessionIDs(sessions []models.SaleSession) []int64 {
	ids := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}
