package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/easygest/bp/internal/api"
	"github.com/easygest/bp/internal/models"
)

// pushedRef remembers one uploaded record so the server's verdict can be
// matched back to the local row.
type pushedRef struct {
	table   string
	id      int64
	localID string
}

// pushLocal uploads pending records in two passes. The first pass carries
// every independent collection; the second carries inventory lines, after
// freshly confirmed parents have had their server ids propagated to them.
// Lines whose parent is still unconfirmed are skipped and stay pending.
func (e *Engine) pushLocal(ctx context.Context) phaseResult {
	res := phaseResult{ok: true}

	req := &api.PushRequest{}
	var refs []pushedRef

	recs, err := e.store.PendingReceptions()
	if err != nil {
		return phaseFail("load pending receptions", err)
	}
	req.Receptions = recs
	for _, r := range recs {
		refs = append(refs, pushedRef{models.TableReceptions, r.ID, r.LocalID})
	}

	rets, err := e.store.PendingReturns()
	if err != nil {
		return phaseFail("load pending returns", err)
	}
	req.Returns = rets
	for _, r := range rets {
		refs = append(refs, pushedRef{models.TableReturns, r.ID, r.LocalID})
	}

	invs, err := e.store.PendingInventories()
	if err != nil {
		return phaseFail("load pending inventories", err)
	}
	req.Inventories = invs
	for _, inv := range invs {
		refs = append(refs, pushedRef{models.TableInventories, inv.ID, inv.LocalID})
	}

	sessions, err := e.store.PendingSaleSessions()
	if err != nil {
		return phaseFail("load pending sessions", err)
	}
	req.Sessions = sessions
	for _, s := range sessions {
		refs = append(refs, pushedRef{models.TableSaleSessions, s.ID, s.LocalID})
	}

	if !req.Empty() {
		resp, err := e.gw.Push(ctx, req)
		if err != nil {
			return phaseFail("push", err)
		}
		e.applyVerdicts(resp, refs, &res)
	}

	// Second pass: lines re-linked to a confirmed parent, plus lines whose
	// parent was already server-known when they were written.
	lines, err := e.store.PendingInventoryLines()
	if err != nil {
		res.errors = append(res.errors, fmt.Sprintf("load pending inventory lines: %v", err))
		res.ok = false
		return res
	}
	var valid []models.InventoryLine
	var lineRefs []pushedRef
	for _, line := range lines {
		if line.InventoryID == 0 {
			slog.Warn("inventory line has no confirmed parent, keeping for next round",
				"local_id", line.LocalID, "parent_local_id", line.InventoryLocalID)
			continue
		}
		valid = append(valid, line)
		lineRefs = append(lineRefs, pushedRef{models.TableInventoryLines, line.ID, line.LocalID})
	}
	if len(valid) > 0 {
		resp, err := e.gw.Push(ctx, &api.PushRequest{InventoryLines: valid})
		if err != nil {
			res.errors = append(res.errors, fmt.Sprintf("push inventory lines: %v", err))
			res.ok = false
			return res
		}
		e.applyVerdicts(resp, lineRefs, &res)
	}

	if len(refs) == 0 && len(lines) == 0 {
		slog.Debug("nothing to push")
	}
	return res
}

// applyVerdicts walks the server's per-record verdicts and updates local
// rows. Pushed records the server stayed silent about are left pending so
// the next round retries them. Confirmed inventories immediately propagate
// their server id to any lines still referencing them by local id.
func (e *Engine) applyVerdicts(resp *api.PushResponse, refs []pushedRef, res *phaseResult) {
	now := e.now()
	for _, s := range resp.Synced {
		ref, found := matchRef(refs, s.Table, s.LocalID, s.ID)
		if !found {
			slog.Warn("confirmation for unknown record", "table", s.Table, "local_id", s.LocalID, "id", s.ID)
			continue
		}
		serverID := s.ServerID
		if serverID == 0 {
			serverID = s.ID
		}
		if err := e.store.MarkSynced(ref.table, ref.id, serverID, now); err != nil {
			res.errors = append(res.errors, fmt.Sprintf("mark synced %s #%d: %v", ref.table, ref.id, err))
			res.ok = false
			continue
		}
		res.synced++
		if ref.table == models.TableInventories && ref.localID != "" {
			n, err := e.store.RelinkInventoryLines(ref.localID, serverID)
			if err != nil {
				res.errors = append(res.errors, fmt.Sprintf("relink lines of inventory #%d: %v", serverID, err))
				res.ok = false
			} else if n > 0 {
				slog.Debug("re-linked inventory lines", "inventory", serverID, "lines", n)
			}
		}
	}
	for _, c := range resp.Conflicts {
		ref, found := matchRef(refs, c.Table, c.LocalID, c.ID)
		if !found {
			slog.Warn("conflict for unknown record", "table", c.Table, "local_id", c.LocalID, "id", c.ID)
			continue
		}
		if err := e.store.MarkConflict(ref.table, ref.id); err != nil {
			res.errors = append(res.errors, fmt.Sprintf("mark conflict %s #%d: %v", ref.table, ref.id, err))
			res.ok = false
			continue
		}
		res.conflicts++
		res.errors = append(res.errors, fmt.Sprintf("Conflict %s #%d: %s", ref.table, ref.id, c.Reason))
	}
}

// matchRef correlates a verdict with an uploaded record, preferring the
// local id echo and falling back to the raw id.
func matchRef(refs []pushedRef, table, localID string, id int64) (pushedRef, bool) {
	for _, r := range refs {
		if r.table != table {
			continue
		}
		if localID != "" && r.localID == localID {
			return r, true
		}
		if id != 0 && r.id == id {
			return r, true
		}
	}
	return pushedRef{}, false
}

func phaseFail(op string, err error) phaseResult {
	return phaseResult{errors: []string{fmt.Sprintf("%s: %v", op, err)}}
}
