package db

import (
	"errors"
	"testing"
	"time"

	"github.com/easygest/bp/internal/models"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	db, err := InitializeInMemory()
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newReception(t *testing.T, db *DB, qty float64) *models.Reception {
	t.Helper()
	rec := &models.Reception{
		PointeurID: 1,
		ProducerID: 2,
		ProductID:  3,
		Quantity:   qty,
		ReceivedAt: time.Now().UTC(),
	}
	if err := db.CreateReception(rec); err != nil {
		t.Fatalf("create reception: %v", err)
	}
	return rec
}

func TestConfigRoundTrip(t *testing.T) {
	db := setupDB(t)

	got, err := db.GetConfig("missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != "" {
		t.Fatalf("missing key: got %q, want empty", got)
	}

	if err := db.SetConfig("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.SetConfig("k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = db.GetConfig("k")
	if got != "v2" {
		t.Fatalf("get: got %q, want v2", got)
	}
	if err := db.DeleteConfig("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = db.GetConfig("k")
	if got != "" {
		t.Fatalf("after delete: got %q, want empty", got)
	}
}

func TestLastSyncCheckpoint(t *testing.T) {
	db := setupDB(t)

	last, err := db.LastSync()
	if err != nil {
		t.Fatalf("last sync: %v", err)
	}
	if last != nil {
		t.Fatal("fresh store should have no checkpoint")
	}

	want := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	if err := db.SetLastSync(want); err != nil {
		t.Fatalf("set last sync: %v", err)
	}
	last, err = db.LastSync()
	if err != nil || last == nil {
		t.Fatalf("last sync after set: %v %v", last, err)
	}
	if !last.Equal(want) {
		t.Fatalf("checkpoint: got %v, want %v", last, want)
	}
}

func TestClientIDStable(t *testing.T) {
	db := setupDB(t)

	first, err := db.ClientID()
	if err != nil {
		t.Fatalf("client id: %v", err)
	}
	if first == "" {
		t.Fatal("client id not generated")
	}
	second, _ := db.ClientID()
	if second != first {
		t.Fatalf("client id changed: %q then %q", first, second)
	}
}

func TestCreateReceptionProvisionalKey(t *testing.T) {
	db := setupDB(t)

	first := newReception(t, db, 10)
	second := newReception(t, db, 20)

	if first.ID < localKeyBase {
		t.Fatalf("first key %d below provisional range", first.ID)
	}
	if second.ID != first.ID+1 {
		t.Fatalf("keys not sequential: %d then %d", first.ID, second.ID)
	}
	if first.LocalID == "" || first.LocalID == second.LocalID {
		t.Fatalf("local ids not unique: %q vs %q", first.LocalID, second.LocalID)
	}
	if first.SyncStatus != models.SyncPending {
		t.Fatalf("status: got %q, want pending", first.SyncStatus)
	}

	n, err := db.CountPending(models.TableReceptions)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if n != 2 {
		t.Fatalf("pending: got %d, want 2", n)
	}
}

func TestUpdateReceptionLocked(t *testing.T) {
	db := setupDB(t)
	rec := newReception(t, db, 10)

	rec.Locked = true
	if err := db.UpsertReception(rec); err != nil {
		t.Fatalf("lock reception: %v", err)
	}

	rec.Quantity = 15
	err := db.UpdateReception(rec)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	got, _ := db.GetReception(rec.ID)
	if got.Quantity != 10 {
		t.Fatalf("locked record modified: quantity %v", got.Quantity)
	}
}

func TestUpdateRequeuesSyncedRecord(t *testing.T) {
	db := setupDB(t)
	rec := newReception(t, db, 10)

	now := time.Now().UTC()
	if err := db.MarkSynced(models.TableReceptions, rec.ID, 77, now); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	got, err := db.GetReception(77)
	if err != nil || got == nil {
		t.Fatalf("get re-keyed reception: %v", err)
	}
	got.Quantity = 12
	if err := db.UpdateReception(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.SyncStatus != models.SyncPending {
		t.Fatalf("status after edit: got %q, want pending", got.SyncStatus)
	}
	if got.LocalID != rec.LocalID {
		t.Fatalf("local id changed on edit: %q vs %q", got.LocalID, rec.LocalID)
	}
}

func TestMarkSyncedRekeysOverStalePulledCopy(t *testing.T) {
	db := setupDB(t)
	rec := newReception(t, db, 10)

	// A pulled copy of the same record already sits under the server id.
	stale := &models.Reception{
		ID: 77, PointeurID: 1, ProducerID: 2, ProductID: 3,
		Quantity: 8, ReceivedAt: time.Now().UTC(),
	}
	stale.SyncStatus = models.SyncSynced
	stale.CreatedAt = time.Now().UTC()
	stale.UpdatedAt = stale.CreatedAt
	if err := db.UpsertReception(stale); err != nil {
		t.Fatalf("seed stale copy: %v", err)
	}

	if err := db.MarkSynced(models.TableReceptions, rec.ID, 77, time.Now().UTC()); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	got, _ := db.GetReception(77)
	if got == nil {
		t.Fatal("re-keyed row missing")
	}
	if got.Quantity != 10 {
		t.Fatalf("local row lost to stale copy: quantity %v", got.Quantity)
	}
	if old, _ := db.GetReception(rec.ID); old != nil {
		t.Fatal("provisional row still present")
	}
}

func TestMarkSyncedWithoutServerID(t *testing.T) {
	db := setupDB(t)
	rec := newReception(t, db, 10)

	if err := db.MarkSynced(models.TableReceptions, rec.ID, 0, time.Now().UTC()); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	got, _ := db.GetReception(rec.ID)
	if got == nil || got.SyncStatus != models.SyncSynced {
		t.Fatalf("row not synced in place: %+v", got)
	}
	if got.LastSyncedAt == nil {
		t.Fatal("last_synced_at not stamped")
	}
}

func TestCreateInventoryLinksLinesByLocalID(t *testing.T) {
	db := setupDB(t)

	inv := &models.Inventory{
		OutgoingSellerID: 1,
		IncomingSellerID: 2,
		Category:         models.CategoryBakery,
		TakenAt:          time.Now().UTC(),
	}
	lines := []models.InventoryLine{
		{ProductID: 10, RemainingQty: 3},
		{ProductID: 11, RemainingQty: 1.5},
	}
	if err := db.CreateInventory(inv, lines); err != nil {
		t.Fatalf("create inventory: %v", err)
	}

	got, err := db.LinesByParentLocalID(inv.LocalID)
	if err != nil {
		t.Fatalf("lines by parent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("lines: got %d, want 2", len(got))
	}
	for _, line := range got {
		if line.InventoryID != 0 {
			t.Fatalf("line %d already has parent id %d", line.ID, line.InventoryID)
		}
		if line.InventoryLocalID != inv.LocalID {
			t.Fatalf("line parent local id: got %q, want %q", line.InventoryLocalID, inv.LocalID)
		}
	}
}

func TestRelinkInventoryLines(t *testing.T) {
	db := setupDB(t)

	inv := &models.Inventory{
		OutgoingSellerID: 1,
		IncomingSellerID: 2,
		Category:         models.CategoryPastry,
		TakenAt:          time.Now().UTC(),
	}
	lines := []models.InventoryLine{
		{ProductID: 10, RemainingQty: 3},
		{ProductID: 11, RemainingQty: 2},
	}
	if err := db.CreateInventory(inv, lines); err != nil {
		t.Fatalf("create inventory: %v", err)
	}

	// One line was already pushed once; relinking must requeue it too so
	// the server sees it under the parent's real id.
	if err := db.MarkSynced(models.TableInventoryLines, lines[0].ID, 0, time.Now().UTC()); err != nil {
		t.Fatalf("mark line synced: %v", err)
	}

	n, err := db.RelinkInventoryLines(inv.LocalID, 42)
	if err != nil {
		t.Fatalf("relink: %v", err)
	}
	if n != 2 {
		t.Fatalf("relinked: got %d, want 2", n)
	}

	pending, err := db.PendingInventoryLines()
	if err != nil {
		t.Fatalf("pending lines: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending: got %d, want 2", len(pending))
	}
	for _, line := range pending {
		if line.InventoryID != 42 {
			t.Fatalf("parent id: got %d, want 42", line.InventoryID)
		}
		if line.InventoryLocalID != "" {
			t.Fatalf("parent local id not cleared: %q", line.InventoryLocalID)
		}
	}
}

func TestCountPendingAll(t *testing.T) {
	db := setupDB(t)

	newReception(t, db, 1)
	ret := &models.Return{
		PointeurID: 1, SellerID: 2, ProductID: 3, Quantity: 1,
		Reason: models.ReasonDamaged, ReturnedAt: time.Now().UTC(),
	}
	if err := db.CreateReturn(ret); err != nil {
		t.Fatalf("create return: %v", err)
	}

	total, err := db.CountPendingAll()
	if err != nil {
		t.Fatalf("count pending all: %v", err)
	}
	if total != 2 {
		t.Fatalf("total pending: got %d, want 2", total)
	}

	if _, err := db.CountPending("users; DROP TABLE users"); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}

func TestUpsertUserAndLookup(t *testing.T) {
	db := setupDB(t)

	u := &models.User{
		ID: 3, Name: "Aissatou", Phone: "690000001",
		Role: models.RolePointeur, Active: true,
	}
	u.SyncStatus = models.SyncSynced
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	if err := db.UpsertUser(u); err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	got, err := db.GetUserByPhone("690000001")
	if err != nil || got == nil {
		t.Fatalf("get by phone: %v", err)
	}
	if got.Name != "Aissatou" || got.Role != models.RolePointeur {
		t.Fatalf("user: %+v", got)
	}
	if missing, _ := db.GetUserByPhone("699999999"); missing != nil {
		t.Fatal("lookup of unknown phone should return nil")
	}
}

func TestActiveSaleSession(t *testing.T) {
	db := setupDB(t)

	sess := &models.SaleSession{
		SellerID: 4, Category: models.CategoryBakery,
		OpeningFloat: 5000, OpenedAt: time.Now().UTC(),
	}
	if err := db.OpenSaleSession(sess); err != nil {
		t.Fatalf("open session: %v", err)
	}

	open, err := db.ActiveSaleSession(4)
	if err != nil || open == nil {
		t.Fatalf("active session: %v", err)
	}
	if open.State != models.SessionOpen {
		t.Fatalf("state: got %q, want open", open.State)
	}

	now := time.Now().UTC()
	deposited := 42000.0
	open.State = models.SessionClosed
	open.AmountDeposited = &deposited
	open.ClosedAt = &now
	if err := db.UpdateSaleSession(open); err != nil {
		t.Fatalf("close session: %v", err)
	}

	if again, _ := db.ActiveSaleSession(4); again != nil {
		t.Fatal("closed session still reported active")
	}
	got, _ := db.GetSaleSession(open.ID)
	if got.AmountDeposited == nil || *got.AmountDeposited != 42000 {
		t.Fatalf("deposited: %+v", got.AmountDeposited)
	}
}
