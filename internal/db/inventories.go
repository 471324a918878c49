package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/easygest/bp/internal/models"
)

// CreateInventory stores a new handover count together with its per-product
// lines. Lines reference the parent by local_id until the parent is pushed
// and receives a server id.
func (db *DB) CreateInventory(inv *models.Inventory, lines []models.InventoryLine) error {
	key, err := db.nextLocalKey(models.TableInventories)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	inv.ID = key
	inv.LocalID = NewLocalID()
	inv.SyncStatus = models.SyncPending
	inv.LastSyncedAt = nil
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if err := db.putInventory(inv); err != nil {
		return err
	}

	for i := range lines {
		lineKey, err := db.nextLocalKey(models.TableInventoryLines)
		if err != nil {
			return err
		}
		lines[i].ID = lineKey
		lines[i].LocalID = NewLocalID()
		lines[i].InventoryID = 0
		lines[i].InventoryLocalID = inv.LocalID
		lines[i].SyncStatus = models.SyncPending
		lines[i].LastSyncedAt = nil
		lines[i].CreatedAt = now
		lines[i].UpdatedAt = now
		if err := db.putInventoryLine(&lines[i]); err != nil {
			return err
		}
	}
	return nil
}

// UpsertInventory writes an inventory count exactly as given.
func (db *DB) UpsertInventory(inv *models.Inventory) error {
	return db.putInventory(inv)
}

func (db *DB) putInventory(inv *models.Inventory) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO inventaires
		(id, local_id, vendeur_sortant_id, vendeur_entrant_id, categorie,
		 valide_sortant, valide_entrant, date_inventaire,
		 sync_status, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.LocalID, inv.OutgoingSellerID, inv.IncomingSellerID, inv.Category,
		inv.OutgoingValidated, inv.IncomingValidated, fmtTime(inv.TakenAt),
		inv.SyncStatus, fmtTimePtr(inv.LastSyncedAt), fmtTime(inv.CreatedAt), fmtTime(inv.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put inventory %d: %w", inv.ID, err)
	}
	return nil
}

// GetInventory returns the inventory count with the given id, or nil.
func (db *DB) GetInventory(id int64) (*models.Inventory, error) {
	row := db.conn.QueryRow(inventorySelect+` WHERE id = ?`, id)
	return scanInventory(row)
}

// PendingInventories returns all counts awaiting push, oldest first.
func (db *DB) PendingInventories() ([]models.Inventory, error) {
	rows, err := db.conn.Query(inventorySelect+` WHERE sync_status = ? ORDER BY created_at`, models.SyncPending)
	if err != nil {
		return nil, fmt.Errorf("pending inventories: %w", err)
	}
	defer rows.Close()

	var invs []models.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}

const inventorySelect = `
	SELECT id, local_id, vendeur_sortant_id, vendeur_entrant_id, categorie,
	       valide_sortant, valide_entrant, date_inventaire,
	       sync_status, last_synced_at, created_at, updated_at
	FROM inventaires`

func scanInventory(row rowScanner) (*models.Inventory, error) {
	var inv models.Inventory
	var taken string
	var lastSynced sql.NullString
	var created, updated string
	err := row.Scan(&inv.ID, &inv.LocalID, &inv.OutgoingSellerID, &inv.IncomingSellerID,
		&inv.Category, &inv.OutgoingValidated, &inv.IncomingValidated, &taken,
		&inv.SyncStatus, &lastSynced, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan inventory: %w", err)
	}
	if inv.TakenAt, err = parseTime(taken); err != nil {
		return nil, err
	}
	if err := scanMeta(&inv.SyncMeta, lastSynced, created, updated); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpsertInventoryLine writes a line exactly as given.
func (db *DB) UpsertInventoryLine(line *models.InventoryLine) error {
	return db.putInventoryLine(line)
}

func (db *DB) putInventoryLine(line *models.InventoryLine) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO inventaire_details
		(id, local_id, inventaire_id, inventaire_local_id, produit_id, quantite_restante,
		 sync_status, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		line.ID, line.LocalID, line.InventoryID, line.InventoryLocalID, line.ProductID, line.RemainingQty,
		line.SyncStatus, fmtTimePtr(line.LastSyncedAt), fmtTime(line.CreatedAt), fmtTime(line.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put inventory line %d: %w", line.ID, err)
	}
	return nil
}

// GetInventoryLine returns the line with the given id, or nil.
func (db *DB) GetInventoryLine(id int64) (*models.InventoryLine, error) {
	row := db.conn.QueryRow(lineSelect+` WHERE id = ?`, id)
	return scanInventoryLine(row)
}

// PendingInventoryLines returns all lines awaiting push, oldest first.
func (db *DB) PendingInventoryLines() ([]models.InventoryLine, error) {
	rows, err := db.conn.Query(lineSelect+` WHERE sync_status = ? ORDER BY created_at`, models.SyncPending)
	if err != nil {
		return nil, fmt.Errorf("pending inventory lines: %w", err)
	}
	defer rows.Close()
	return collectLines(rows)
}

// LinesByParentLocalID returns every line, regardless of sync status, whose
// stored parent reference is the given local_id. The push phase uses this to
// re-point children once the parent's server id is known.
func (db *DB) LinesByParentLocalID(parentLocalID string) ([]models.InventoryLine, error) {
	rows, err := db.conn.Query(lineSelect+` WHERE inventaire_local_id = ? ORDER BY created_at`, parentLocalID)
	if err != nil {
		return nil, fmt.Errorf("lines by parent %q: %w", parentLocalID, err)
	}
	defer rows.Close()
	return collectLines(rows)
}

// RelinkInventoryLines rewrites the parent reference of every line joined to
// parentLocalID: the resolved server id replaces the local_id pointer and
// the line is forced back to pending so the next push pass picks it up,
// even if a previous pass had already confirmed it.
func (db *DB) RelinkInventoryLines(parentLocalID string, serverID int64) (int64, error) {
	res, err := db.conn.Exec(`
		UPDATE inventaire_details
		SET inventaire_id = ?, inventaire_local_id = '', sync_status = ?, updated_at = ?
		WHERE inventaire_local_id = ?`,
		serverID, models.SyncPending, fmtTime(time.Now().UTC()), parentLocalID)
	if err != nil {
		return 0, fmt.Errorf("relink lines of %q: %w", parentLocalID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func collectLines(rows *sql.Rows) ([]models.InventoryLine, error) {
	var lines []models.InventoryLine
	for rows.Next() {
		line, err := scanInventoryLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}

const lineSelect = `
	SELECT id, local_id, inventaire_id, inventaire_local_id, produit_id, quantite_restante,
	       sync_status, last_synced_at, created_at, updated_at
	FROM inventaire_details`

func scanInventoryLine(row rowScanner) (*models.InventoryLine, error) {
	var line models.InventoryLine
	var lastSynced sql.NullString
	var created, updated string
	err := row.Scan(&line.ID, &line.LocalID, &line.InventoryID, &line.InventoryLocalID,
		&line.ProductID, &line.RemainingQty, &line.SyncStatus, &lastSynced, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan inventory line: %w", err)
	}
	if err := scanMeta(&line.SyncMeta, lastSynced, created, updated); err != nil {
		return nil, err
	}
	return &line, nil
}
