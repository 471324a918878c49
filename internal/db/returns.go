package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/easygest/bp/internal/models"
)

// CreateReturn stores a new product return, pending push.
func (db *DB) CreateReturn(ret *models.Return) error {
	key, err := db.nextLocalKey(models.TableReturns)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	ret.ID = key
	ret.LocalID = NewLocalID()
	ret.SyncStatus = models.SyncPending
	ret.LastSyncedAt = nil
	ret.CreatedAt = now
	ret.UpdatedAt = now
	return db.putReturn(ret)
}

// UpdateReturn applies a local edit, re-queueing the record as pending.
// Locked returns reject the edit.
func (db *DB) UpdateReturn(ret *models.Return) error {
	existing, err := db.GetReturn(ret.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("return %d not found", ret.ID)
	}
	if existing.Locked {
		return fmt.Errorf("update return %d: %w", ret.ID, ErrLocked)
	}
	ret.LocalID = existing.LocalID
	ret.CreatedAt = existing.CreatedAt
	ret.LastSyncedAt = existing.LastSyncedAt
	ret.SyncStatus = models.SyncPending
	ret.UpdatedAt = time.Now().UTC()
	return db.putReturn(ret)
}

// UpsertReturn writes a return exactly as given (sync engine path).
func (db *DB) UpsertReturn(ret *models.Return) error {
	return db.putReturn(ret)
}

func (db *DB) putReturn(ret *models.Return) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO retours_produits
		(id, local_id, pointeur_id, vendeur_id, produit_id, quantite, raison,
		 description, verrou, date_retour,
		 sync_status, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ret.ID, ret.LocalID, ret.PointeurID, ret.SellerID, ret.ProductID, ret.Quantity, ret.Reason,
		ret.Description, ret.Locked, fmtTime(ret.ReturnedAt),
		ret.SyncStatus, fmtTimePtr(ret.LastSyncedAt), fmtTime(ret.CreatedAt), fmtTime(ret.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put return %d: %w", ret.ID, err)
	}
	return nil
}

// GetReturn returns the product return with the given id, or nil if absent.
func (db *DB) GetReturn(id int64) (*models.Return, error) {
	row := db.conn.QueryRow(returnSelect+` WHERE id = ?`, id)
	return scanReturn(row)
}

// PendingReturns returns all returns awaiting push, oldest first.
func (db *DB) PendingReturns() ([]models.Return, error) {
	rows, err := db.conn.Query(returnSelect+` WHERE sync_status = ? ORDER BY created_at`, models.SyncPending)
	if err != nil {
		return nil, fmt.Errorf("pending returns: %w", err)
	}
	defer rows.Close()

	var rets []models.Return
	for rows.Next() {
		r, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		rets = append(rets, *r)
	}
	return rets, rows.Err()
}

const returnSelect = `
	SELECT id, local_id, pointeur_id, vendeur_id, produit_id, quantite, raison,
	       description, verrou, date_retour,
	       sync_status, last_synced_at, created_at, updated_at
	FROM retours_produits`

func scanReturn(row rowScanner) (*models.Return, error) {
	var ret models.Return
	var returned string
	var lastSynced sql.NullString
	var created, updated string
	err := row.Scan(&ret.ID, &ret.LocalID, &ret.PointeurID, &ret.SellerID, &ret.ProductID,
		&ret.Quantity, &ret.Reason, &ret.Description, &ret.Locked, &returned,
		&ret.SyncStatus, &lastSynced, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan return: %w", err)
	}
	if ret.ReturnedAt, err = parseTime(returned); err != nil {
		return nil, err
	}
	if err := scanMeta(&ret.SyncMeta, lastSynced, created, updated); err != nil {
		return nil, err
	}
	return &ret, nil
}
