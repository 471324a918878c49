package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/easygest/bp/internal/models"
)

// CreateReception stores a new reception entered at the counter. The record
// gets a provisional key, a local_id join key and starts out pending.
func (db *DB) CreateReception(rec *models.Reception) error {
	key, err := db.nextLocalKey(models.TableReceptions)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec.ID = key
	rec.LocalID = NewLocalID()
	rec.SyncStatus = models.SyncPending
	rec.LastSyncedAt = nil
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return db.putReception(rec)
}

// UpdateReception applies a local edit. Locked records reject the edit; any
// other record (synced or conflict) is re-queued as pending.
func (db *DB) UpdateReception(rec *models.Reception) error {
	existing, err := db.GetReception(rec.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("reception %d not found", rec.ID)
	}
	if existing.Locked {
		return fmt.Errorf("update reception %d: %w", rec.ID, ErrLocked)
	}
	rec.LocalID = existing.LocalID
	rec.CreatedAt = existing.CreatedAt
	rec.LastSyncedAt = existing.LastSyncedAt
	rec.SyncStatus = models.SyncPending
	rec.UpdatedAt = time.Now().UTC()
	return db.putReception(rec)
}

// UpsertReception writes a reception exactly as given. Used by the sync
// engine for server-sourced rows and push bookkeeping.
func (db *DB) UpsertReception(rec *models.Reception) error {
	return db.putReception(rec)
}

func (db *DB) putReception(rec *models.Reception) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO receptions_pointeur
		(id, local_id, pointeur_id, producteur_id, produit_id, quantite,
		 vendeur_assigne_id, verrou, date_reception, notes,
		 sync_status, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.LocalID, rec.PointeurID, rec.ProducerID, rec.ProductID, rec.Quantity,
		rec.AssignedSellerID, rec.Locked, fmtTime(rec.ReceivedAt), rec.Notes,
		rec.SyncStatus, fmtTimePtr(rec.LastSyncedAt), fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put reception %d: %w", rec.ID, err)
	}
	return nil
}

// GetReception returns the reception with the given id, or nil if absent.
func (db *DB) GetReception(id int64) (*models.Reception, error) {
	row := db.conn.QueryRow(receptionSelect+` WHERE id = ?`, id)
	return scanReception(row)
}

// PendingReceptions returns all receptions awaiting push, oldest first.
func (db *DB) PendingReceptions() ([]models.Reception, error) {
	rows, err := db.conn.Query(receptionSelect+` WHERE sync_status = ? ORDER BY created_at`, models.SyncPending)
	if err != nil {
		return nil, fmt.Errorf("pending receptions: %w", err)
	}
	defer rows.Close()

	var recs []models.Reception
	for rows.Next() {
		r, err := scanReception(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, rows.Err()
}

const receptionSelect = `
	SELECT id, local_id, pointeur_id, producteur_id, produit_id, quantite,
	       vendeur_assigne_id, verrou, date_reception, notes,
	       sync_status, last_synced_at, created_at, updated_at
	FROM receptions_pointeur`

func scanReception(row rowScanner) (*models.Reception, error) {
	var rec models.Reception
	var assigned sql.NullInt64
	var received string
	var lastSynced sql.NullString
	var created, updated string
	err := row.Scan(&rec.ID, &rec.LocalID, &rec.PointeurID, &rec.ProducerID, &rec.ProductID,
		&rec.Quantity, &assigned, &rec.Locked, &received, &rec.Notes,
		&rec.SyncStatus, &lastSynced, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan reception: %w", err)
	}
	if assigned.Valid {
		rec.AssignedSellerID = &assigned.Int64
	}
	if rec.ReceivedAt, err = parseTime(received); err != nil {
		return nil, err
	}
	if err := scanMeta(&rec.SyncMeta, lastSynced, created, updated); err != nil {
		return nil, err
	}
	return &rec, nil
}
