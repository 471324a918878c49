package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/easygest/bp/internal/models"
)

// OpenSaleSession stores a newly opened cash session, pending push.
func (db *DB) OpenSaleSession(sess *models.SaleSession) error {
	key, err := db.nextLocalKey(models.TableSaleSessions)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	sess.ID = key
	sess.LocalID = NewLocalID()
	sess.State = models.SessionOpen
	sess.SyncStatus = models.SyncPending
	sess.LastSyncedAt = nil
	sess.CreatedAt = now
	sess.UpdatedAt = now
	return db.putSaleSession(sess)
}

// UpdateSaleSession applies a local edit (typically closing the session),
// re-queueing the record as pending.
func (db *DB) UpdateSaleSession(sess *models.SaleSession) error {
	existing, err := db.GetSaleSession(sess.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("sale session %d not found", sess.ID)
	}
	sess.LocalID = existing.LocalID
	sess.CreatedAt = existing.CreatedAt
	sess.LastSyncedAt = existing.LastSyncedAt
	sess.SyncStatus = models.SyncPending
	sess.UpdatedAt = time.Now().UTC()
	return db.putSaleSession(sess)
}

// UpsertSaleSession writes a session exactly as given (sync engine path).
func (db *DB) UpsertSaleSession(sess *models.SaleSession) error {
	return db.putSaleSession(sess)
}

func (db *DB) putSaleSession(sess *models.SaleSession) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO sessions_vente
		(id, local_id, vendeur_id, categorie, fond_vente, orange_money_initial,
		 mtn_money_initial, montant_verse, orange_money_final, mtn_money_final,
		 manquant, valeur_vente, statut, fermee_par, date_ouverture, date_fermeture,
		 sync_status, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.LocalID, sess.SellerID, sess.Category, sess.OpeningFloat, sess.OrangeMoneyInitial,
		sess.MTNMoneyInitial, sess.AmountDeposited, sess.OrangeMoneyFinal, sess.MTNMoneyFinal,
		sess.Shortfall, sess.SalesValue, sess.State, sess.ClosedBy,
		fmtTime(sess.OpenedAt), fmtTimePtr(sess.ClosedAt),
		sess.SyncStatus, fmtTimePtr(sess.LastSyncedAt), fmtTime(sess.CreatedAt), fmtTime(sess.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put sale session %d: %w", sess.ID, err)
	}
	return nil
}

// GetSaleSession returns the session with the given id, or nil if absent.
func (db *DB) GetSaleSession(id int64) (*models.SaleSession, error) {
	row := db.conn.QueryRow(sessionSelect+` WHERE id = ?`, id)
	return scanSaleSession(row)
}

// ActiveSaleSession returns the seller's currently open session, or nil.
func (db *DB) ActiveSaleSession(sellerID int64) (*models.SaleSession, error) {
	row := db.conn.QueryRow(sessionSelect+` WHERE vendeur_id = ? AND statut = ? ORDER BY date_ouverture DESC LIMIT 1`,
		sellerID, models.SessionOpen)
	return scanSaleSession(row)
}

// PendingSaleSessions returns all sessions awaiting push, oldest first.
func (db *DB) PendingSaleSessions() ([]models.SaleSession, error) {
	rows, err := db.conn.Query(sessionSelect+` WHERE sync_status = ? ORDER BY created_at`, models.SyncPending)
	if err != nil {
		return nil, fmt.Errorf("pending sale sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SaleSession
	for rows.Next() {
		s, err := scanSaleSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

const sessionSelect = `
	SELECT id, local_id, vendeur_id, categorie, fond_vente, orange_money_initial,
	       mtn_money_initial, montant_verse, orange_money_final, mtn_money_final,
	       manquant, valeur_vente, statut, fermee_par, date_ouverture, date_fermeture,
	       sync_status, last_synced_at, created_at, updated_at
	FROM sessions_vente`

func scanSaleSession(row rowScanner) (*models.SaleSession, error) {
	var sess models.SaleSession
	var deposited, omFinal, mtnFinal, shortfall, salesValue sql.NullFloat64
	var closedBy sql.NullInt64
	var opened string
	var closed, lastSynced sql.NullString
	var created, updated string
	err := row.Scan(&sess.ID, &sess.LocalID, &sess.SellerID, &sess.Category, &sess.OpeningFloat,
		&sess.OrangeMoneyInitial, &sess.MTNMoneyInitial, &deposited, &omFinal, &mtnFinal,
		&shortfall, &salesValue, &sess.State, &closedBy, &opened, &closed,
		&sess.SyncStatus, &lastSynced, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan sale session: %w", err)
	}
	if deposited.Valid {
		sess.AmountDeposited = &deposited.Float64
	}
	if omFinal.Valid {
		sess.OrangeMoneyFinal = &omFinal.Float64
	}
	if mtnFinal.Valid {
		sess.MTNMoneyFinal = &mtnFinal.Float64
	}
	if shortfall.Valid {
		sess.Shortfall = &shortfall.Float64
	}
	if salesValue.Valid {
		sess.SalesValue = &salesValue.Float64
	}
	if closedBy.Valid {
		sess.ClosedBy = &closedBy.Int64
	}
	if sess.OpenedAt, err = parseTime(opened); err != nil {
		return nil, err
	}
	if sess.ClosedAt, err = scanNullTime(closed); err != nil {
		return nil, err
	}
	if err := scanMeta(&sess.SyncMeta, lastSynced, created, updated); err != nil {
		return nil, err
	}
	return &sess, nil
}
