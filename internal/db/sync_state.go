package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/easygest/bp/internal/models"
)

// syncableTables is the whitelist accepted by the generic sync bookkeeping
// helpers. Keys are the wire collection names.
var syncableTables = map[string]bool{
	models.TableUsers:          true,
	models.TableProducts:       true,
	models.TableActiveSellers:  true,
	models.TableReceptions:     true,
	models.TableReturns:        true,
	models.TableInventories:    true,
	models.TableInventoryLines: true,
	models.TableSaleSessions:   true,
}

// PendingTables lists the collections whose rows can originate locally and
// therefore contribute to the pending count.
var PendingTables = []string{
	models.TableReceptions,
	models.TableReturns,
	models.TableInventories,
	models.TableInventoryLines,
	models.TableSaleSessions,
}

func checkTable(table string) error {
	if !syncableTables[table] {
		return fmt.Errorf("unknown collection %q", table)
	}
	return nil
}

// CountPending returns the number of rows in table awaiting push.
func (db *DB) CountPending(table string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE sync_status = ?`, table)
	if err := db.conn.QueryRow(query, models.SyncPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending %s: %w", table, err)
	}
	return count, nil
}

// CountPendingAll sums CountPending across every locally writable collection.
func (db *DB) CountPendingAll() (int64, error) {
	var total int64
	for _, table := range PendingTables {
		n, err := db.CountPending(table)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// MarkSynced records a server confirmation: the row is re-keyed to its
// server id (a no-op when they already match), flipped to synced and
// stamped. The local_id column is left untouched; it remains the historical
// join key.
func (db *DB) MarkSynced(table string, id, serverID int64, at time.Time) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if serverID == 0 {
		serverID = id
	}
	if err := db.rekey(table, id, serverID); err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET sync_status = ?, last_synced_at = ? WHERE id = ?`, table)
	if _, err := db.conn.Exec(query, models.SyncSynced, fmtTime(at), serverID); err != nil {
		return fmt.Errorf("mark synced %s/%d: %w", table, serverID, err)
	}
	return nil
}

// MarkConflict flags a row the server rejected. Conflict rows are excluded
// from future pushes until a local edit re-queues them as pending.
func (db *DB) MarkConflict(table string, id int64) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET sync_status = ? WHERE id = ?`, table)
	if _, err := db.conn.Exec(query, models.SyncConflict, id); err != nil {
		return fmt.Errorf("mark conflict %s/%d: %w", table, id, err)
	}
	return nil
}

// SyncStatusOf returns the sync status of a single row, or "" if the row
// does not exist.
func (db *DB) SyncStatusOf(table string, id int64) (models.SyncStatus, error) {
	if err := checkTable(table); err != nil {
		return "", err
	}
	var status models.SyncStatus
	query := fmt.Sprintf(`SELECT sync_status FROM %s WHERE id = ?`, table)
	err := db.conn.QueryRow(query, id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sync status %s/%d: %w", table, id, err)
	}
	return status, nil
}

// ExportAll dumps every syncable collection as generic rows, for debugging.
func (db *DB) ExportAll() (map[string][]map[string]any, error) {
	out := make(map[string][]map[string]any, len(syncableTables))
	for table := range syncableTables {
		rows, err := db.conn.Query(fmt.Sprintf(`SELECT * FROM %s`, table))
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", table, err)
		}
		cols, err := rows.Columns()
		if err != nil {
			rows.Close()
			return nil, err
		}
		var records []map[string]any
		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				rows.Close()
				return nil, err
			}
			record := make(map[string]any, len(cols))
			for i, col := range cols {
				record[col] = values[i]
			}
			records = append(records, record)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		out[table] = records
	}
	return out, nil
}
