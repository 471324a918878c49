package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/easygest/bp/internal/models"
)

// Catalog collections (users, products, active sellers) are
// server-authoritative: the pull phase replaces them wholesale, so their
// upserts write every column unconditionally.

// UpsertUser inserts or replaces a user row keyed by its server id.
func (db *DB) UpsertUser(u *models.User) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO users
		(id, name, numero_telephone, role, code_pin, actif, preferred_language,
		 sync_status, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Phone, u.Role, u.PINCode, u.Active, u.PreferredLanguage,
		u.SyncStatus, fmtTimePtr(u.LastSyncedAt), fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", u.ID, err)
	}
	return nil
}

// GetUser returns the user with the given id, or nil if absent.
func (db *DB) GetUser(id int64) (*models.User, error) {
	row := db.conn.QueryRow(`
		SELECT id, name, numero_telephone, role, code_pin, actif, preferred_language,
		       sync_status, last_synced_at, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByPhone returns the user with the given phone number, or nil.
func (db *DB) GetUserByPhone(phone string) (*models.User, error) {
	row := db.conn.QueryRow(`
		SELECT id, name, numero_telephone, role, code_pin, actif, preferred_language,
		       sync_status, last_synced_at, created_at, updated_at
		FROM users WHERE numero_telephone = ?`, phone)
	return scanUser(row)
}

// ListUsers returns all users ordered by name.
func (db *DB) ListUsers() ([]models.User, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, numero_telephone, role, code_pin, actif, preferred_language,
		       sync_status, last_synced_at, created_at, updated_at
		FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var lastSynced sql.NullString
	var created, updated string
	err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Role, &u.PINCode, &u.Active,
		&u.PreferredLanguage, &u.SyncStatus, &lastSynced, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if err := scanMeta(&u.SyncMeta, lastSynced, created, updated); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertProduct inserts or replaces a catalog product.
func (db *DB) UpsertProduct(p *models.Product) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO produits
		(id, nom, prix, categorie, actif, sync_status, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price, p.Category, p.Active,
		p.SyncStatus, fmtTimePtr(p.LastSyncedAt), fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert product %d: %w", p.ID, err)
	}
	return nil
}

// GetProduct returns the product with the given id, or nil if absent.
func (db *DB) GetProduct(id int64) (*models.Product, error) {
	row := db.conn.QueryRow(`
		SELECT id, nom, prix, categorie, actif, sync_status, last_synced_at, created_at, updated_at
		FROM produits WHERE id = ?`, id)
	return scanProduct(row)
}

// ListProducts returns products, optionally restricted to a category.
func (db *DB) ListProducts(category models.Category) ([]models.Product, error) {
	query := `SELECT id, nom, prix, categorie, actif, sync_status, last_synced_at, created_at, updated_at
		FROM produits`
	var args []any
	if category != "" {
		query += ` WHERE categorie = ?`
		args = append(args, category)
	}
	query += ` ORDER BY nom`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var lastSynced sql.NullString
	var created, updated string
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Active,
		&p.SyncStatus, &lastSynced, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if err := scanMeta(&p.SyncMeta, lastSynced, created, updated); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertActiveSeller inserts or replaces an active seller assignment.
func (db *DB) UpsertActiveSeller(va *models.ActiveSeller) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO vendeurs_actifs
		(id, categorie, vendeur_id, connecte_a, sync_status, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		va.ID, va.Category, va.SellerID, fmtTimePtr(va.ConnectedAt),
		va.SyncStatus, fmtTimePtr(va.LastSyncedAt), fmtTime(va.CreatedAt), fmtTime(va.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert active seller %d: %w", va.ID, err)
	}
	return nil
}

// ActiveSellerForCategory returns the current assignment for a category, or
// nil when no seller is assigned.
func (db *DB) ActiveSellerForCategory(category models.Category) (*models.ActiveSeller, error) {
	row := db.conn.QueryRow(`
		SELECT id, categorie, vendeur_id, connecte_a, sync_status, last_synced_at, created_at, updated_at
		FROM vendeurs_actifs WHERE categorie = ?`, category)
	return scanActiveSeller(row)
}

func scanActiveSeller(row rowScanner) (*models.ActiveSeller, error) {
	var va models.ActiveSeller
	var sellerID sql.NullInt64
	var connectedAt, lastSynced sql.NullString
	var created, updated string
	err := row.Scan(&va.ID, &va.Category, &sellerID, &connectedAt,
		&va.SyncStatus, &lastSynced, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan active seller: %w", err)
	}
	if sellerID.Valid {
		va.SellerID = &sellerID.Int64
	}
	var scanErr error
	if va.ConnectedAt, scanErr = scanNullTime(connectedAt); scanErr != nil {
		return nil, scanErr
	}
	if err := scanMeta(&va.SyncMeta, lastSynced, created, updated); err != nil {
		return nil, err
	}
	return &va, nil
}

func scanMeta(m *models.SyncMeta, lastSynced sql.NullString, created, updated string) error {
	var err error
	if m.LastSyncedAt, err = scanNullTime(lastSynced); err != nil {
		return err
	}
	if m.CreatedAt, err = parseTime(created); err != nil {
		return err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return err
	}
	return nil
}
