package db

// SchemaVersion is the current database schema version
const SchemaVersion = 1

const schema = `
-- Users (server-authoritative, mirrored locally for offline lookups)
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    numero_telephone TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL,
    code_pin TEXT DEFAULT '',
    actif INTEGER NOT NULL DEFAULT 1,
    preferred_language TEXT DEFAULT '',
    sync_status TEXT NOT NULL DEFAULT 'synced',
    last_synced_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
CREATE INDEX IF NOT EXISTS idx_users_phone ON users(numero_telephone);
CREATE INDEX IF NOT EXISTS idx_users_sync ON users(sync_status);

-- Product catalog (server-authoritative)
CREATE TABLE IF NOT EXISTS produits (
    id INTEGER PRIMARY KEY,
    nom TEXT NOT NULL,
    prix REAL NOT NULL DEFAULT 0,
    categorie TEXT NOT NULL,
    actif INTEGER NOT NULL DEFAULT 1,
    sync_status TEXT NOT NULL DEFAULT 'synced',
    last_synced_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_produits_categorie ON produits(categorie);
CREATE INDEX IF NOT EXISTS idx_produits_sync ON produits(sync_status);

-- Active seller assignments (server-authoritative)
CREATE TABLE IF NOT EXISTS vendeurs_actifs (
    id INTEGER PRIMARY KEY,
    categorie TEXT NOT NULL,
    vendeur_id INTEGER,
    connecte_a DATETIME,
    sync_status TEXT NOT NULL DEFAULT 'synced',
    last_synced_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_vendeurs_actifs_categorie ON vendeurs_actifs(categorie);

-- Goods receptions entered by a pointeur, possibly offline
CREATE TABLE IF NOT EXISTS receptions_pointeur (
    id INTEGER PRIMARY KEY,
    local_id TEXT DEFAULT '',
    pointeur_id INTEGER NOT NULL,
    producteur_id INTEGER NOT NULL,
    produit_id INTEGER NOT NULL,
    quantite REAL NOT NULL DEFAULT 0,
    vendeur_assigne_id INTEGER,
    verrou INTEGER NOT NULL DEFAULT 0,
    date_reception DATETIME NOT NULL,
    notes TEXT DEFAULT '',
    sync_status TEXT NOT NULL DEFAULT 'pending',
    last_synced_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_receptions_date ON receptions_pointeur(date_reception);
CREATE INDEX IF NOT EXISTS idx_receptions_pointeur ON receptions_pointeur(pointeur_id);
CREATE INDEX IF NOT EXISTS idx_receptions_vendeur ON receptions_pointeur(vendeur_assigne_id);
CREATE INDEX IF NOT EXISTS idx_receptions_sync ON receptions_pointeur(sync_status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_receptions_local_id ON receptions_pointeur(local_id) WHERE local_id != '';

-- Product returns
CREATE TABLE IF NOT EXISTS retours_produits (
    id INTEGER PRIMARY KEY,
    local_id TEXT DEFAULT '',
    pointeur_id INTEGER NOT NULL,
    vendeur_id INTEGER NOT NULL,
    produit_id INTEGER NOT NULL,
    quantite REAL NOT NULL DEFAULT 0,
    raison TEXT NOT NULL DEFAULT 'autre',
    description TEXT DEFAULT '',
    verrou INTEGER NOT NULL DEFAULT 0,
    date_retour DATETIME NOT NULL,
    sync_status TEXT NOT NULL DEFAULT 'pending',
    last_synced_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_retours_date ON retours_produits(date_retour);
CREATE INDEX IF NOT EXISTS idx_retours_pointeur ON retours_produits(pointeur_id);
CREATE INDEX IF NOT EXISTS idx_retours_vendeur ON retours_produits(vendeur_id);
CREATE INDEX IF NOT EXISTS idx_retours_sync ON retours_produits(sync_status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_retours_local_id ON retours_produits(local_id) WHERE local_id != '';

-- Handover inventory counts (parents of inventaire_details)
CREATE TABLE IF NOT EXISTS inventaires (
    id INTEGER PRIMARY KEY,
    local_id TEXT DEFAULT '',
    vendeur_sortant_id INTEGER NOT NULL,
    vendeur_entrant_id INTEGER NOT NULL,
    categorie TEXT NOT NULL,
    valide_sortant INTEGER NOT NULL DEFAULT 0,
    valide_entrant INTEGER NOT NULL DEFAULT 0,
    date_inventaire DATETIME NOT NULL,
    sync_status TEXT NOT NULL DEFAULT 'pending',
    last_synced_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_inventaires_date ON inventaires(date_inventaire);
CREATE INDEX IF NOT EXISTS idx_inventaires_sync ON inventaires(sync_status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_inventaires_local_id ON inventaires(local_id) WHERE local_id != '';

-- Per-product lines of an inventory count. While the parent count has no
-- server id, inventaire_id is 0 and inventaire_local_id carries the join key.
CREATE TABLE IF NOT EXISTS inventaire_details (
    id INTEGER PRIMARY KEY,
    local_id TEXT DEFAULT '',
    inventaire_id INTEGER NOT NULL DEFAULT 0,
    inventaire_local_id TEXT DEFAULT '',
    produit_id INTEGER NOT NULL,
    quantite_restante REAL NOT NULL DEFAULT 0,
    sync_status TEXT NOT NULL DEFAULT 'pending',
    last_synced_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_details_inventaire ON inventaire_details(inventaire_id);
CREATE INDEX IF NOT EXISTS idx_details_inventaire_local ON inventaire_details(inventaire_local_id);
CREATE INDEX IF NOT EXISTS idx_details_sync ON inventaire_details(sync_status);

-- Seller cash sessions
CREATE TABLE IF NOT EXISTS sessions_vente (
    id INTEGER PRIMARY KEY,
    local_id TEXT DEFAULT '',
    vendeur_id INTEGER NOT NULL,
    categorie TEXT NOT NULL,
    fond_vente REAL NOT NULL DEFAULT 0,
    orange_money_initial REAL NOT NULL DEFAULT 0,
    mtn_money_initial REAL NOT NULL DEFAULT 0,
    montant_verse REAL,
    orange_money_final REAL,
    mtn_money_final REAL,
    manquant REAL,
    valeur_vente REAL,
    statut TEXT NOT NULL DEFAULT 'ouverte',
    fermee_par INTEGER,
    date_ouverture DATETIME NOT NULL,
    date_fermeture DATETIME,
    sync_status TEXT NOT NULL DEFAULT 'pending',
    last_synced_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sessions_vendeur ON sessions_vente(vendeur_id);
CREATE INDEX IF NOT EXISTS idx_sessions_statut ON sessions_vente(statut);
CREATE INDEX IF NOT EXISTS idx_sessions_sync ON sessions_vente(sync_status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_local_id ON sessions_vente(local_id) WHERE local_id != '';

-- Generic key/value configuration (last_sync, auth_token, client_id,
-- current_user, base_url)
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
