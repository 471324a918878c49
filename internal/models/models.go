package models

import (
	"time"
)

// SyncStatus tracks where a record sits in the local/remote reconciliation
// lifecycle.
type SyncStatus string

const (
	// SyncPending means the record has local edits not yet confirmed by the
	// server.
	SyncPending SyncStatus = "pending"
	// SyncSynced means the last known server state equals the local state.
	SyncSynced SyncStatus = "synced"
	// SyncConflict means the server rejected the record; a fresh local edit
	// is required before it is retried.
	SyncConflict SyncStatus = "conflict"
)

// Category represents a product line.
type Category string

const (
	CategoryBakery Category = "boulangerie"
	CategoryPastry Category = "patisserie"
)

// Role represents a user role.
type Role string

const (
	RolePDG          Role = "pdg"
	RolePointeur     Role = "pointeur"
	RoleSellerBakery Role = "vendeur_boulangerie"
	RoleSellerPastry Role = "vendeur_patisserie"
	RoleProducer     Role = "producteur"
)

// ReturnReason explains why a product came back.
type ReturnReason string

const (
	ReasonExpired ReturnReason = "perime"
	ReasonDamaged ReturnReason = "abime"
	ReasonOther   ReturnReason = "autre"
)

// SessionState represents the lifecycle of a sale session.
type SessionState string

const (
	SessionOpen   SessionState = "ouverte"
	SessionClosed SessionState = "fermee"
)

// Collection names as they appear on the wire and in the local store.
const (
	TableUsers          = "users"
	TableProducts       = "produits"
	TableActiveSellers  = "vendeurs_actifs"
	TableReceptions     = "receptions_pointeur"
	TableReturns        = "retours_produits"
	TableInventories    = "inventaires"
	TableInventoryLines = "inventaire_details"
	TableSaleSessions   = "sessions_vente"
)

// SyncMeta is the reconciliation envelope carried by every syncable record.
// Embedding it flattens the fields into the record's JSON representation.
type SyncMeta struct {
	SyncStatus   SyncStatus `json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// User is a staff account. The server is authoritative; users are never
// created offline.
type User struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Phone             string `json:"numero_telephone"`
	Role              Role   `json:"role"`
	PINCode           string `json:"code_pin,omitempty"`
	Active            bool   `json:"actif"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	SyncMeta
}

// Product is a catalog entry. Server-authoritative.
type Product struct {
	ID       int64    `json:"id"`
	Name     string   `json:"nom"`
	Price    float64  `json:"prix"`
	Category Category `json:"categorie"`
	Active   bool     `json:"actif"`
	SyncMeta
}

// ActiveSeller records which seller is currently assigned to a category
// counter. Server-authoritative.
type ActiveSeller struct {
	ID          int64      `json:"id"`
	Category    Category   `json:"categorie"`
	SellerID    *int64     `json:"vendeur_id"`
	ConnectedAt *time.Time `json:"connecte_a,omitempty"`
	SyncMeta
}

// Reception is a goods-received entry created by a pointeur, possibly
// offline. Once Locked is set by a supervisor, local edits are rejected.
type Reception struct {
	ID               int64     `json:"id,omitempty"`
	LocalID          string    `json:"local_id,omitempty"`
	PointeurID       int64     `json:"pointeur_id"`
	ProducerID       int64     `json:"producteur_id"`
	ProductID        int64     `json:"produit_id"`
	Quantity         float64   `json:"quantite"`
	AssignedSellerID *int64    `json:"vendeur_assigne_id"`
	Locked           bool      `json:"verrou"`
	ReceivedAt       time.Time `json:"date_reception"`
	Notes            string    `json:"notes,omitempty"`
	SyncMeta
}

// Return is a product return entry, possibly created offline. Subject to the
// same Locked semantics as Reception.
type Return struct {
	ID          int64        `json:"id,omitempty"`
	LocalID     string       `json:"local_id,omitempty"`
	PointeurID  int64        `json:"pointeur_id"`
	SellerID    int64        `json:"vendeur_id"`
	ProductID   int64        `json:"produit_id"`
	Quantity    float64      `json:"quantite"`
	Reason      ReturnReason `json:"raison"`
	Description string       `json:"description,omitempty"`
	Locked      bool         `json:"verrou"`
	ReturnedAt  time.Time    `json:"date_retour"`
	SyncMeta
}

// Inventory is a handover count between an outgoing and an incoming seller.
// It is the parent of InventoryLine records.
type Inventory struct {
	ID                int64     `json:"id,omitempty"`
	LocalID           string    `json:"local_id,omitempty"`
	OutgoingSellerID  int64     `json:"vendeur_sortant_id"`
	IncomingSellerID  int64     `json:"vendeur_entrant_id"`
	Category          Category  `json:"categorie"`
	OutgoingValidated bool      `json:"valide_sortant"`
	IncomingValidated bool      `json:"valide_entrant"`
	TakenAt           time.Time `json:"date_inventaire"`
	SyncMeta
}

// InventoryLine is a per-product count belonging to an Inventory. While the
// parent has no server id yet, the line references it through
// InventoryLocalID; the sync engine re-points the line at the parent's
// server id before the line itself becomes pushable.
type InventoryLine struct {
	ID               int64   `json:"id,omitempty"`
	LocalID          string  `json:"local_id,omitempty"`
	InventoryID      int64   `json:"inventaire_id,omitempty"`
	InventoryLocalID string  `json:"inventaire_local_id,omitempty"`
	ProductID        int64   `json:"produit_id"`
	RemainingQty     float64 `json:"quantite_restante"`
	SyncMeta
}

// SaleSession is a seller's cash session, opened and closed at the counter,
// possibly offline.
type SaleSession struct {
	ID                 int64        `json:"id,omitempty"`
	LocalID            string       `json:"local_id,omitempty"`
	SellerID           int64        `json:"vendeur_id"`
	Category           Category     `json:"categorie"`
	OpeningFloat       float64      `json:"fond_vente"`
	OrangeMoneyInitial float64      `json:"orange_money_initial"`
	MTNMoneyInitial    float64      `json:"mtn_money_initial"`
	AmountDeposited    *float64     `json:"montant_verse,omitempty"`
	OrangeMoneyFinal   *float64     `json:"orange_money_final,omitempty"`
	MTNMoneyFinal      *float64     `json:"mtn_money_final,omitempty"`
	Shortfall          *float64     `json:"manquant,omitempty"`
	SalesValue         *float64     `json:"valeur_vente,omitempty"`
	State              SessionState `json:"statut"`
	ClosedBy           *int64       `json:"fermee_par,omitempty"`
	OpenedAt           time.Time    `json:"date_ouverture"`
	ClosedAt           *time.Time   `json:"date_fermeture,omitempty"`
	SyncMeta
}
