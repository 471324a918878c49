// Package api defines the wire types exchanged with the remote sync server.
// Collection names on the wire are the server's table names.
package api

import (
	"github.com/easygest/bp/internal/models"
)

// PushRequest is the body for POST /sync/push. Every field is an array,
// possibly empty; the dependent inventaire_details collection is empty on
// the first pass and carries the re-linked lines on the second.
type PushRequest struct {
	Receptions     []models.Reception     `json:"receptions"`
	Returns        []models.Return        `json:"retours"`
	Inventories    []models.Inventory     `json:"inventaires"`
	InventoryLines []models.InventoryLine `json:"inventaire_details"`
	Sessions       []models.SaleSession   `json:"sessions"`
}

// Empty reports whether the request carries no records at all.
func (r *PushRequest) Empty() bool {
	return len(r.Receptions) == 0 && len(r.Returns) == 0 &&
		len(r.Inventories) == 0 && len(r.InventoryLines) == 0 && len(r.Sessions) == 0
}

// SyncedRecord is the server's per-record acceptance verdict. The server
// echoes local_id when the record was created offline, otherwise the raw id.
type SyncedRecord struct {
	Table    string `json:"table"`
	ID       int64  `json:"id,omitempty"`
	LocalID  string `json:"local_id,omitempty"`
	ServerID int64  `json:"server_id"`
}

// ConflictRecord is the server's per-record rejection verdict.
type ConflictRecord struct {
	Table   string `json:"table"`
	ID      int64  `json:"id,omitempty"`
	LocalID string `json:"local_id,omitempty"`
	Reason  string `json:"reason"`
}

// PushResponse is the response from POST /sync/push. A batch-level
// Success=false does not mean every record failed; Synced and Conflicts
// carry the per-record verdicts and must always be inspected.
type PushResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message,omitempty"`
	Synced    []SyncedRecord   `json:"synced"`
	Conflicts []ConflictRecord `json:"conflicts"`
}

// PullData is the per-collection payload of a pull.
type PullData struct {
	Users         []models.User         `json:"users"`
	Products      []models.Product      `json:"produits"`
	ActiveSellers []models.ActiveSeller `json:"vendeurs_actifs"`
	Receptions    []models.Reception    `json:"receptions_pointeur"`
	Returns       []models.Return       `json:"retours_produits"`
	SaleSessions  []models.SaleSession  `json:"sessions_vente"`
}

// PullResponse is the response from GET /sync/pull.
type PullResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    PullData `json:"data"`
}

// TableIDs acknowledges receipt of one pulled collection.
type TableIDs struct {
	Table string  `json:"table"`
	IDs   []int64 `json:"ids"`
}

// AckRequest is the body for POST /sync/ack.
type AckRequest struct {
	SyncedData []TableIDs `json:"synced_data"`
}

// AckResponse is the response from POST /sync/ack.
type AckResponse struct {
	Success bool `json:"success"`
}
