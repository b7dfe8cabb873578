package model

import "time"

// AuditLog records an admin or system action for traceability. ActorID is
// nil for system actors (webhooks, jobs). Metadata holds an action-specific
// JSON document (old/new values, gateway ids).
type AuditLog struct {
	ID        int64     `json:"id"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	ActorRole string    `json:"actor_role"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  *int64    `json:"entity_id,omitempty"`
	Metadata  []byte    `json:"metadata,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
