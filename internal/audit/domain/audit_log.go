package domain

import "time"

// AuditLog represents an audit event. UserID is 0 when the actor is unknown (e.g. a failed sign-in).
type AuditLog struct {
	ID        string
	UserID    int64
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
