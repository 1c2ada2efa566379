package telemetry

import "time"

// Event types emitted by the API.
const (
	EventSignedUp        = "auth.signed_up"
	EventSignedIn        = "auth.signed_in"
	EventSignInFailed    = "auth.signin_failed"
	EventRefreshed       = "auth.refreshed"
	EventRefreshRejected = "auth.refresh_rejected"
	EventLoggedOut       = "auth.logged_out"
	EventSleepCreated    = "sleep.created"
	EventSleepUpdated    = "sleep.updated"
	EventSleepDeleted    = "sleep.deleted"
	EventSleepRejected   = "sleep.rejected"
	EventTaskCreated     = "task.created"
	EventLogCreated      = "log.created"
	EventUserDeleted     = "admin.user_deleted"
)

// Event is a domain event. UserID is 0 when the actor is unknown.
type Event struct {
	Type      string            `json:"type"`
	UserID    int64             `json:"user_id,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewEvent returns an event of the given type stamped with the current UTC time.
func NewEvent(eventType string, userID int64, metadata map[string]string) *Event {
	return &Event{
		Type:      eventType,
		UserID:    userID,
		Source:    "api",
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}
