package models

import "time"

// SessionSnapshot is the full session view returned by the status operation.
// The polling client calls this repeatedly and treats it as the source of truth.
type SessionSnapshot struct {
	SessionID           string        `json:"session_id"`
	RequesterID         string        `json:"requester_id"`
	AddresseeID         string        `json:"addressee_id"`
	Status              SessionStatus `json:"status"`
	RequesterConfirmed  bool          `json:"requester_confirmed"`
	AddresseeConfirmed  bool          `json:"addressee_confirmed"`
	ProximitySuccessful *bool         `json:"proximity_successful,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	CompletedAt         *time.Time    `json:"completed_at,omitempty"`
}

// ConfirmedByUser reports whether the given participant has already confirmed.
func (s SessionSnapshot) ConfirmedByUser(userID string) bool {
	if userID == s.RequesterID {
		return s.RequesterConfirmed
	}
	if userID == s.AddresseeID {
		return s.AddresseeConfirmed
	}
	return false
}

// SessionUpdate is published over Redis Pub/Sub whenever a session changes
// state. It feeds the websocket push channel and the ops notifier.
type SessionUpdate struct {
	SessionID   string        `json:"session_id"`
	RequesterID string        `json:"requester_id"`
	AddresseeID string        `json:"addressee_id"`
	Status      SessionStatus `json:"status"`
	// DistanceFeet is present only when the update carries a proximity result.
	DistanceFeet *float64  `json:"distance_feet,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// PendingRequest is one row of the incoming-requests feed for an addressee.
type PendingRequest struct {
	SessionID     string    `json:"session_id"`
	RequesterID   string    `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
	CreatedAt     time.Time `json:"created_at"`
}
