package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatus is the lifecycle state of a meetup session.
type SessionStatus string

const (
	StatusPending         SessionStatus = "pending"
	StatusCompleted       SessionStatus = "completed"
	StatusFailedProximity SessionStatus = "failed_proximity"
	StatusDenied          SessionStatus = "denied"
	StatusEnded           SessionStatus = "ended"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s SessionStatus) IsTerminal() bool {
	return s != StatusPending
}

// Party identifies which side of a session a user is on.
type Party string

const (
	PartyRequester Party = "requester"
	PartyAddressee Party = "addressee"
)

// Location is a GPS coordinate pair captured at confirmation time.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MeetupSession represents an in-person-verification handshake between two users.
// It holds the per-party confirmation state and the outcome of the proximity check.
type MeetupSession struct {
	// ID is the unique identifier for the session (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// RequesterID is the user who initiated the meetup request.
	RequesterID string `gorm:"index" json:"requester_id"`
	// AddresseeID is the user the request was sent to.
	AddresseeID string `gorm:"index" json:"addressee_id"`
	// Status is the current lifecycle state. Transitions are one-directional;
	// a terminal status is never left.
	Status SessionStatus `gorm:"index" json:"status"`

	RequesterConfirmed bool `json:"requester_confirmed"`
	AddresseeConfirmed bool `json:"addressee_confirmed"`

	// Locations are set together with the owning party's confirmation flag
	// and are immutable for the rest of the session.
	RequesterLat *float64 `json:"requester_lat,omitempty"`
	RequesterLon *float64 `json:"requester_lon,omitempty"`
	AddresseeLat *float64 `json:"addressee_lat,omitempty"`
	AddresseeLon *float64 `json:"addressee_lon,omitempty"`

	// ProximitySuccessful is set only once both parties confirmed and the
	// distance check ran. Nil while the session is pending.
	ProximitySuccessful *bool `json:"proximity_successful,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is stamped on the transition into a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// BeforeCreate generates a new UUID for the session if the ID is not set yet.
func (m *MeetupSession) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// PartyOf returns which side of the session userID is on, or false if the
// user is not a participant.
func (m *MeetupSession) PartyOf(userID string) (Party, bool) {
	switch userID {
	case m.RequesterID:
		return PartyRequester, true
	case m.AddresseeID:
		return PartyAddressee, true
	}
	return "", false
}

// ConfirmedBy reports whether the given party has confirmed.
func (m *MeetupSession) ConfirmedBy(p Party) bool {
	if p == PartyRequester {
		return m.RequesterConfirmed
	}
	return m.AddresseeConfirmed
}

// BothConfirmed reports whether both parties recorded their confirmation.
func (m *MeetupSession) BothConfirmed() bool {
	return m.RequesterConfirmed && m.AddresseeConfirmed
}

// Snapshot converts the stored record into the read-only view served to
// participants by the status endpoint.
func (m *MeetupSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		SessionID:           m.ID,
		RequesterID:         m.RequesterID,
		AddresseeID:         m.AddresseeID,
		Status:              m.Status,
		RequesterConfirmed:  m.RequesterConfirmed,
		AddresseeConfirmed:  m.AddresseeConfirmed,
		ProximitySuccessful: m.ProximitySuccessful,
		CreatedAt:           m.CreatedAt,
		CompletedAt:         m.CompletedAt,
	}
}
