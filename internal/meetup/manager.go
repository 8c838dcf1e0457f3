package meetup

import (
	"fmt"
	"log"
	"time"

	"meetgo/backend/internal/models"
	"meetgo/backend/internal/storage"
)

// Manager enforces the proximity-gated handshake protocol. All state lives in
// the storage layer; every call is a short-lived operation against durable
// records, so concurrent confirmations are resolved by the store's atomic
// conditional updates rather than in-process locks.
type Manager struct {
	Storage storage.Storage
}

// NewManager creates a new session manager on top of the given store.
func NewManager(s storage.Storage) *Manager {
	return &Manager{Storage: s}
}

// ConfirmResult is what a participant gets back from Confirm. While the other
// party has not confirmed yet, Status stays pending and DistanceFeet is nil.
type ConfirmResult struct {
	Status       models.SessionStatus
	DistanceFeet *float64
}

// Request initiates a meetup between two distinct users. If a pending session
// between the pair already exists (in either direction), the caller joins it
// instead of creating a duplicate.
func (m *Manager) Request(requesterID, addresseeID string) (*models.MeetupSession, error) {
	if requesterID == "" || addresseeID == "" || requesterID == addresseeID {
		return nil, ErrInvalidRequest
	}

	existing, err := m.Storage.FindPendingBetween(requesterID, addresseeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("Joining existing meetup session %s between %s and %s",
			existing.ID, requesterID, addresseeID)
		return existing, nil
	}

	session := &models.MeetupSession{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.StatusPending,
	}
	if err := m.Storage.CreateSession(session); err != nil {
		// A concurrent Request for the same pair may have won the insert race
		// against the unique pending-pair index. Join that session instead.
		winner, findErr := m.Storage.FindPendingBetween(requesterID, addresseeID)
		if findErr == nil && winner != nil {
			log.Printf("Lost insert race for pair %s/%s, joining session %s",
				requesterID, addresseeID, winner.ID)
			return winner, nil
		}
		return nil, err
	}

	if err := m.Storage.TrackActiveSession(session.ID); err != nil {
		log.Printf("WARNING: Failed to track session %s as active: %v", session.ID, err)
	}
	m.publish(session, nil)

	log.Printf("Created meetup session %s between %s and %s", session.ID, requesterID, addresseeID)
	return session, nil
}

// Confirm records the calling party's confirmation and location. When the
// second confirmation lands, the proximity check runs against the fresh
// post-write snapshot and the session resolves to completed or
// failed_proximity. Confirming again only re-sets the caller's own
// flag and location; it never counts for the other party.
func (m *Manager) Confirm(sessionID, userID string, loc models.Location) (*ConfirmResult, error) {
	session, err := m.Storage.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	party, ok := session.PartyOf(userID)
	if !ok {
		return nil, ErrForbidden
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionClosed
	}

	updated, applied, err := m.Storage.ConfirmParty(sessionID, party, loc)
	if err != nil {
		return nil, err
	}
	if !applied {
		// The session left pending between our read and the write.
		return nil, ErrSessionClosed
	}

	if !updated.BothConfirmed() {
		log.Printf("Session %s: %s confirmed, waiting for other party", sessionID, party)
		return &ConfirmResult{Status: models.StatusPending}, nil
	}

	return m.resolveProximity(updated)
}

// resolveProximity runs the distance check on a both-confirmed session and
// moves it to its terminal status. Only one of the racing confirmers wins the
// conditional update; the loser reports the winner's (identical) outcome.
func (m *Manager) resolveProximity(session *models.MeetupSession) (*ConfirmResult, error) {
	if session.RequesterLat == nil || session.RequesterLon == nil ||
		session.AddresseeLat == nil || session.AddresseeLon == nil {
		return nil, fmt.Errorf("session %s confirmed by both parties but locations are missing", session.ID)
	}

	distance := DistanceFeet(
		models.Location{Latitude: *session.RequesterLat, Longitude: *session.RequesterLon},
		models.Location{Latitude: *session.AddresseeLat, Longitude: *session.AddresseeLon},
	)
	success := WithinProximity(distance)
	final := models.StatusFailedProximity
	if success {
		final = models.StatusCompleted
	}
	log.Printf("Session %s proximity check: %.2f ft, success=%v", session.ID, distance, success)

	applied, err := m.Storage.ResolveSession(session.ID, final, &success, models.StatusPending)
	if err != nil {
		return nil, err
	}

	status := final
	if applied {
		session.Status = final
		if err := m.Storage.UntrackActiveSession(session.ID); err != nil {
			log.Printf("WARNING: Failed to untrack session %s: %v", session.ID, err)
		}
		m.publish(session, &distance)
	} else {
		// The other party's confirm resolved the session first. Report the
		// stored outcome, which was computed from the same two locations.
		current, err := m.Storage.GetSessionByID(session.ID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			status = current.Status
		}
	}

	return &ConfirmResult{Status: status, DistanceFeet: &distance}, nil
}

// Deny declines a pending session. Either participant may deny.
func (m *Manager) Deny(sessionID, userID string) error {
	return m.close(sessionID, userID, models.StatusDenied, models.StatusPending)
}

// End terminates a session. Allowed from pending and from completed: an
// active, confirmed meetup can be manually ended by either party.
func (m *Manager) End(sessionID, userID string) error {
	return m.close(sessionID, userID, models.StatusEnded, models.StatusPending, models.StatusCompleted)
}

func (m *Manager) close(sessionID, userID string, final models.SessionStatus, from ...models.SessionStatus) error {
	session, err := m.Storage.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNotFound
	}
	if _, ok := session.PartyOf(userID); !ok {
		return ErrForbidden
	}

	applied, err := m.Storage.ResolveSession(sessionID, final, nil, from...)
	if err != nil {
		return err
	}
	if !applied {
		return ErrSessionClosed
	}

	session.Status = final
	if err := m.Storage.UntrackActiveSession(sessionID); err != nil {
		log.Printf("WARNING: Failed to untrack session %s: %v", sessionID, err)
	}
	m.publish(session, nil)

	log.Printf("Session %s resolved to %s by user %s", sessionID, final, userID)
	return nil
}

// Status returns the full session snapshot for a participant. This is the
// operation the polling client calls repeatedly.
func (m *Manager) Status(sessionID, userID string) (*models.SessionSnapshot, error) {
	session, err := m.Storage.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if _, ok := session.PartyOf(userID); !ok {
		return nil, ErrForbidden
	}

	snapshot := session.Snapshot()
	return &snapshot, nil
}

// PendingFor lists the sessions where userID is the addressee and a decision
// is still outstanding.
func (m *Manager) PendingFor(userID string) ([]models.PendingRequest, error) {
	return m.Storage.FindPendingForAddressee(userID)
}

// publish broadcasts a lifecycle change. Delivery is best-effort; a publish
// failure never fails the operation that caused it.
func (m *Manager) publish(session *models.MeetupSession, distanceFeet *float64) {
	update := models.SessionUpdate{
		SessionID:    session.ID,
		RequesterID:  session.RequesterID,
		AddresseeID:  session.AddresseeID,
		Status:       session.Status,
		DistanceFeet: distanceFeet,
		OccurredAt:   time.Now(),
	}
	if err := m.Storage.PublishSessionUpdate(update); err != nil {
		log.Printf("WARNING: Failed to publish update for session %s: %v", session.ID, err)
	}
}
