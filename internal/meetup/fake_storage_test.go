package meetup_test

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"meetgo/backend/internal/models"

	"github.com/google/uuid"
)

// fakeStorage is a stateful in-memory stand-in for the real store. It mirrors
// the semantics the manager relies on: conditional updates, the unique
// pending-pair constraint, and snapshot copies on every read.
type fakeStorage struct {
	mu       sync.Mutex
	sessions map[string]*models.MeetupSession
	users    map[string]*models.User
	active   map[string]bool
	updates  []models.SessionUpdate
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		sessions: make(map[string]*models.MeetupSession),
		users:    make(map[string]*models.User),
		active:   make(map[string]bool),
	}
}

func (f *fakeStorage) addUser(id, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &models.User{ID: id, Username: username}
}

func copySession(s *models.MeetupSession) *models.MeetupSession {
	c := *s
	return &c
}

func (f *fakeStorage) CreateSession(session *models.MeetupSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.sessions {
		if existing.Status != models.StatusPending {
			continue
		}
		samePair := (existing.RequesterID == session.RequesterID && existing.AddresseeID == session.AddresseeID) ||
			(existing.RequesterID == session.AddresseeID && existing.AddresseeID == session.RequesterID)
		if samePair {
			return fmt.Errorf("duplicate pending session for pair %s/%s",
				session.RequesterID, session.AddresseeID)
		}
	}

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	f.sessions[session.ID] = copySession(session)
	return nil
}

func (f *fakeStorage) GetSessionByID(id string) (*models.MeetupSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(session), nil
}

func (f *fakeStorage) FindPendingBetween(userA, userB string) (*models.MeetupSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, session := range f.sessions {
		if session.Status != models.StatusPending {
			continue
		}
		if (session.RequesterID == userA && session.AddresseeID == userB) ||
			(session.RequesterID == userB && session.AddresseeID == userA) {
			return copySession(session), nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) FindPendingForAddressee(userID string) ([]models.PendingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var requests []models.PendingRequest
	for _, session := range f.sessions {
		if session.Status != models.StatusPending || session.AddresseeID != userID {
			continue
		}
		name := ""
		if user, ok := f.users[session.RequesterID]; ok {
			name = user.Username
		}
		requests = append(requests, models.PendingRequest{
			SessionID:     session.ID,
			RequesterID:   session.RequesterID,
			RequesterName: name,
			CreatedAt:     session.CreatedAt,
		})
	}
	return requests, nil
}

func (f *fakeStorage) ConfirmParty(sessionID string, party models.Party, loc models.Location) (*models.MeetupSession, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, false, errors.New("record not found")
	}

	applied := session.Status == models.StatusPending
	if applied {
		lat, lon := loc.Latitude, loc.Longitude
		if party == models.PartyRequester {
			session.RequesterConfirmed = true
			session.RequesterLat = &lat
			session.RequesterLon = &lon
		} else {
			session.AddresseeConfirmed = true
			session.AddresseeLat = &lat
			session.AddresseeLon = &lon
		}
	}
	return copySession(session), applied, nil
}

func (f *fakeStorage) ResolveSession(sessionID string, final models.SessionStatus, proximitySuccessful *bool, from ...models.SessionStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[sessionID]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, status := range from {
		if session.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}

	session.Status = final
	if proximitySuccessful != nil {
		v := *proximitySuccessful
		session.ProximitySuccessful = &v
	}
	now := time.Now()
	session.CompletedAt = &now
	return true, nil
}

func (f *fakeStorage) GetUserByID(userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	c := *user
	return &c, nil
}

func (f *fakeStorage) PublishSessionUpdate(update models.SessionUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeStorage) TrackActiveSession(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[sessionID] = true
	return nil
}

func (f *fakeStorage) UntrackActiveSession(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, sessionID)
	return nil
}

func (f *fakeStorage) ActiveSessionIDs() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.active {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStorage) ExpireStalePending(olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var count int64
	for _, session := range f.sessions {
		if session.Status == models.StatusPending && session.CreatedAt.Before(cutoff) {
			session.Status = models.StatusEnded
			now := time.Now()
			session.CompletedAt = &now
			count++
		}
	}
	return count, nil
}
