package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"meetgo/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence contract the meetup manager depends on.
// Implementations must make ConfirmParty and ResolveSession atomic so two
// participants confirming near-simultaneously cannot clobber each other.
type Storage interface {
	CreateSession(session *models.MeetupSession) error
	GetSessionByID(id string) (*models.MeetupSession, error)
	FindPendingBetween(userA, userB string) (*models.MeetupSession, error)
	FindPendingForAddressee(userID string) ([]models.PendingRequest, error)

	ConfirmParty(sessionID string, party models.Party, loc models.Location) (*models.MeetupSession, bool, error)
	ResolveSession(sessionID string, final models.SessionStatus, proximitySuccessful *bool, from ...models.SessionStatus) (bool, error)

	GetUserByID(userID string) (*models.User, error)

	PublishSessionUpdate(update models.SessionUpdate) error

	TrackActiveSession(sessionID string) error
	UntrackActiveSession(sessionID string) error
	ActiveSessionIDs() ([]string, error)

	ExpireStalePending(olderThan time.Duration) (int64, error)
}

const (
	updatesChannel   = "meetup:updates"
	activeSessionSet = "active_meetups"
)

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateSession inserts a new meetup session. The partial unique index on the
// normalized user pair rejects a second pending session for the same pair;
// callers handle the conflict by re-reading the winner.
func (s *Service) CreateSession(session *models.MeetupSession) error {
	if err := s.DB.Create(session).Error; err != nil {
		log.Printf("ERROR: Failed to create meetup session between %s and %s: %v",
			session.RequesterID, session.AddresseeID, err)
		return err
	}
	return nil
}

// GetSessionByID returns the session or nil when the id is unknown.
func (s *Service) GetSessionByID(id string) (*models.MeetupSession, error) {
	var session models.MeetupSession
	err := s.DB.Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get session %s: %v", id, err)
		return nil, err
	}
	return &session, nil
}

// FindPendingBetween looks for a pending session between the unordered pair.
// Both column orders are checked; either user may have been the requester.
func (s *Service) FindPendingBetween(userA, userB string) (*models.MeetupSession, error) {
	var session models.MeetupSession
	err := s.DB.Where("status = ?", models.StatusPending).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userA, userB, userB, userA).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindPendingForAddressee returns the incoming meetup requests awaiting a
// decision from userID, newest first, with the requester's username joined in.
func (s *Service) FindPendingForAddressee(userID string) ([]models.PendingRequest, error) {
	rawSQL := `
        SELECT
            ms.id         AS session_id,
            ms.requester_id,
            u.username    AS requester_name,
            ms.created_at
        FROM meetup_sessions ms
        JOIN users u ON u.id = ms.requester_id
        WHERE ms.addressee_id = ? AND ms.status = ?
        ORDER BY ms.created_at DESC
    `

	var requests []models.PendingRequest
	if err := s.DB.Raw(rawSQL, userID, models.StatusPending).Scan(&requests).Error; err != nil {
		log.Printf("ERROR: Failed to load pending requests for %s: %v", userID, err)
		return nil, err
	}
	return requests, nil
}

// ConfirmParty records one party's confirmation and location in a single
// conditional update, then re-reads the row inside the same transaction so the
// caller always evaluates a consistent post-write snapshot. The update only
// applies while the session is still pending; applied=false means it was not.
func (s *Service) ConfirmParty(sessionID string, party models.Party, loc models.Location) (*models.MeetupSession, bool, error) {
	var session models.MeetupSession
	var applied bool

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{}
		if party == models.PartyRequester {
			fields["requester_confirmed"] = true
			fields["requester_lat"] = loc.Latitude
			fields["requester_lon"] = loc.Longitude
		} else {
			fields["addressee_confirmed"] = true
			fields["addressee_lat"] = loc.Latitude
			fields["addressee_lon"] = loc.Longitude
		}

		res := tx.Model(&models.MeetupSession{}).
			Where("id = ? AND status = ?", sessionID, models.StatusPending).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		applied = res.RowsAffected > 0

		return tx.Where("id = ?", sessionID).First(&session).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err != nil {
		log.Printf("ERROR: Failed to confirm %s on session %s: %v", party, sessionID, err)
		return nil, false, err
	}
	return &session, applied, nil
}

// ResolveSession moves a session into a terminal status with a compare-and-set
// on the current status. Concurrent resolvers race for a single winner;
// applied=false means another writer got there first or the transition is not
// allowed from the session's current state.
func (s *Service) ResolveSession(sessionID string, final models.SessionStatus, proximitySuccessful *bool, from ...models.SessionStatus) (bool, error) {
	fields := map[string]interface{}{
		"status":       final,
		"completed_at": gorm.Expr("NOW()"),
	}
	if proximitySuccessful != nil {
		fields["proximity_successful"] = *proximitySuccessful
	}

	res := s.DB.Model(&models.MeetupSession{}).
		Where("id = ? AND status IN ?", sessionID, from).
		Updates(fields)
	if res.Error != nil {
		log.Printf("ERROR: Failed to resolve session %s to %s: %v", sessionID, final, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// PublishSessionUpdate broadcasts a lifecycle change over Redis Pub/Sub.
func (s *Service) PublishSessionUpdate(update models.SessionUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}

	if err := s.Redis.Publish(s.Ctx, updatesChannel, string(payload)).Err(); err != nil {
		return err
	}

	return nil
}

// SubscribeSessionUpdates subscribes to the session update broadcast channel.
// Consumers (websocket push, ops notifier) read from the returned PubSub.
func (s *Service) SubscribeSessionUpdates() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, updatesChannel)
}

// TrackActiveSession adds a session id to the Redis set of open sessions.
func (s *Service) TrackActiveSession(sessionID string) error {
	return s.Redis.SAdd(s.Ctx, activeSessionSet, sessionID).Err()
}

// UntrackActiveSession removes a session id from the open-session set.
func (s *Service) UntrackActiveSession(sessionID string) error {
	return s.Redis.SRem(s.Ctx, activeSessionSet, sessionID).Err()
}

// ActiveSessionIDs returns all session ids currently tracked as open.
func (s *Service) ActiveSessionIDs() ([]string, error) {
	return s.Redis.SMembers(s.Ctx, activeSessionSet).Result()
}

// ExpireStalePending resolves pending sessions older than olderThan to ended.
// Used by the admin sweep; the server itself never expires sessions.
func (s *Service) ExpireStalePending(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	res := s.DB.Model(&models.MeetupSession{}).
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":       models.StatusEnded,
			"completed_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		log.Printf("ERROR: Failed to expire stale pending sessions: %v", res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
