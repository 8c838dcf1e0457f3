package meetup_test

import (
	"time"

	"meetgo/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateSession(session *models.MeetupSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockStorage) GetSessionByID(id string) (*models.MeetupSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetupSession), args.Error(1)
}

func (m *MockStorage) FindPendingBetween(userA, userB string) (*models.MeetupSession, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetupSession), args.Error(1)
}

func (m *MockStorage) FindPendingForAddressee(userID string) ([]models.PendingRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingRequest), args.Error(1)
}

func (m *MockStorage) ConfirmParty(sessionID string, party models.Party, loc models.Location) (*models.MeetupSession, bool, error) {
	args := m.Called(sessionID, party, loc)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.MeetupSession), args.Bool(1), args.Error(2)
}

func (m *MockStorage) ResolveSession(sessionID string, final models.SessionStatus, proximitySuccessful *bool, from ...models.SessionStatus) (bool, error) {
	args := m.Called(sessionID, final, proximitySuccessful, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetUserByID(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) PublishSessionUpdate(update models.SessionUpdate) error {
	args := m.Called(update)
	return args.Error(0)
}

func (m *MockStorage) TrackActiveSession(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockStorage) UntrackActiveSession(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockStorage) ActiveSessionIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) ExpireStalePending(olderThan time.Duration) (int64, error) {
	args := m.Called(olderThan)
	return args.Get(0).(int64), args.Error(1)
}
