package poller

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"meetgo/backend/internal/config"
	"meetgo/backend/internal/models"
)

// Card names the view a client should render for its active session.
type Card string

const (
	// CardNone means no meetup view is active.
	CardNone Card = ""
	// CardConfirmPrompt asks the user for their own confirmation.
	CardConfirmPrompt Card = "confirm_prompt"
	// CardWaiting shows that the user confirmed and the other party has not.
	CardWaiting Card = "waiting"
	// CardSessionActive shows a completed, proximity-verified meetup.
	CardSessionActive Card = "session_active"
)

// ViewState is the serializable client-side hint of what to render. It is
// derived, disposable state: Reconcile always re-queries the server before
// the hint is trusted.
type ViewState struct {
	ActiveSessionID string    `json:"active_session_id"`
	ActiveCard      Card      `json:"active_card"`
	SavedAt         time.Time `json:"saved_at"`
}

// Store persists a ViewState across client restarts.
type Store interface {
	Save(state ViewState) error
	Load() (*ViewState, error)
	Clear() error
}

// MemoryStore keeps the view state in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	state *ViewState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(state ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state
	return nil
}

func (s *MemoryStore) Load() (*ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, nil
	}
	st := *s.state
	return &st, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}

// FileStore persists the view state as a JSON file so it survives restarts.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Save(state ViewState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, payload, 0o600)
}

func (s *FileStore) Load() (*ViewState, error) {
	payload, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state ViewState
	if err := json.Unmarshal(payload, &state); err != nil {
		// A corrupt cache is just a lost hint, not an error.
		_ = s.Clear()
		return nil, nil
	}
	return &state, nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Reconcile loads the cached view state and validates it against a fresh
// status call. States older than one hour are discarded without a server
// round trip. A terminal status clears the cache; an open one re-derives the
// card from the snapshot and re-saves it. The caller restarts polling when
// the returned card is CardWaiting.
func Reconcile(store Store, userID string, fetcher StatusFetcher) (*ViewState, *models.SessionSnapshot, error) {
	cached, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	if cached == nil {
		return nil, nil, nil
	}

	if time.Since(cached.SavedAt) > config.ViewStateMaxAge {
		if err := store.Clear(); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	}

	if cached.ActiveSessionID == "" {
		return cached, nil, nil
	}

	snapshot, err := fetcher.SessionStatus(cached.ActiveSessionID, userID)
	if err != nil {
		// The session is gone or unreachable; the hint is worthless.
		_ = store.Clear()
		return nil, nil, err
	}

	switch snapshot.Status {
	case models.StatusPending:
		card := CardConfirmPrompt
		if snapshot.ConfirmedByUser(userID) {
			card = CardWaiting
		}
		fresh := ViewState{
			ActiveSessionID: cached.ActiveSessionID,
			ActiveCard:      card,
			SavedAt:         time.Now(),
		}
		if err := store.Save(fresh); err != nil {
			return nil, snapshot, err
		}
		return &fresh, snapshot, nil

	case models.StatusCompleted:
		fresh := ViewState{
			ActiveSessionID: cached.ActiveSessionID,
			ActiveCard:      CardSessionActive,
			SavedAt:         time.Now(),
		}
		if err := store.Save(fresh); err != nil {
			return nil, snapshot, err
		}
		return &fresh, snapshot, nil

	default:
		// failed_proximity, denied, ended: nothing left to resume.
		if err := store.Clear(); err != nil {
			return nil, snapshot, err
		}
		return nil, snapshot, nil
	}
}
