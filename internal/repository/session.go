package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
)

type SessionRepository interface {
	Create(key entity.SessionKey, now time.Time) (*entity.GameSession, error)
	Get(key entity.SessionKey) (*entity.GameSession, error)
	Remove(key entity.SessionKey)
	Touch(key entity.SessionKey, now time.Time)

	// Lock - serializes read-modify-write on one key, distinct keys do not block each other.
	Lock(key entity.SessionKey) (unlock func())

	Expired(idleSince time.Time) []entity.SessionKey
	Len() int
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// memSessions - volatile store, sessions live for the process lifetime at most.
type memSessions struct {
	mu       sync.RWMutex
	sessions map[entity.SessionKey]*entity.GameSession
	lastSeen map[entity.SessionKey]time.Time

	locksMu sync.Mutex
	locks   map[entity.SessionKey]*keyLock
}

func NewSessionRepository() SessionRepository {
	return &memSessions{
		sessions: make(map[entity.SessionKey]*entity.GameSession),
		lastSeen: make(map[entity.SessionKey]time.Time),
		locks:    make(map[entity.SessionKey]*keyLock),
	}
}

func (that *memSessions) Create(key entity.SessionKey, now time.Time) (*entity.GameSession, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[key]; ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionAlreadyExists, key)
	}

	session := entity.NewGameSession(key, now)
	that.sessions[key] = session
	that.lastSeen[key] = now

	return session, nil
}

func (that *memSessions) Get(key entity.SessionKey) (*entity.GameSession, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, key)
	}

	return session, nil
}

func (that *memSessions) Remove(key entity.SessionKey) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, key)
	delete(that.lastSeen, key)
}

// Touch - records activity on a live session, unknown keys are ignored.
func (that *memSessions) Touch(key entity.SessionKey, now time.Time) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[key]; ok {
		that.lastSeen[key] = now
	}
}

func (that *memSessions) Lock(key entity.SessionKey) func() {
	that.locksMu.Lock()
	lock, ok := that.locks[key]
	if !ok {
		lock = &keyLock{}
		that.locks[key] = lock
	}
	lock.refs++
	that.locksMu.Unlock()

	lock.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			lock.mu.Unlock()

			that.locksMu.Lock()
			lock.refs--
			if lock.refs == 0 {
				delete(that.locks, key)
			}
			that.locksMu.Unlock()
		})
	}
}

// Expired - keys of sessions not updated since idleSince.
func (that *memSessions) Expired(idleSince time.Time) []entity.SessionKey {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var keys []entity.SessionKey
	for key, seen := range that.lastSeen {
		if seen.Before(idleSince) {
			keys = append(keys, key)
		}
	}

	return keys
}

func (that *memSessions) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}
