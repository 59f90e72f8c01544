package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Create(t *testing.T) {
	t.Run("Creates a fresh session", func(t *testing.T) {
		sessionRepo := NewSessionRepository()
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		key := entity.NewSessionKey(1, 10)

		// When: Create is called
		session, err := sessionRepo.Create(key, now)

		// Then: the session starts empty with the player to move
		require.NoError(t, err)
		assert.Equal(t, &entity.GameSession{
			Key:       key,
			Board:     entity.Board{},
			Turn:      entity.TurnPlayer,
			CreatedAt: now,
			UpdatedAt: now,
		}, session)
		assert.Equal(t, 1, sessionRepo.Len())
	})

	t.Run("Error on duplicate key", func(t *testing.T) {
		sessionRepo := NewSessionRepository()
		key := entity.NewSessionKey(1, 10)

		_, err := sessionRepo.Create(key, time.Now())
		require.NoError(t, err)

		// When: the same key is created again
		_, err = sessionRepo.Create(key, time.Now())

		// Then: ErrSessionAlreadyExists is returned
		require.ErrorIs(t, err, apperror.ErrSessionAlreadyExists)
		assert.Equal(t, 1, sessionRepo.Len())
	})
}

func TestSessionRepository_GetRemove(t *testing.T) {
	sessionRepo := NewSessionRepository()
	key := entity.NewSessionKey(2, 20)

	// Given: a missing key
	_, err := sessionRepo.Get(key)
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)

	created, err := sessionRepo.Create(key, time.Now())
	require.NoError(t, err)

	// When: Get is called for an existing key
	got, err := sessionRepo.Get(key)

	// Then: the live session is returned
	require.NoError(t, err)
	assert.Same(t, created, got)

	// When: the session is removed
	sessionRepo.Remove(key)

	// Then: it is no longer queryable, removing again is harmless
	_, err = sessionRepo.Get(key)
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	sessionRepo.Remove(key)
	assert.Equal(t, 0, sessionRepo.Len())
}

func TestSessionRepository_Expired(t *testing.T) {
	sessionRepo := NewSessionRepository()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	idle := entity.NewSessionKey(1, 1)
	active := entity.NewSessionKey(1, 2)

	_, err := sessionRepo.Create(idle, start)
	require.NoError(t, err)
	_, err = sessionRepo.Create(active, start)
	require.NoError(t, err)

	// Given: only one session saw activity later
	sessionRepo.Touch(active, start.Add(time.Hour))
	sessionRepo.Touch(entity.NewSessionKey(9, 9), start.Add(time.Hour))

	// When: asking for sessions idle since 30 minutes after start
	expired := sessionRepo.Expired(start.Add(30 * time.Minute))

	// Then: only the idle one is reported
	assert.Equal(t, []entity.SessionKey{idle}, expired)
	assert.Equal(t, 2, sessionRepo.Len())
}

func TestSessionRepository_Lock(t *testing.T) {
	t.Run("Serializes read-modify-write on the same key", func(t *testing.T) {
		sessionRepo := NewSessionRepository()
		key := entity.NewSessionKey(3, 30)

		_, err := sessionRepo.Create(key, time.Now())
		require.NoError(t, err)

		const workers = 50
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)

		// When: many goroutines race to fill the same cell
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()

				unlock := sessionRepo.Lock(key)
				defer unlock()

				session, err := sessionRepo.Get(key)
				if err != nil {
					return
				}

				board, err := entity.ApplyMove(session.Board, entity.Coord{Row: 0, Col: 0}, entity.PlayerMark)
				if err != nil {
					return
				}
				session.Board = board

				mu.Lock()
				accepted++
				mu.Unlock()
			}()
		}
		wg.Wait()

		// Then: exactly one of them wins the cell
		assert.Equal(t, 1, accepted)
	})

	t.Run("Distinct keys do not block each other", func(t *testing.T) {
		sessionRepo := NewSessionRepository()

		// Given: key A is held
		unlockA := sessionRepo.Lock(entity.NewSessionKey(1, 1))
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlockB := sessionRepo.Lock(entity.NewSessionKey(1, 2))
			unlockB()
			close(done)
		}()

		// Then: key B is acquired anyway
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on a distinct key was blocked")
		}
	})

	t.Run("Unlock is idempotent and releases the key", func(t *testing.T) {
		sessionRepo := NewSessionRepository()
		key := entity.NewSessionKey(4, 40)

		unlock := sessionRepo.Lock(key)
		unlock()
		unlock()

		// Then: the key can be locked again
		relock := sessionRepo.Lock(key)
		relock()

		memRepo, ok := sessionRepo.(*memSessions)
		require.True(t, ok)
		assert.Empty(t, memRepo.locks)
	})
}
