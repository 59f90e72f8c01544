package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/repository"
)

func TestSweeper_Sweep(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Removes only idle sessions", func(t *testing.T) {
		sessions := repository.NewSessionRepository()
		sweeper := NewSweeper(logger, sessions, 10*time.Minute, time.Minute)

		idle := entity.NewSessionKey(1, 1)
		active := entity.NewSessionKey(1, 2)

		// Given: two sessions, one of them played recently
		_, err := sessions.Create(idle, start)
		require.NoError(t, err)
		activeSession, err := sessions.Create(active, start)
		require.NoError(t, err)

		activeSession.UpdatedAt = start.Add(15 * time.Minute)
		sessions.Touch(active, activeSession.UpdatedAt)

		sweeper.now = func() time.Time { return start.Add(20 * time.Minute) }

		// When: the sweep runs
		removed := sweeper.Sweep()

		// Then: the idle one is gone
		assert.Equal(t, 1, removed)
		_, err = sessions.Get(idle)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		_, err = sessions.Get(active)
		require.NoError(t, err)
	})

	t.Run("Nothing expired", func(t *testing.T) {
		sessions := repository.NewSessionRepository()
		sweeper := NewSweeper(logger, sessions, 10*time.Minute, time.Minute)

		_, err := sessions.Create(entity.NewSessionKey(1, 1), start)
		require.NoError(t, err)

		sweeper.now = func() time.Time { return start.Add(time.Minute) }

		// Then: the session survives
		assert.Equal(t, 0, sweeper.Sweep())
		assert.Equal(t, 1, sessions.Len())
	})
}

func TestSweeper_Run(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sessions := repository.NewSessionRepository()

	// Given: a session that is already past its ttl
	_, err := sessions.Create(entity.NewSessionKey(1, 1), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	sweeper := NewSweeper(logger, sessions, time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// When: the worker runs
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	// Then: the session is swept on a tick and the worker stops on cancel
	assert.Eventually(t, func() bool { return sessions.Len() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
