package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
)

type expiringSessionRepo interface {
	Get(key entity.SessionKey) (*entity.GameSession, error)
	Remove(key entity.SessionKey)
	Lock(key entity.SessionKey) (unlock func())
	Expired(idleSince time.Time) []entity.SessionKey
}

// Sweeper - drops sessions nobody played for longer than ttl.
type Sweeper struct {
	logger   *slog.Logger
	sessions expiringSessionRepo

	ttl      time.Duration
	interval time.Duration

	now func() time.Time
}

func NewSweeper(logger *slog.Logger, sessions expiringSessionRepo, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{
		logger:   logger.With("component", "sweeper"),
		sessions: sessions,

		ttl:      ttl,
		interval: interval,

		now: time.Now,
	}
}

// Run - sweeps on every tick until ctx is done.
func (that *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	that.logger.Info("sweeper started", "interval", that.interval, "ttl", that.ttl)

	for {
		select {
		case <-ticker.C:
			that.Sweep()
		case <-ctx.Done():
			that.logger.Info("sweeper shutting down", "reason", ctx.Err())
			return
		}
	}
}

// Sweep - removes the expired sessions and returns how many were removed.
func (that *Sweeper) Sweep() int {
	log := that.logger.With("method", "Sweep")

	idleSince := that.now().Add(-that.ttl)

	expired := that.sessions.Expired(idleSince)
	if len(expired) == 0 {
		return 0
	}

	removed := 0
	for _, key := range expired {
		if that.removeIfIdle(key, idleSince) {
			removed++
		}
	}

	log.Info("expired sessions removed", "found", len(expired), "removed", removed)

	return removed
}

// removeIfIdle - a move may have landed between the snapshot and the lock, so idleness is checked again.
func (that *Sweeper) removeIfIdle(key entity.SessionKey, idleSince time.Time) bool {
	unlock := that.sessions.Lock(key)
	defer unlock()

	session, err := that.sessions.Get(key)
	if err != nil {
		return false
	}

	if !session.UpdatedAt.Before(idleSince) {
		return false
	}

	that.sessions.Remove(key)

	return true
}
