package usecase

import (
	"context"
	"sync"
)

type pendingGame struct {
	refs int
	done chan struct{}
}

// pendingGames - conversations whose board is already posted while the session is not created yet.
type pendingGames struct {
	mu    sync.Mutex
	games map[int64]*pendingGame
}

func newPendingGames() *pendingGames {
	return &pendingGames{
		games: make(map[int64]*pendingGame),
	}
}

// begin - marks a game start in flight, the returned func ends it.
func (that *pendingGames) begin(conversationID int64) (end func()) {
	that.mu.Lock()
	game, ok := that.games[conversationID]
	if !ok {
		game = &pendingGame{done: make(chan struct{})}
		that.games[conversationID] = game
	}
	game.refs++
	that.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			game.refs--
			if game.refs == 0 {
				delete(that.games, conversationID)
				close(game.done)
			}
		})
	}
}

// wait - blocks until no game start is in flight for the conversation.
func (that *pendingGames) wait(ctx context.Context, conversationID int64) error {
	that.mu.Lock()
	game, ok := that.games[conversationID]
	that.mu.Unlock()

	if !ok {
		return nil
	}

	select {
	case <-game.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
