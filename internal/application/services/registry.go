package services

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// BoardRegistry keeps one board per session token. A board is dropped once it
// has been idle for idleTTL, and the least recently used board is dropped
// when more than maxBoards sessions are live. A dropped board is reloaded on
// the session's next request.
type BoardRegistry struct {
	mu      sync.Mutex
	boards  *expirable.LRU[string, *Board]
	service *BoardService
}

// NewBoardRegistry bounds the registry; a zero idleTTL or maxBoards disables
// that bound.
func NewBoardRegistry(service *BoardService, idleTTL time.Duration, maxBoards int) *BoardRegistry {
	return &BoardRegistry{
		boards:  expirable.NewLRU[string, *Board](maxBoards, nil, idleTTL),
		service: service,
	}
}

// Acquire returns the session's board, loading it on first use. Every call
// restarts the board's idle timer.
func (r *BoardRegistry) Acquire(ctx context.Context, token string) *Board {
	r.mu.Lock()
	board, ok := r.boards.Get(token)
	if !ok {
		board = r.service.NewBoard()
	}
	r.boards.Add(token, board)
	r.mu.Unlock()

	board.EnsureLoaded(ctx)
	return board
}

// Drop forgets the session's board.
func (r *BoardRegistry) Drop(token string) {
	r.boards.Remove(token)
}

// Len returns the number of live boards.
func (r *BoardRegistry) Len() int {
	return r.boards.Len()
}
