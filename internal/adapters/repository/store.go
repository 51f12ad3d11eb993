// Package repository keeps processed games and ranks their plays by swing.
package repository

import (
	"context"

	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/internal/domain/types"
)

// Store provides read/write access to processed games.
type Store interface {
	// Reserve claims a game id before processing. It returns false when the
	// id is already reserved or stored.
	Reserve(ctx context.Context, gameID string) bool

	// Release drops a reservation whose processing failed. Stored games
	// are not affected.
	Release(ctx context.Context, gameID string)

	// Save stores a result, replacing any earlier result for the game.
	Save(ctx context.Context, res *model.GameResult) error

	// Get returns the result for a game. Returns ErrNotFound if unknown.
	Get(ctx context.Context, gameID string) (*model.GameResult, error)

	// TopSwings returns the n plays with the largest absolute WPA.
	TopSwings(ctx context.Context, n int) ([]types.Swing, error)

	// Count returns the number of stored games.
	Count(ctx context.Context) int
}
