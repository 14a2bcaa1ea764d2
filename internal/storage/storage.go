// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/rovshanmuradov/solana-launchpad/internal/storage/models"
)

// Storage journals committed launchpad state. The in-memory book stays
// authoritative; the store is an audit trail written after commit.
type Storage interface {
	// Trades. An empty token lists trades across every launch.
	SaveTrade(ctx context.Context, trade *models.Trade) error
	ListTrades(ctx context.Context, token string, limit, offset int) ([]*models.Trade, error)

	// Tokens
	SaveToken(ctx context.Context, token *models.Token) error
	GetToken(ctx context.Context, tokenID string) (*models.Token, error)
	UpdateTokenReserves(ctx context.Context, tokenID string, solReserve, tokenReserve uint64, graduated bool) error

	RunMigrations() error
}
