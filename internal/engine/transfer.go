// =============================
// File: internal/engine/transfer.go
// =============================
package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// AssetTransfer moves the actual balances once the engine has settled its
// reserve accounting. Any failure is fatal to the whole operation: the engine
// commits reserves only after every movement succeeded.
type AssetTransfer interface {
	// MintTokens creates amount units of token in dest.
	MintTokens(ctx context.Context, token, dest solana.PublicKey, amount uint64) error
	// TransferTokens moves amount units of token between accounts.
	TransferTokens(ctx context.Context, token, source, dest solana.PublicKey, amount uint64) error
	// TransferSol moves lamports between accounts.
	TransferSol(ctx context.Context, source, dest solana.PublicKey, lamports uint64) error
}

// NopTransfer acknowledges every movement without touching a chain. Used when
// the platform runs in accounting-only mode.
type NopTransfer struct {
	logger *zap.Logger
}

func NewNopTransfer(logger *zap.Logger) *NopTransfer {
	return &NopTransfer{logger: logger.Named("transfer")}
}

func (t *NopTransfer) MintTokens(_ context.Context, token, dest solana.PublicKey, amount uint64) error {
	t.logger.Debug("Mint",
		zap.String("token", token.String()),
		zap.String("dest", dest.String()),
		zap.Uint64("amount", amount))
	return nil
}

func (t *NopTransfer) TransferTokens(_ context.Context, token, source, dest solana.PublicKey, amount uint64) error {
	t.logger.Debug("Token transfer",
		zap.String("token", token.String()),
		zap.String("source", source.String()),
		zap.String("dest", dest.String()),
		zap.Uint64("amount", amount))
	return nil
}

func (t *NopTransfer) TransferSol(_ context.Context, source, dest solana.PublicKey, lamports uint64) error {
	t.logger.Debug("Sol transfer",
		zap.String("source", source.String()),
		zap.String("dest", dest.String()),
		zap.Uint64("lamports", lamports))
	return nil
}
