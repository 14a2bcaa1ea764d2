// =============================
// File: internal/engine/engine.go
// =============================
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launchpad/internal/curve"
	"github.com/rovshanmuradov/solana-launchpad/internal/events"
	"github.com/rovshanmuradov/solana-launchpad/internal/launch"
	"github.com/rovshanmuradov/solana-launchpad/internal/platform"
	"github.com/rovshanmuradov/solana-launchpad/internal/storage"
	"github.com/rovshanmuradov/solana-launchpad/internal/storage/models"
)

// ErrTokenGraduated is returned for trades on a graduated token when the
// platform is configured to lock the curve pending migration.
var ErrTokenGraduated = errors.New("token has graduated, curve is locked")

// Config carries engine policy knobs.
type Config struct {
	// LockOnGraduation rejects further trades once a token reaches its
	// target pool balance. Off by default: the curve keeps trading until a
	// migration moves the liquidity elsewhere.
	LockOnGraduation bool
}

// Engine ties the platform registry, the token book and the external
// collaborators together. It is the only component that mutates reserves, and
// it does so under the per-token lock so each token sees a serialized trade
// history.
type Engine struct {
	cfg      Config
	registry *platform.Registry
	book     *launch.Book
	metadata launch.MetadataRegistrar
	transfer AssetTransfer
	store    storage.Storage // optional journal
	bus      *events.Bus     // optional
	logger   *zap.Logger

	// createMu serializes token creation so collaborator side effects and
	// book registration act as one step.
	createMu sync.Mutex

	platformAccount solana.PublicKey
}

// New constructs the engine. store and bus may be nil.
func New(cfg Config, registry *platform.Registry, book *launch.Book, metadata launch.MetadataRegistrar,
	transfer AssetTransfer, store storage.Storage, bus *events.Bus, logger *zap.Logger) (*Engine, error) {

	platformAccount, err := launch.PlatformAccount()
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:             cfg,
		registry:        registry,
		book:            book,
		metadata:        metadata,
		transfer:        transfer,
		store:           store,
		bus:             bus,
		logger:          logger.Named("engine"),
		platformAccount: platformAccount,
	}, nil
}

// publish pushes an event if a bus is attached. Event delivery never affects
// a committed operation.
func (e *Engine) publish(event events.Event) {
	if e.bus == nil {
		return
	}
	_ = e.bus.Publish(event)
}

// InitializePlatform creates the singleton registry configuration.
func (e *Engine) InitializePlatform(p platform.Params) error {
	if err := e.registry.Initialize(p); err != nil {
		return err
	}
	e.publish(events.NewPlatformInitialized(p.Owner, p.FeeBps))
	return nil
}

// ChangeFees updates the platform fee rate for all future trades.
func (e *Engine) ChangeFees(caller solana.PublicKey, newFeeBps uint64) error {
	if err := e.registry.ChangeFees(caller, newFeeBps); err != nil {
		return err
	}
	e.publish(events.NewAdminChange(events.FeesChanged, "fee_bps", newFeeBps))
	return nil
}

// ChangeTotalSupply updates the default supply for future token creations.
func (e *Engine) ChangeTotalSupply(caller solana.PublicKey, newTotalSupply uint64) error {
	if err := e.registry.ChangeTotalSupply(caller, newTotalSupply); err != nil {
		return err
	}
	e.publish(events.NewAdminChange(events.TotalSupplyChanged, "total_supply", newTotalSupply))
	return nil
}

// ChangeVirtualSol updates the default virtual liquidity for future tokens.
func (e *Engine) ChangeVirtualSol(caller solana.PublicKey, newVirtualSol uint64) error {
	if err := e.registry.ChangeVirtualSol(caller, newVirtualSol); err != nil {
		return err
	}
	e.publish(events.NewAdminChange(events.VirtualSolChanged, "virtual_sol", newVirtualSol))
	return nil
}

// ChangeTargetPoolBalance updates the default graduation threshold.
func (e *Engine) ChangeTargetPoolBalance(caller solana.PublicKey, newTarget uint64) error {
	if err := e.registry.ChangeTargetPoolBalance(caller, newTarget); err != nil {
		return err
	}
	e.publish(events.NewAdminChange(events.TargetChanged, "target_pool_balance", newTarget))
	return nil
}

// ChangeOwner hands the platform over to a new owner.
func (e *Engine) ChangeOwner(caller, newOwner solana.PublicKey) error {
	if err := e.registry.ChangeOwner(caller, newOwner); err != nil {
		return err
	}
	e.publish(events.NewOwnerChanged(newOwner))
	return nil
}

// WithdrawFees pays the accumulated platform fees out to the owner.
func (e *Engine) WithdrawFees(ctx context.Context, caller solana.PublicKey) (uint64, error) {
	amount, err := e.registry.WithdrawFees(caller, func(amount uint64) error {
		if amount == 0 {
			return nil
		}
		return e.transfer.TransferSol(ctx, e.platformAccount, caller, amount)
	})
	if err != nil {
		return 0, err
	}
	e.publish(events.NewFeesWithdrawn(amount))
	return amount, nil
}

// CreateToken registers a new token launch seeded from the current registry
// defaults. The defaults are a snapshot: later registry changes never touch
// an existing entry.
func (e *Engine) CreateToken(ctx context.Context, caller solana.PublicKey, md launch.Metadata) (launch.TokenInfo, error) {
	token, err := launch.DeriveTokenID(md.Name)
	if err != nil {
		return launch.TokenInfo{}, err
	}

	defaults, err := e.registry.Defaults()
	if err != nil {
		return launch.TokenInfo{}, err
	}

	e.createMu.Lock()
	defer e.createMu.Unlock()

	if _, err := e.book.Get(token); err == nil {
		return launch.TokenInfo{}, launch.ErrTokenAlreadyExists
	}

	escrow, err := launch.DeriveEscrowAccount(token)
	if err != nil {
		return launch.TokenInfo{}, err
	}

	// The whole supply starts in escrow; the curve hands it out trade by trade.
	if err := e.transfer.MintTokens(ctx, token, escrow, defaults.TotalSupply); err != nil {
		return launch.TokenInfo{}, fmt.Errorf("failed to mint supply for %q: %w", md.Name, err)
	}

	metadataAddress, err := e.metadata.Register(token, md)
	if err != nil {
		return launch.TokenInfo{}, fmt.Errorf("failed to register metadata for %q: %w", md.Name, err)
	}

	info := launch.TokenInfo{
		Token:             token,
		Name:              md.Name,
		Creator:           caller,
		TotalSupply:       defaults.TotalSupply,
		VirtualSol:        defaults.VirtualSol,
		SolReserve:        defaults.VirtualSol,
		TokenReserve:      defaults.TotalSupply,
		TargetPoolBalance: defaults.TargetPoolBalance,
	}
	if err := e.book.Create(info); err != nil {
		return launch.TokenInfo{}, err
	}

	e.journalToken(ctx, info, md, metadataAddress)
	e.publish(events.NewTokenCreated(token, md.Name, metadataAddress))

	e.logger.Info("Token created",
		zap.String("token", token.String()),
		zap.String("name", md.Name),
		zap.String("creator", caller.String()))

	return info, nil
}

// TradeResult reports a committed trade back to the caller.
type TradeResult struct {
	Token        solana.PublicKey
	SolAmount    uint64 // lamports paid on a buy, lamports received on a sell
	TokenAmount  uint64 // tokens received on a buy, tokens sold on a sell
	Fee          uint64
	SolReserve   uint64 // post-trade
	TokenReserve uint64 // post-trade
	Graduated    bool   // entry state after the trade
}

// BuyTokens buys from the curve for solAmount lamports. The fee rate is read
// from the registry at commit time, so an admin fee change applies to every
// trade after it, none before.
func (e *Engine) BuyTokens(ctx context.Context, caller solana.PublicKey, name string, solAmount uint64) (TradeResult, error) {
	token, err := launch.DeriveTokenID(name)
	if err != nil {
		return TradeResult{}, err
	}
	feeBps, err := e.registry.FeeBps()
	if err != nil {
		return TradeResult{}, err
	}
	vault, err := launch.DeriveVaultAccount(name)
	if err != nil {
		return TradeResult{}, err
	}
	escrow, err := launch.DeriveEscrowAccount(token)
	if err != nil {
		return TradeResult{}, err
	}

	var result TradeResult
	var graduatedNow bool
	var realLiquidity uint64

	err = e.book.Update(token, func(ti *launch.TokenInfo) error {
		if e.cfg.LockOnGraduation && ti.Graduated {
			return ErrTokenGraduated
		}

		quote, err := curve.Buy(ti.CurveState(), solAmount, feeBps)
		if err != nil {
			return err
		}

		// Settlement: net input to the vault, fee to the platform, tokens
		// out of escrow. All three must land before the reserves move.
		if err := e.transfer.TransferSol(ctx, caller, vault, quote.NetSolIn); err != nil {
			return fmt.Errorf("sol transfer failed: %w", err)
		}
		if quote.Fee > 0 {
			if err := e.transfer.TransferSol(ctx, caller, e.platformAccount, quote.Fee); err != nil {
				return fmt.Errorf("fee transfer failed: %w", err)
			}
		}
		if err := e.transfer.TransferTokens(ctx, token, escrow, caller, quote.TokensOut); err != nil {
			return fmt.Errorf("token transfer failed: %w", err)
		}

		if err := e.registry.AddFees(quote.Fee); err != nil {
			return err
		}

		after := quote.Apply(ti.CurveState())
		ti.SolReserve = after.SolReserve
		ti.TokenReserve = after.TokenReserve

		if !ti.Graduated && ti.ReachedTarget() {
			ti.Graduated = true
			graduatedNow = true
			realLiquidity = ti.RealLiquidity()
		}

		result = TradeResult{
			Token:        token,
			SolAmount:    solAmount,
			TokenAmount:  quote.TokensOut,
			Fee:          quote.Fee,
			SolReserve:   ti.SolReserve,
			TokenReserve: ti.TokenReserve,
			Graduated:    ti.Graduated,
		}
		return nil
	})
	if err != nil {
		return TradeResult{}, err
	}

	e.journalTrade(ctx, caller, models.TradeSideBuy, result)
	e.publish(events.NewTrade(events.TokensBought, token, caller, result.SolAmount, result.TokenAmount, result.Fee))
	if graduatedNow {
		e.publish(events.NewTokenGraduated(token, realLiquidity))
		e.logger.Info("Token graduated",
			zap.String("token", token.String()),
			zap.Uint64("real_liquidity", realLiquidity))
	}

	return result, nil
}

// SellTokens sells tokenAmount tokens back into the curve.
func (e *Engine) SellTokens(ctx context.Context, caller solana.PublicKey, name string, tokenAmount uint64) (TradeResult, error) {
	token, err := launch.DeriveTokenID(name)
	if err != nil {
		return TradeResult{}, err
	}
	feeBps, err := e.registry.FeeBps()
	if err != nil {
		return TradeResult{}, err
	}
	vault, err := launch.DeriveVaultAccount(name)
	if err != nil {
		return TradeResult{}, err
	}
	escrow, err := launch.DeriveEscrowAccount(token)
	if err != nil {
		return TradeResult{}, err
	}

	var result TradeResult

	err = e.book.Update(token, func(ti *launch.TokenInfo) error {
		if e.cfg.LockOnGraduation && ti.Graduated {
			return ErrTokenGraduated
		}

		quote, err := curve.Sell(ti.CurveState(), tokenAmount, feeBps)
		if err != nil {
			return err
		}

		if err := e.transfer.TransferSol(ctx, vault, caller, quote.SolOut); err != nil {
			return fmt.Errorf("sol transfer failed: %w", err)
		}
		if quote.Fee > 0 {
			if err := e.transfer.TransferSol(ctx, vault, e.platformAccount, quote.Fee); err != nil {
				return fmt.Errorf("fee transfer failed: %w", err)
			}
		}
		if err := e.transfer.TransferTokens(ctx, token, caller, escrow, tokenAmount); err != nil {
			return fmt.Errorf("token transfer failed: %w", err)
		}

		if err := e.registry.AddFees(quote.Fee); err != nil {
			return err
		}

		after := quote.Apply(ti.CurveState(), tokenAmount)
		ti.SolReserve = after.SolReserve
		ti.TokenReserve = after.TokenReserve

		result = TradeResult{
			Token:        token,
			SolAmount:    quote.SolOut,
			TokenAmount:  tokenAmount,
			Fee:          quote.Fee,
			SolReserve:   ti.SolReserve,
			TokenReserve: ti.TokenReserve,
			Graduated:    ti.Graduated,
		}
		return nil
	})
	if err != nil {
		return TradeResult{}, err
	}

	e.journalTrade(ctx, caller, models.TradeSideSell, result)
	e.publish(events.NewTrade(events.TokensSold, token, caller, result.SolAmount, result.TokenAmount, result.Fee))

	return result, nil
}

// GetToken returns a snapshot of the ledger entry for the given name.
func (e *Engine) GetToken(name string) (launch.TokenInfo, error) {
	token, err := launch.DeriveTokenID(name)
	if err != nil {
		return launch.TokenInfo{}, err
	}
	return e.book.Get(token)
}

// ListTokens returns snapshots of every registered launch.
func (e *Engine) ListTokens() []launch.TokenInfo {
	return e.book.List()
}

// journalToken writes the creation record. Journaling is write-behind: a
// storage failure is logged, never unwound into the committed operation.
func (e *Engine) journalToken(ctx context.Context, info launch.TokenInfo, md launch.Metadata, metadataAddress string) {
	if e.store == nil {
		return
	}
	record := &models.Token{
		TokenID:           info.Token.String(),
		Name:              info.Name,
		Symbol:            md.Symbol,
		URI:               md.URI,
		MetadataAddress:   metadataAddress,
		Creator:           info.Creator.String(),
		TotalSupply:       info.TotalSupply,
		VirtualSol:        info.VirtualSol,
		SolReserve:        info.SolReserve,
		TokenReserve:      info.TokenReserve,
		TargetPoolBalance: info.TargetPoolBalance,
	}
	if err := e.store.SaveToken(ctx, record); err != nil {
		e.logger.Warn("Failed to journal token", zap.String("name", info.Name), zap.Error(err))
	}
}

func (e *Engine) journalTrade(ctx context.Context, caller solana.PublicKey, side string, result TradeResult) {
	if e.store == nil {
		return
	}
	record := &models.Trade{
		TokenID:     result.Token.String(),
		Trader:      caller.String(),
		Side:        side,
		SolAmount:   result.SolAmount,
		TokenAmount: result.TokenAmount,
		Fee:         result.Fee,
		SpotPrice: curve.SpotPrice(curve.State{
			SolReserve:   result.SolReserve,
			TokenReserve: result.TokenReserve,
		}),
		SolReserve:   result.SolReserve,
		TokenReserve: result.TokenReserve,
	}
	if err := e.store.SaveTrade(ctx, record); err != nil {
		e.logger.Warn("Failed to journal trade", zap.String("token", result.Token.String()), zap.Error(err))
	}
	if err := e.store.UpdateTokenReserves(ctx, result.Token.String(), result.SolReserve, result.TokenReserve, result.Graduated); err != nil {
		e.logger.Warn("Failed to update token record", zap.String("token", result.Token.String()), zap.Error(err))
	}
}
