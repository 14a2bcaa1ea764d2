// =============================
// File: internal/platform/registry.go
// =============================
package platform

import (
	"errors"
	"math/bits"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launchpad/internal/curve"
)

var (
	ErrAlreadyInitialized = errors.New("platform already initialized")
	ErrNotInitialized     = errors.New("platform not initialized")
	ErrInvalidParameter   = errors.New("invalid platform parameter")
	ErrUnauthorized       = errors.New("caller is not the platform owner")
)

// Params carries the full set of platform configuration values.
type Params struct {
	Owner             solana.PublicKey
	FeeBps            uint64
	TotalSupply       uint64
	VirtualSol        uint64
	TargetPoolBalance uint64
}

// Defaults is the snapshot of template values copied into a token at creation.
type Defaults struct {
	TotalSupply       uint64
	VirtualSol        uint64
	TargetPoolBalance uint64
}

// Registry is the singleton platform configuration. All mutation goes through
// owner-authorized methods under a single write lock; trades read the fee rate
// fresh at their own commit time, so a fee change applies to every future
// trade immediately.
type Registry struct {
	mu sync.RWMutex

	initialized       bool
	owner             solana.PublicKey
	feeBps            uint64
	totalSupply       uint64
	virtualSol        uint64
	targetPoolBalance uint64
	accumulatedFees   uint64

	logger *zap.Logger
}

// NewRegistry constructs an uninitialized registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{logger: logger.Named("platform")}
}

// Initialize creates the singleton configuration. It can only succeed once.
func (r *Registry) Initialize(p Params) error {
	if err := validateParams(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return ErrAlreadyInitialized
	}

	r.owner = p.Owner
	r.feeBps = p.FeeBps
	r.totalSupply = p.TotalSupply
	r.virtualSol = p.VirtualSol
	r.targetPoolBalance = p.TargetPoolBalance
	r.initialized = true

	r.logger.Info("Platform initialized",
		zap.String("owner", p.Owner.String()),
		zap.Uint64("fee_bps", p.FeeBps),
		zap.Uint64("total_supply", p.TotalSupply),
		zap.Uint64("virtual_sol", p.VirtualSol),
		zap.Uint64("target_pool_balance", p.TargetPoolBalance))

	return nil
}

func validateParams(p Params) error {
	if p.Owner.IsZero() {
		return ErrInvalidParameter
	}
	if p.FeeBps > curve.BPS {
		return ErrInvalidParameter
	}
	if p.TotalSupply == 0 || p.VirtualSol == 0 || p.TargetPoolBalance == 0 {
		return ErrInvalidParameter
	}
	return nil
}

// Authorized reports whether caller may administer the platform. Pure
// identity comparison, signature verification happens upstream.
func (r *Registry) Authorized(caller solana.PublicKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized && caller.Equals(r.owner)
}

// adminMutate runs fn under the write lock after the owner check.
func (r *Registry) adminMutate(caller solana.PublicKey, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return ErrNotInitialized
	}
	if !caller.Equals(r.owner) {
		return ErrUnauthorized
	}
	return fn()
}

// ChangeFees replaces the platform fee rate. Affects all future trades on all
// tokens, never settled ones.
func (r *Registry) ChangeFees(caller solana.PublicKey, newFeeBps uint64) error {
	return r.adminMutate(caller, func() error {
		if newFeeBps > curve.BPS {
			return ErrInvalidParameter
		}
		r.feeBps = newFeeBps
		r.logger.Info("Fee rate changed", zap.Uint64("fee_bps", newFeeBps))
		return nil
	})
}

// ChangeTotalSupply replaces the default supply for future token creations.
func (r *Registry) ChangeTotalSupply(caller solana.PublicKey, newTotalSupply uint64) error {
	return r.adminMutate(caller, func() error {
		if newTotalSupply == 0 {
			return ErrInvalidParameter
		}
		r.totalSupply = newTotalSupply
		r.logger.Info("Default total supply changed", zap.Uint64("total_supply", newTotalSupply))
		return nil
	})
}

// ChangeVirtualSol replaces the default virtual liquidity for future tokens.
func (r *Registry) ChangeVirtualSol(caller solana.PublicKey, newVirtualSol uint64) error {
	return r.adminMutate(caller, func() error {
		if newVirtualSol == 0 {
			return ErrInvalidParameter
		}
		r.virtualSol = newVirtualSol
		r.logger.Info("Default virtual sol changed", zap.Uint64("virtual_sol", newVirtualSol))
		return nil
	})
}

// ChangeTargetPoolBalance replaces the default graduation threshold.
func (r *Registry) ChangeTargetPoolBalance(caller solana.PublicKey, newTarget uint64) error {
	return r.adminMutate(caller, func() error {
		if newTarget == 0 {
			return ErrInvalidParameter
		}
		r.targetPoolBalance = newTarget
		r.logger.Info("Default target pool balance changed", zap.Uint64("target_pool_balance", newTarget))
		return nil
	})
}

// ChangeOwner hands the platform over to a new owner.
func (r *Registry) ChangeOwner(caller, newOwner solana.PublicKey) error {
	return r.adminMutate(caller, func() error {
		if newOwner.IsZero() {
			return ErrInvalidParameter
		}
		r.owner = newOwner
		r.logger.Info("Platform owner changed", zap.String("owner", newOwner.String()))
		return nil
	})
}

// FeeBps returns the fee rate valid right now.
func (r *Registry) FeeBps() (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.initialized {
		return 0, ErrNotInitialized
	}
	return r.feeBps, nil
}

// Defaults returns the template values for a new token creation.
func (r *Registry) Defaults() (Defaults, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.initialized {
		return Defaults{}, ErrNotInitialized
	}
	return Defaults{
		TotalSupply:       r.totalSupply,
		VirtualSol:        r.virtualSol,
		TargetPoolBalance: r.targetPoolBalance,
	}, nil
}

// Owner returns the current platform owner.
func (r *Registry) Owner() solana.PublicKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// AccumulatedFees returns the fees collected and not yet withdrawn.
func (r *Registry) AccumulatedFees() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.accumulatedFees
}

// AddFees credits settled trade fees to the platform. The accumulator only
// ever grows between withdrawals.
func (r *Registry) AddFees(amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return ErrNotInitialized
	}
	sum, carry := bits.Add64(r.accumulatedFees, amount, 0)
	if carry != 0 {
		return curve.ErrOverflow
	}
	r.accumulatedFees = sum
	return nil
}

// WithdrawFees drains the accumulated fees to the owner. The payout callback
// runs under the registry lock; the accumulator is reset only if the payout
// succeeds, so a failed transfer leaves the balance untouched.
func (r *Registry) WithdrawFees(caller solana.PublicKey, pay func(amount uint64) error) (uint64, error) {
	var amount uint64
	err := r.adminMutate(caller, func() error {
		amount = r.accumulatedFees
		if err := pay(amount); err != nil {
			return err
		}
		r.accumulatedFees = 0
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Fees withdrawn", zap.Uint64("amount", amount))
	return amount, nil
}
